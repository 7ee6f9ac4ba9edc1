package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/efreitasn/shareledger/internal/domain"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS companies (
	company_id TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	seq        INTEGER PRIMARY KEY,
	company_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	quantity   INTEGER,
	price      TEXT,
	ratio      TEXT,
	trade_date TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_company ON events(company_id);
`

// Archive is the durable append-only journal backing the in-memory event
// log. Events are only ever inserted; a row, once written, is never
// updated or deleted, mirroring the in-memory immutability contract.
// Decimal columns are stored as text to keep values exact.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (or creates) the sqlite database at path and ensures
// the schema exists.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveCompany persists a registered company.
func (a *Archive) SaveCompany(c *domain.Company) error {
	_, err := a.db.Exec(
		`INSERT INTO companies (company_id, name, created_at) VALUES (?, ?, ?)`,
		c.CompanyID, c.Name, c.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save company %s: %w", c.CompanyID, err)
	}
	return nil
}

// Companies loads all persisted companies, oldest first.
func (a *Archive) Companies() ([]*domain.Company, error) {
	rows, err := a.db.Query(`SELECT company_id, name, created_at FROM companies ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	defer rows.Close()

	var out []*domain.Company
	for rows.Next() {
		var c domain.Company
		var createdAt string
		if err := rows.Scan(&c.CompanyID, &c.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse company created_at: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// SaveEvent persists a recorded event. Only the columns the event's kind
// uses are populated; the rest stay NULL.
func (a *Archive) SaveEvent(rec domain.Recorded) error {
	var (
		quantity sql.NullInt64
		price    sql.NullString
		ratio    sql.NullString
	)
	switch ev := rec.Event.(type) {
	case domain.Buy:
		quantity = sql.NullInt64{Int64: ev.Quantity, Valid: true}
		price = sql.NullString{String: ev.Price.String(), Valid: true}
	case domain.Sell:
		quantity = sql.NullInt64{Int64: ev.Quantity, Valid: true}
		price = sql.NullString{String: ev.Price.String(), Valid: true}
	case domain.Split:
		ratio = sql.NullString{String: ev.Ratio.String(), Valid: true}
	default:
		return fmt.Errorf("save event %d: unknown kind %T", rec.Seq, rec.Event)
	}

	_, err := a.db.Exec(
		`INSERT INTO events (seq, company_id, kind, quantity, price, ratio, trade_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Seq, rec.Company(), string(rec.Kind()), quantity, price, ratio, rec.When().String(),
	)
	if err != nil {
		return fmt.Errorf("save event %d: %w", rec.Seq, err)
	}
	return nil
}

// Events loads all persisted events in insertion order.
func (a *Archive) Events() ([]domain.Recorded, error) {
	rows, err := a.db.Query(
		`SELECT seq, company_id, kind, quantity, price, ratio, trade_date FROM events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()

	var out []domain.Recorded
	for rows.Next() {
		var (
			seq       uint64
			companyID string
			kind      string
			quantity  sql.NullInt64
			price     sql.NullString
			ratio     sql.NullString
			tradeDate string
		)
		if err := rows.Scan(&seq, &companyID, &kind, &quantity, &price, &ratio, &tradeDate); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		day, err := domain.ParseDate(tradeDate)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", seq, err)
		}

		var ev domain.Event
		switch domain.EventKind(kind) {
		case domain.KindBuy, domain.KindSell:
			if !quantity.Valid || !price.Valid {
				return nil, fmt.Errorf("event %d: %s row missing quantity or price", seq, kind)
			}
			p, err := decimal.NewFromString(price.String)
			if err != nil {
				return nil, fmt.Errorf("event %d: parse price: %w", seq, err)
			}
			if domain.EventKind(kind) == domain.KindBuy {
				ev = domain.NewBuy(companyID, day, quantity.Int64, p)
			} else {
				ev = domain.NewSell(companyID, day, quantity.Int64, p)
			}
		case domain.KindSplit:
			if !ratio.Valid {
				return nil, fmt.Errorf("event %d: SPLIT row missing ratio", seq)
			}
			r, err := decimal.NewFromString(ratio.String)
			if err != nil {
				return nil, fmt.Errorf("event %d: parse ratio: %w", seq, err)
			}
			ev = domain.NewSplit(companyID, day, r)
		default:
			return nil, fmt.Errorf("event %d: unknown kind %q", seq, kind)
		}

		out = append(out, domain.Recorded{Seq: seq, Event: ev})
	}
	return out, rows.Err()
}
