package engine

import "github.com/efreitasn/shareledger/internal/domain"

// applySplit rescales holdings for a stock split: every lot with a trade
// date at or before the split's date has its quantities multiplied by the
// ratio and its per-share price divided by it, which keeps each lot's total
// cost unchanged. Consumption fills referencing those lots are scaled the
// same way so pre-split and post-split cost figures stay consistent.
//
// Splits compound multiplicatively across replays because replay always
// starts from raw BUY quantities and applies each split in chronological
// order: two ratio-2 splits leave the same state as one ratio-4 split.
func applySplit(lots []*domain.Lot, bySeq map[uint64]*domain.Lot, consumptions []domain.Consumption, split domain.Split) {
	ratio := split.Ratio
	for _, lot := range lots {
		if lot.TradeDate.After(split.When()) {
			continue
		}
		lot.Original = lot.Original.Mul(ratio)
		lot.Remaining = lot.Remaining.Mul(ratio)
		lot.Price = lot.Price.Div(ratio)
	}
	for i := range consumptions {
		fills := consumptions[i].Fills
		for j := range fills {
			lot, ok := bySeq[fills[j].LotSeq]
			if !ok || lot.TradeDate.After(split.When()) {
				continue
			}
			fills[j].Quantity = fills[j].Quantity.Mul(ratio)
		}
	}
}
