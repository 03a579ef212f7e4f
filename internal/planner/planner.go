// Package planner computes the minimal set of marketplace quantity changes
// for an allocation run. It is a diff engine: only options whose allocated
// quantity differs from what the channel currently lists produce a change.
package planner

import "stockflow/internal/domain"

// Plan derives the option changes for one run. Options whose SKU has no row
// in the stock snapshot are skipped entirely — unmapped means "not managed by
// this workflow", never "out of stock", so a missing row can never zero out a
// live listing.
func Plan(allocationPercent int, stock map[string]int, options []domain.ListingOption) []domain.OptionChange {
	var changes []domain.OptionChange

	for _, opt := range options {
		if opt.SKU == "" {
			continue
		}
		warehouse, ok := stock[opt.SKU]
		if !ok {
			continue
		}

		newQuantity := warehouse * allocationPercent / 100
		if newQuantity == opt.Quantity {
			continue
		}

		changes = append(changes, domain.OptionChange{
			ListingID:   opt.ListingID,
			OptionID:    opt.OptionID,
			SKU:         opt.SKU,
			NewQuantity: newQuantity,
		})
	}

	return changes
}

// Group batches changes by their parent listing, preserving the order in
// which listings first appear. The marketplace API updates a listing with all
// of its changed options in one call, not options individually.
func Group(changes []domain.OptionChange) []domain.ListingUpdate {
	var updates []domain.ListingUpdate
	index := make(map[int64]int)

	for _, change := range changes {
		i, ok := index[change.ListingID]
		if !ok {
			i = len(updates)
			index[change.ListingID] = i
			updates = append(updates, domain.ListingUpdate{ListingID: change.ListingID})
		}
		updates[i].Options = append(updates[i].Options, change)
	}

	return updates
}
