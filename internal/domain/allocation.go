package domain

// ListingOption is one sellable sub-option of a marketplace listing, joined
// against the internal SKU it is fulfilled from. Read fresh on every run.
type ListingOption struct {
	ListingID int64  // marketplace origin product number
	OptionID  int64  // option combination id within the listing
	SKU       string // internal SKU, empty when the option is unmapped
	Quantity  int    // quantity currently listed on the channel
}

// OptionChange is one planned quantity update for a single option.
type OptionChange struct {
	ListingID   int64
	OptionID    int64
	SKU         string
	NewQuantity int
}

// ListingUpdate batches a listing's option changes. The marketplace API's
// unit of update is the parent listing with all of its changed options.
type ListingUpdate struct {
	ListingID int64
	Options   []OptionChange
}

// OptionResult is the gateway's per-option outcome for one ListingUpdate.
type OptionResult struct {
	OptionID int64
	OK       bool
	Err      string
}
