package post

// Post is a classified item ready to be serialized for delivery
type Post struct {
	// Identity used by the dedup ledger
	Username string
	ItemID   string

	Message   string
	Caption   *string
	ImageURLs []string
}
