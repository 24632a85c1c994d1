package receipt

// LineItem is one priced entry read from a receipt
type LineItem struct {
	Name  string  `json:"item"`
	Price float64 `json:"price"`
}

// ParsedReceipt is the interpreted content of a receipt. Total is what the
// model reported in its TOTAL entry and is never checked against Items.
type ParsedReceipt struct {
	Items []LineItem
	Total float64
}

// BillResult is the response body of a successful upload
type BillResult struct {
	Message  string     `json:"message"`
	Items    []LineItem `json:"items"`
	Total    float64    `json:"total"`
	Currency string     `json:"currency"`
}
