package split

import "fmt"

// Edit operations accepted by Apply
const (
	OpPrice    = "price"
	OpAdd      = "add"
	OpRemove   = "remove"
	OpToggle   = "toggle"
	OpClaimAll = "claim_all"
)

// Edit is one change a user makes to a bill. Index is ignored by OpAdd.
type Edit struct {
	Op      string  `json:"op"`
	Index   int     `json:"index"`
	Item    string  `json:"item,omitempty"`
	Price   float64 `json:"price,omitempty"`
	Name    string  `json:"name,omitempty"`
	Claimed bool    `json:"claimed,omitempty"`
}

// Apply returns the bill with e applied. The receiver is left unchanged.
func (b Bill) Apply(e Edit) (Bill, error) {
	switch e.Op {
	case OpPrice:
		return b.WithPrice(e.Index, e.Price)
	case OpAdd:
		return b.WithItem(e.Item, e.Price), nil
	case OpRemove:
		return b.WithoutItem(e.Index)
	case OpToggle:
		return b.ToggleClaim(e.Index, e.Name)
	case OpClaimAll:
		return b.ClaimAll(e.Index, e.Claimed)
	default:
		return b, fmt.Errorf("unknown edit %q", e.Op)
	}
}

// ApplyAll applies edits in order and stops at the first failure
func (b Bill) ApplyAll(edits []Edit) (Bill, error) {
	next := b
	for i, e := range edits {
		var err error
		next, err = next.Apply(e)
		if err != nil {
			return b, fmt.Errorf("edit %d: %w", i, err)
		}
	}
	return next, nil
}
