package split

import (
	"fmt"
	"slices"
)

// Bill is the state of one splitting session. It is a value: every edit
// returns a new Bill and never touches the slices of the one it came from.
type Bill struct {
	participants []string
	items        []Item
}

// NewBill copies participants and items into a new Bill
func NewBill(participants []string, items []Item) Bill {
	return Bill{
		participants: slices.Clone(participants),
		items:        cloneItems(items),
	}
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, item := range items {
		item.Claimants = slices.Clone(item.Claimants)
		out[i] = item
	}
	return out
}

// Participants returns a copy of the participant names
func (b Bill) Participants() []string {
	return slices.Clone(b.participants)
}

// Items returns a copy of the items and their claims
func (b Bill) Items() []Item {
	return cloneItems(b.items)
}

// Len returns the number of items
func (b Bill) Len() int {
	return len(b.items)
}

func (b Bill) checkIndex(i int) error {
	if i < 0 || i >= len(b.items) {
		return fmt.Errorf("item index %d out of range [0,%d)", i, len(b.items))
	}
	return nil
}

// WithPrice overrides the price of item i
func (b Bill) WithPrice(i int, price float64) (Bill, error) {
	if err := b.checkIndex(i); err != nil {
		return b, err
	}
	next := NewBill(b.participants, b.items)
	next.items[i].Price = price
	return next, nil
}

// WithItem appends an unclaimed item
func (b Bill) WithItem(name string, price float64) Bill {
	next := NewBill(b.participants, b.items)
	next.items = append(next.items, Item{Name: name, Price: price, Claimants: []string{}})
	return next
}

// WithoutItem removes item i
func (b Bill) WithoutItem(i int) (Bill, error) {
	if err := b.checkIndex(i); err != nil {
		return b, err
	}
	next := NewBill(b.participants, b.items)
	next.items = slices.Delete(next.items, i, i+1)
	return next, nil
}

// ToggleClaim removes name from item i if it is a claimant, otherwise adds it
func (b Bill) ToggleClaim(i int, name string) (Bill, error) {
	if err := b.checkIndex(i); err != nil {
		return b, err
	}
	next := NewBill(b.participants, b.items)
	claimants := next.items[i].Claimants
	if slices.Contains(claimants, name) {
		next.items[i].Claimants = slices.DeleteFunc(claimants, func(n string) bool { return n == name })
	} else {
		next.items[i].Claimants = append(claimants, name)
	}
	return next, nil
}

// ClaimAll makes every participant a claimant of item i, or clears the
// claims when claimed is false
func (b Bill) ClaimAll(i int, claimed bool) (Bill, error) {
	if err := b.checkIndex(i); err != nil {
		return b, err
	}
	next := NewBill(b.participants, b.items)
	if claimed {
		next.items[i].Claimants = slices.Clone(b.participants)
	} else {
		next.items[i].Claimants = []string{}
	}
	return next, nil
}

// Total sums the current item prices. It is independent of any total the
// receipt itself reported.
func (b Bill) Total() float64 {
	var total float64
	for _, item := range b.items {
		total += item.Price
	}
	return total
}

// AllClaimed reports whether every item has at least one claimant
func (b Bill) AllClaimed() bool {
	for _, item := range b.items {
		if len(item.Claimants) == 0 {
			return false
		}
	}
	return true
}

// Unclaimed returns the indexes of items nobody has claimed
func (b Bill) Unclaimed() []int {
	var idx []int
	for i, item := range b.items {
		if len(item.Claimants) == 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

// Split calculates each participant's share of the bill
func (b Bill) Split() map[string]float64 {
	return Calculate(b.participants, b.items)
}
