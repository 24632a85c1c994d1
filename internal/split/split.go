// Package split divides a bill among the people who claimed its items.
package split

import "strings"

// Item is a receipt line together with the people sharing its cost
type Item struct {
	Name      string   `json:"item"`
	Price     float64  `json:"price"`
	Claimants []string `json:"claimants"`
}

// Calculate returns what each participant owes. Every participant starts at
// zero and each item's price is divided evenly among its claimants; a name
// listed twice on one item receives two shares. Items without claimants
// contribute nothing, so callers must check AllClaimed first. Shares are
// not rounded.
func Calculate(participants []string, items []Item) map[string]float64 {
	totals := make(map[string]float64, len(participants))
	for _, name := range participants {
		totals[name] = 0
	}

	for _, item := range items {
		if len(item.Claimants) == 0 {
			continue
		}
		share := item.Price / float64(len(item.Claimants))
		for _, name := range item.Claimants {
			totals[name] += share
		}
	}

	return totals
}

// ParseParticipants splits a comma separated list of names and trims each
// one. Duplicates and empty names are kept; a blank input yields no names.
func ParseParticipants(names string) []string {
	if strings.TrimSpace(names) == "" {
		return nil
	}
	parts := strings.Split(names, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// CurrencySymbol maps an ISO code to the symbol shown next to amounts
func CurrencySymbol(code string) string {
	if code == "INR" {
		return "₹"
	}
	return "$"
}
