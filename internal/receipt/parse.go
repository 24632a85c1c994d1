package receipt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// totalSentinel marks the entry carrying the receipt total
const totalSentinel = "TOTAL"

var codeFence = regexp.MustCompile("```json|```")

// ParseError reports model output that does not match the item contract
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "could not parse model response as valid JSON: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// rawItem keeps pointers so missing and null fields can be told apart
type rawItem struct {
	Item  *string  `json:"item"`
	Price *float64 `json:"price"`
}

// stripCodeFences removes every markdown fence marker and trims the result
func stripCodeFences(text string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

// parseReceiptItems parses the model's JSON array of {item, price} entries.
// Entries named TOTAL are removed from the items; the first one supplies the
// total, which stays zero when there is none.
func parseReceiptItems(text string) (*ParsedReceipt, error) {
	text = stripCodeFences(text)

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return nil, &ParseError{Err: err}
	}
	if entries == nil {
		return nil, &ParseError{Err: fmt.Errorf("expected a JSON array, got %s", text)}
	}

	parsed := &ParsedReceipt{Items: make([]LineItem, 0, len(entries))}
	foundTotal := false
	for i, entry := range entries {
		item, err := decodeEntry(entry)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("entry %d: %w", i, err)}
		}

		if item.Name == totalSentinel {
			if !foundTotal {
				parsed.Total = item.Price
				foundTotal = true
			}
			continue
		}
		parsed.Items = append(parsed.Items, item)
	}

	return parsed, nil
}

func decodeEntry(entry json.RawMessage) (LineItem, error) {
	trimmed := bytes.TrimSpace(entry)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return LineItem{}, fmt.Errorf("expected an object, got %s", string(trimmed))
	}

	var raw rawItem
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return LineItem{}, err
	}
	if raw.Item == nil {
		return LineItem{}, fmt.Errorf(`missing string field "item"`)
	}
	if raw.Price == nil {
		return LineItem{}, fmt.Errorf(`missing number field "price"`)
	}

	return LineItem{Name: *raw.Item, Price: *raw.Price}, nil
}
