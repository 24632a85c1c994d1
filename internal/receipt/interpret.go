package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zombor/smartbill/internal/llm"
)

// DefaultCurrency is used when the model gives no answer
const DefaultCurrency = "USD"

// CurrencyClassifier detects the currency of receipt text
type CurrencyClassifier struct {
	completer llm.Completer
}

// NewCurrencyClassifier creates a new CurrencyClassifier
func NewCurrencyClassifier(completer llm.Completer) *CurrencyClassifier {
	return &CurrencyClassifier{completer: completer}
}

// Classify returns the model's answer verbatim after trimming, or
// DefaultCurrency when the answer is empty. The code is not validated.
func (c *CurrencyClassifier) Classify(ctx context.Context, text string) (string, error) {
	reply, err := c.completer.Complete(ctx, currencyPrompt, currencyMessage(text))
	if err != nil {
		return "", fmt.Errorf("detecting currency: %w", err)
	}

	currency := strings.TrimSpace(reply)
	slog.Debug("Detected currency", "currency", currency)
	if currency == "" {
		return DefaultCurrency, nil
	}
	return currency, nil
}

// Interpreter extracts line items and the total from receipt text
type Interpreter struct {
	completer llm.Completer
}

// NewInterpreter creates a new Interpreter
func NewInterpreter(completer llm.Completer) *Interpreter {
	return &Interpreter{completer: completer}
}

// Interpret asks the model for the item list and parses its reply. A reply
// that breaks the contract is returned as *ParseError.
func (i *Interpreter) Interpret(ctx context.Context, text string) (*ParsedReceipt, error) {
	reply, err := i.completer.Complete(ctx, interpretPrompt, interpretMessage(text))
	if err != nil {
		return nil, fmt.Errorf("interpreting receipt: %w", err)
	}
	slog.Debug("Raw model response", "response", reply)

	parsed, err := parseReceiptItems(reply)
	if err != nil {
		slog.Error("Failed to parse model response", "error", err)
		return nil, err
	}
	return parsed, nil
}
