package receipt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zombor/smartbill/internal/llm"
	"github.com/zombor/smartbill/internal/ocr"
)

const successMessage = "Items interpreted successfully!"

// Service runs the receipt pipeline: OCR, currency detection, item
// interpretation. The clients it holds are shared by all requests.
type Service struct {
	extractor   ocr.Extractor
	currency    *CurrencyClassifier
	interpreter *Interpreter
}

// NewService creates a new Service using one completer for both model calls
func NewService(extractor ocr.Extractor, completer llm.Completer) *Service {
	return &Service{
		extractor:   extractor,
		currency:    NewCurrencyClassifier(completer),
		interpreter: NewInterpreter(completer),
	}
}

// ProcessBill runs the three stages in order. The first failure stops the
// pipeline and nothing from earlier stages is returned.
func (s *Service) ProcessBill(ctx context.Context, data []byte, contentType string) (*BillResult, error) {
	text, err := s.extractor.ExtractText(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}
	slog.Debug("Extracted receipt text", "text", text)

	currency, err := s.currency.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	parsed, err := s.interpreter.Interpret(ctx, text)
	if err != nil {
		return nil, err
	}

	return &BillResult{
		Message:  successMessage,
		Items:    parsed.Items,
		Total:    parsed.Total,
		Currency: currency,
	}, nil
}
