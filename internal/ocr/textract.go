package ocr

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// textractAPI is the subset of the Textract client used here
type textractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// Textract implements the Extractor interface using AWS Textract
type Textract struct {
	client textractAPI
}

// NewTextract creates a Textract extractor. Credentials come from the
// default AWS chain (environment, shared config, instance role).
func NewTextract(ctx context.Context, region string) (*Textract, error) {
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return &Textract{
		client: textract.NewFromConfig(cfg),
	}, nil
}

// ExtractText detects document text and keeps only LINE blocks
func (t *Textract) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	data, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	out, err := t.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: data},
	})
	if err != nil {
		return "", fmt.Errorf("calling textract: %w", err)
	}

	return linesFromBlocks(out.Blocks), nil
}

// linesFromBlocks collects the text of LINE blocks in service order
func linesFromBlocks(blocks []types.Block) string {
	lines := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil || *block.Text == "" {
			continue
		}
		lines = append(lines, *block.Text)
	}
	return joinLines(lines)
}

// Close is a no-op; the AWS client holds no resources
func (t *Textract) Close() error {
	return nil
}
