package ocr

import (
	"context"
	"fmt"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
)

// visionAPI is the subset of the Cloud Vision client used here
type visionAPI interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// Vision implements the Extractor interface using Google Cloud Vision
type Vision struct {
	client visionAPI
}

// NewVision creates a Vision extractor. An empty credentialsFile falls back
// to application default credentials.
func NewVision(ctx context.Context, credentialsFile string) (*Vision, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}

	return &Vision{client: client}, nil
}

// ExtractText runs document text detection on a single image. Vision reports
// the full text with one detected line per row, so each row is treated as a
// LINE block.
func (v *Vision) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	data, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	resp, err := v.client.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image: &visionpb.Image{Content: data},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("calling vision: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", nil
	}

	result := resp.GetResponses()[0]
	if status := result.GetError(); status != nil && status.GetCode() != 0 {
		return "", fmt.Errorf("calling vision: %s (code %d)", status.GetMessage(), status.GetCode())
	}
	annotation := result.GetFullTextAnnotation()
	if annotation == nil {
		return "", nil
	}

	var lines []string
	for _, line := range strings.Split(annotation.GetText(), "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return joinLines(lines), nil
}

// Close closes the Vision client
func (v *Vision) Close() error {
	return v.client.Close()
}
