package ocr

import (
	"context"
	"errors"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// mockVision is a mock implementation of visionAPI
type mockVision struct {
	annotation *visionpb.TextAnnotation
	noResponse bool
	err        error
	calls      int
	request    *visionpb.BatchAnnotateImagesRequest
}

func (m *mockVision) BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	m.calls++
	m.request = req
	if m.err != nil {
		return nil, m.err
	}
	if m.noResponse {
		return &visionpb.BatchAnnotateImagesResponse{}, nil
	}
	return &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{
			{FullTextAnnotation: m.annotation},
		},
	}, nil
}

func (m *mockVision) Close() error {
	return nil
}

var _ = Describe("Vision", func() {
	var (
		client    *mockVision
		extractor *Vision
		text      string
		err       error
	)

	BeforeEach(func() {
		client = &mockVision{
			annotation: &visionpb.TextAnnotation{Text: "CHAI LATTE 4.50 \n\n CGST 0.11\nSGST 0.11\n"},
		}
		extractor = &Vision{client: client}
	})

	JustBeforeEach(func() {
		text, err = extractor.ExtractText(context.Background(), pngBytes(), "image/png")
	})

	When("vision returns text", func() {
		It("should return trimmed non-empty lines", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("CHAI LATTE 4.50\nCGST 0.11\nSGST 0.11"))
		})

		It("should request document text detection for one image", func() {
			Expect(client.calls).To(Equal(1))
			Expect(client.request.GetRequests()).To(HaveLen(1))
			req := client.request.GetRequests()[0]
			Expect(req.GetImage().GetContent()).To(Equal(pngBytes()))
			Expect(req.GetFeatures()).To(HaveLen(1))
			Expect(req.GetFeatures()[0].GetType()).To(Equal(visionpb.Feature_DOCUMENT_TEXT_DETECTION))
		})
	})

	When("vision returns no responses", func() {
		BeforeEach(func() {
			client.noResponse = true
		})

		It("should return an empty string", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())
		})
	})

	When("vision returns no annotation", func() {
		BeforeEach(func() {
			client.annotation = nil
		})

		It("should return an empty string", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())
		})
	})

	When("vision fails", func() {
		BeforeEach(func() {
			client.err = errors.New("quota exceeded")
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("quota exceeded"))
			Expect(client.calls).To(Equal(1))
		})
	})
})
