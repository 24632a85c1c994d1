package receipt_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/smartbill/internal/llm"
	"github.com/zombor/smartbill/internal/receipt"
	"github.com/zombor/smartbill/internal/split"
)

// stubExtractor returns fixed OCR text
type stubExtractor struct {
	text string
}

func (s *stubExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	return s.text, nil
}

func (s *stubExtractor) Close() error {
	return nil
}

func ollamaReply(content string) http.HandlerFunc {
	return ghttp.CombineHandlers(
		ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
		ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
			"message": map[string]string{"role": "assistant", "content": content},
			"done":    true,
		}),
	)
}

var _ = Describe("Integration", func() {
	var (
		ollamaServer *ghttp.Server
		appServer    *ghttp.Server
		server       *receipt.Server
	)

	BeforeEach(func() {
		ollamaServer = ghttp.NewServer()
		ollamaServer.AppendHandlers(
			ollamaReply("INR"),
			ollamaReply("```json\n"+`[{"item":"Paneer Tikka","price":250},{"item":"Butter Naan","price":60},{"item":"CGST","price":15.5},{"item":"TOTAL","price":325.5}]`+"\n```"),
		)

		completer, err := llm.NewOllama(ollamaServer.URL(), "llama3.1")
		Expect(err).NotTo(HaveOccurred())

		extractor := &stubExtractor{text: "PANEER TKKA 250.00\nBTR NAAN 60.00\nCGST 2.5% 15.50\nTOTAL 325.50"}
		service := receipt.NewService(extractor, completer)
		server = receipt.NewServer(service, receipt.ServerConfig{RateLimit: 10})

		appServer = ghttp.NewServer()
	})

	AfterEach(func() {
		appServer.Close()
		ollamaServer.Close()
	})

	It("should upload a bill, interpret it, and split it", func() {
		// Register the server handler twice because we make two requests
		appServer.AppendHandlers(
			server.ServeHTTP, // For the upload
			server.ServeHTTP, // For the split
		)

		// --- Step 1: Upload ---

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("bill", "dinner.jpg")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("fake jpeg content"))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(appServer.URL()+"/upload-bill", writer.FormDataContentType(), body)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("application/json"))
		Expect(resp.Header.Get("X-Request-ID")).NotTo(BeEmpty())

		var bill receipt.BillResult
		respBody, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(respBody, &bill)).To(Succeed())

		Expect(bill.Currency).To(Equal("INR"))
		Expect(bill.Total).To(Equal(325.5))
		Expect(bill.Items).To(HaveLen(3))
		Expect(ollamaServer.ReceivedRequests()).To(HaveLen(2))

		// --- Step 2: Split ---

		participants := split.ParseParticipants("Asha, Ravi")
		items := make([]split.Item, len(bill.Items))
		for i, item := range bill.Items {
			items[i] = split.Item{Name: item.Name, Price: item.Price, Claimants: participants}
		}
		items[0].Claimants = []string{"Asha"}

		payload, err := json.Marshal(map[string]any{
			"participants": participants,
			"items":        items,
			"currency":     bill.Currency,
		})
		Expect(err).NotTo(HaveOccurred())

		splitResp, err := http.Post(appServer.URL()+"/split", "application/json", strings.NewReader(string(payload)))
		Expect(err).NotTo(HaveOccurred())
		defer splitResp.Body.Close()
		Expect(splitResp.StatusCode).To(Equal(http.StatusOK))

		var result struct {
			Split  map[string]float64 `json:"split"`
			Total  float64            `json:"total"`
			Symbol string             `json:"symbol"`
		}
		Expect(json.NewDecoder(splitResp.Body).Decode(&result)).To(Succeed())

		Expect(result.Symbol).To(Equal("₹"))
		Expect(result.Total).To(BeNumerically("~", 325.5, 1e-9))
		Expect(result.Split["Asha"]).To(BeNumerically("~", 250+37.75, 1e-9))
		Expect(result.Split["Ravi"]).To(BeNumerically("~", 37.75, 1e-9))
		Expect(result.Split["Asha"] + result.Split["Ravi"]).To(BeNumerically("~", result.Total, 1e-9))
	})
})
