package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/smartbill/internal/split"
)

const (
	noFileMessage    = "No file uploaded."
	tooLargeMessage  = "File is too large."
	processingFailed = "Error processing document."
	parseFailed      = "Error in interpreting receipt data."
)

// maxBillBody caps the JSON body of bill and split requests
const maxBillBody = 1 << 20

// uploadFields are the multipart fields a bill may arrive in
var uploadFields = []string{"bill", "file"}

// writeJSON writes v with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleHealth reports that the process is serving
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok")
}

// isTooLarge reports whether err came from a body that hit its size cap
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// formFile returns the first uploaded file found in uploadFields
func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	var lastErr error
	for _, field := range uploadFields {
		f, header, err := r.FormFile(field)
		if err == nil {
			return f, header, nil
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

// contentTypeFor picks the upload's MIME type from its part header, falling
// back to the file extension
func contentTypeFor(header *multipart.FileHeader) string {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		case ".pdf":
			contentType = "application/pdf"
		case ".heic":
			contentType = "image/heic"
		case ".heif":
			contentType = "image/heif"
		case ".tif", ".tiff":
			contentType = "image/tiff"
		}
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// handleUploadBill runs an uploaded receipt through the pipeline
func (s *Server) handleUploadBill(w http.ResponseWriter, r *http.Request) {
	requestID := s.newID()
	w.Header().Set("X-Request-ID", requestID)
	logger := slog.With("request_id", requestID)

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	if err := r.ParseMultipartForm(s.config.MaxUploadSize); err != nil {
		logger.Warn("Error parsing multipart form", "error", err)
		if isTooLarge(err) {
			http.Error(w, tooLargeMessage, http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, noFileMessage, http.StatusBadRequest)
		return
	}

	f, header, err := formFile(r)
	if err != nil {
		logger.Warn("No file in upload", "error", err)
		http.Error(w, noFileMessage, http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		logger.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": processingFailed,
			"error":   err.Error(),
		})
		return
	}

	contentType := contentTypeFor(header)
	logger.Info("Processing bill", "filename", header.Filename, "content_type", contentType, "size", len(data))

	result, err := s.service.ProcessBill(r.Context(), data, contentType)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			logger.Error("Error interpreting receipt", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"message": parseFailed,
				"error":   err.Error(),
			})
			return
		}
		logger.Error("Error processing bill", "filename", header.Filename, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": processingFailed,
			"error":   err.Error(),
		})
		return
	}

	// Ensure we always return an array, not nil
	if result.Items == nil {
		result.Items = []LineItem{}
	}

	logger.Info("Bill processed", "items", len(result.Items), "total", result.Total, "currency", result.Currency)
	writeJSON(w, http.StatusOK, result)
}

// billRequest carries a bill from the client. Participants may be sent as
// a list or as the comma separated names the user typed; edits are applied
// in order on top of items.
type billRequest struct {
	Participants []string     `json:"participants"`
	Names        string       `json:"names,omitempty"`
	Items        []split.Item `json:"items"`
	Edits        []split.Edit `json:"edits,omitempty"`
	Currency     string       `json:"currency,omitempty"`
}

// billState is the bill after edits, in the shape the UI renders
type billState struct {
	Participants []string     `json:"participants"`
	Items        []split.Item `json:"items"`
	Total        float64      `json:"total"`
	Unclaimed    []int        `json:"unclaimed"`
	AllClaimed   bool         `json:"all_claimed"`
	Symbol       string       `json:"symbol"`
}

type splitResponse struct {
	Split  map[string]float64 `json:"split"`
	Total  float64            `json:"total"`
	Symbol string             `json:"symbol"`
}

// decodeBill reads a billRequest and builds the edited bill. Failures have
// already been written to w when ok is false.
func decodeBill(w http.ResponseWriter, r *http.Request) (req billRequest, bill split.Bill, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBillBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isTooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Request body is too large"})
			return req, bill, false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return req, bill, false
	}

	participants := req.Participants
	if participants == nil {
		participants = split.ParseParticipants(req.Names)
	}

	bill, err := split.NewBill(participants, req.Items).ApplyAll(req.Edits)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return req, bill, false
	}
	return req, bill, true
}

// handleBill applies edits to a bill and returns its new state
func (s *Server) handleBill(w http.ResponseWriter, r *http.Request) {
	req, bill, ok := decodeBill(w, r)
	if !ok {
		return
	}

	items := bill.Items()
	// Ensure we always return arrays, not nil
	if items == nil {
		items = []split.Item{}
	}
	for i := range items {
		if items[i].Claimants == nil {
			items[i].Claimants = []string{}
		}
	}
	participants := bill.Participants()
	if participants == nil {
		participants = []string{}
	}
	unclaimed := bill.Unclaimed()
	if unclaimed == nil {
		unclaimed = []int{}
	}

	slog.Debug("Bill updated", "items", bill.Len(), "edits", len(req.Edits))
	writeJSON(w, http.StatusOK, billState{
		Participants: participants,
		Items:        items,
		Total:        bill.Total(),
		Unclaimed:    unclaimed,
		AllClaimed:   bill.AllClaimed(),
		Symbol:       split.CurrencySymbol(req.Currency),
	})
}

// handleSplit divides a fully claimed bill among its participants
func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	req, bill, ok := decodeBill(w, r)
	if !ok {
		return
	}

	if !bill.AllClaimed() {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":     "Every item must be claimed by at least one participant",
			"unclaimed": bill.Unclaimed(),
		})
		return
	}

	writeJSON(w, http.StatusOK, splitResponse{
		Split:  bill.Split(),
		Total:  bill.Total(),
		Symbol: split.CurrencySymbol(req.Currency),
	})
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}
