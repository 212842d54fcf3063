package handler

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"swipe/internal/domain"
	"swipe/internal/service"
	"swipe/internal/validate"
)

// ExtractHandler serves the batch extraction endpoint.
type ExtractHandler struct {
	extraction *service.ExtractionService
}

// NewExtractHandler creates an ExtractHandler.
func NewExtractHandler(extraction *service.ExtractionService) *ExtractHandler {
	return &ExtractHandler{extraction: extraction}
}

// extractResponse is the data payload for a successful extraction.
type extractResponse struct {
	Products  []domain.Product    `json:"products"`
	Customers []domain.Customer   `json:"customers"`
	Invoices  []domain.Invoice    `json:"invoices"`
	Issues    []validate.Issue    `json:"issues,omitempty"`
	Message   string              `json:"message,omitempty"`
	Debug     *service.DebugTrail `json:"_debug,omitempty"`
}

// Extract handles POST /api/v1/extract. It accepts a multipart batch
// under the "files" field and returns one normalized dataset.
func (h *ExtractHandler) Extract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_MULTIPART", "request must be multipart/form-data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		HandleError(c, domain.ErrEmptyBatch)
		return
	}

	docs := make([]service.Document, 0, len(files))
	for _, header := range files {
		f, openErr := header.Open()
		if openErr != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file: "+header.Filename)
			return
		}
		data, readErr := io.ReadAll(f)
		_ = f.Close()
		if readErr != nil {
			RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file: "+header.Filename)
			return
		}
		docs = append(docs, service.Document{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	debug := parseDebugFlag(c)

	dataset, issues, trail, err := h.extraction.ExtractBatch(c.Request.Context(), docs, debug)
	if err != nil {
		HandleError(c, err)
		return
	}

	resp := extractResponse{
		Products:  dataset.Products,
		Customers: dataset.Customers,
		Invoices:  dataset.Invoices,
		Issues:    issues,
		Debug:     trail,
	}
	// Empty collections serialize as [] rather than null.
	if resp.Products == nil {
		resp.Products = []domain.Product{}
	}
	if resp.Customers == nil {
		resp.Customers = []domain.Customer{}
	}
	if resp.Invoices == nil {
		resp.Invoices = []domain.Invoice{}
	}
	if len(resp.Products) == 0 && len(resp.Customers) == 0 && len(resp.Invoices) == 0 {
		resp.Message = "no invoice data could be extracted from the uploaded files"
	}

	requestID, _ := c.Get("request_id")
	log.Printf("[%s] extracted batch: %d file(s) -> %d product(s), %d customer(s), %d invoice(s)",
		requestID, len(docs), len(resp.Products), len(resp.Customers), len(resp.Invoices))

	RespondOK(c, resp)
}

func parseDebugFlag(c *gin.Context) bool {
	raw := c.Query("debug")
	if raw == "" {
		raw = c.PostForm("debug")
	}
	debug, _ := strconv.ParseBool(raw)
	return debug
}
