package decode

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdf text is capped so a pathological document cannot balloon the
// downstream heuristics.
const maxTextBytes = 512 * 1024

// PDFDecoder extracts plain text from PDF bytes via ledongthuc/pdf.
type PDFDecoder struct{}

// NewPDFDecoder creates a PDFDecoder.
func NewPDFDecoder() *PDFDecoder {
	return &PDFDecoder{}
}

// DecodeText returns the page count and the concatenated text of all
// pages with carriage returns stripped. The underlying reader panics on
// some malformed documents, so the whole call is recover()-guarded; on
// any failure it returns an error rather than panicking.
func (d *PDFDecoder) DecodeText(data []byte) (pages int, text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, text = 0, ""
			err = fmt.Errorf("pdf decode panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, "", fmt.Errorf("opening pdf: %w", err)
	}

	pages = reader.NumPage()
	if pages < 1 {
		pages = 1
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return pages, "", fmt.Errorf("extracting pdf text: %w", err)
	}
	raw, err := io.ReadAll(io.LimitReader(plain, maxTextBytes))
	if err != nil {
		return pages, "", fmt.Errorf("reading pdf text: %w", err)
	}

	return pages, strings.ReplaceAll(string(raw), "\r", ""), nil
}
