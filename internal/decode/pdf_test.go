package decode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"swipe/internal/decode"
)

func TestPDFDecoder_RejectsNonPDF(t *testing.T) {
	_, _, err := decode.NewPDFDecoder().DecodeText([]byte("not a pdf at all"))
	assert.Error(t, err)
}

func TestPDFDecoder_RecoversFromMalformedInput(t *testing.T) {
	// a plausible-looking header with garbage internals must surface as
	// an error, never a panic
	data := []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF")
	assert.NotPanics(t, func() {
		_, _, err := decode.NewPDFDecoder().DecodeText(data)
		assert.Error(t, err)
	})
}
