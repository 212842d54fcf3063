package gemini_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipe/internal/gemini"
)

const fragmentJSON = `{
  "products": [{"name": "Widget", "unitPrice": 100, "taxRate": 0.18, "priceWithTax": 118}],
  "customers": [{"name": "Alice", "phone": "9876543210"}],
  "invoices": [{
    "serialNumber": "INV-001",
    "customerName": "Alice",
    "date": "2024-01-15",
    "items": [{"productName": "Widget", "qty": 2, "unitPrice": 100, "taxRate": 0.18}],
    "tax": 36,
    "totalAmount": 236
  }]
}`

func TestParseFragment_DirectJSON(t *testing.T) {
	frag, err := gemini.ParseFragment(fragmentJSON)
	require.NoError(t, err)

	require.Len(t, frag.Products, 1)
	assert.Equal(t, "Widget", frag.Products[0].Name)
	require.Len(t, frag.Invoices, 1)
	assert.Equal(t, "INV-001", frag.Invoices[0].SerialNumber)
	require.Len(t, frag.Invoices[0].Items, 1)
	assert.Equal(t, 0.18, frag.Invoices[0].Items[0].TaxRate)
}

func TestParseFragment_FencedJSON(t *testing.T) {
	text := "Here is the extracted data:\n```json\n" + fragmentJSON + "\n```\nLet me know if you need anything else."
	frag, err := gemini.ParseFragment(text)
	require.NoError(t, err)
	assert.Len(t, frag.Customers, 1)
}

func TestParseFragment_BraceScan(t *testing.T) {
	text := "The document contains one invoice. " + fragmentJSON + " End of analysis."
	frag, err := gemini.ParseFragment(text)
	require.NoError(t, err)
	assert.Len(t, frag.Invoices, 1)
}

func TestParseFragment_EmptyCollectionsAreValid(t *testing.T) {
	frag, err := gemini.ParseFragment(`{"products": [], "customers": [], "invoices": []}`)
	require.NoError(t, err)
	assert.True(t, frag.Empty())
}

func TestParseFragment_NoJSON(t *testing.T) {
	_, err := gemini.ParseFragment("I could not read the document.")
	assert.Error(t, err)
}

func TestParseFragment_MissingTopLevelKeys(t *testing.T) {
	_, err := gemini.ParseFragment(`{"products": []}`)
	assert.Error(t, err)
}

func TestParseFragment_WrongShape(t *testing.T) {
	_, err := gemini.ParseFragment(`{"products": {}, "customers": [], "invoices": []}`)
	assert.Error(t, err)
}
