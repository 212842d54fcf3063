package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipe/internal/port"
)

func TestMapColumns_MatchesSynonyms(t *testing.T) {
	headers := []string{"Serial Number", "Customer", "Phone", "Product", "Quantity", "Unit Price", "Tax", "Total", "Date"}
	cols := MapColumns(headers)

	assert.Equal(t, "Serial Number", cols[roleSerial])
	assert.Equal(t, "Customer", cols[roleCustomer])
	assert.Equal(t, "Phone", cols[rolePhone])
	assert.Equal(t, "Product", cols[roleProduct])
	assert.Equal(t, "Quantity", cols[roleQuantity])
	assert.Equal(t, "Unit Price", cols[roleUnitPrice])
	assert.Equal(t, "Tax", cols[roleTax])
	assert.Equal(t, "Total", cols[roleTotal])
	assert.Equal(t, "Date", cols[roleDate])
}

func TestMapColumns_FirstMatchWins(t *testing.T) {
	cols := MapColumns([]string{"Amount", "Total Amount"})
	assert.Equal(t, "Amount", cols[roleTotal])
}

func TestMapColumns_HeaderClaimedOnce(t *testing.T) {
	// "Item Rate" could match both product ("item") and price ("rate");
	// product claims first, leaving price unmatched.
	cols := MapColumns([]string{"Item Rate"})
	assert.Equal(t, "Item Rate", cols[roleProduct])
	_, ok := cols[roleUnitPrice]
	assert.False(t, ok)
}

func TestMapColumns_GSTVariants(t *testing.T) {
	for _, header := range []string{"GST", "CGST", "SGST", "IGST", "VAT"} {
		cols := MapColumns([]string{header})
		assert.Equal(t, header, cols[roleTax], "header %q should map to the tax role", header)
	}
}

func TestMapColumns_TaxRateHeaderIsNotThePriceColumn(t *testing.T) {
	cols := MapColumns([]string{"Product", "Tax Rate", "Price"})
	assert.Equal(t, "Tax Rate", cols[roleTax])
	assert.Equal(t, "Price", cols[roleUnitPrice])
}

func TestFromSheet_SingleRow(t *testing.T) {
	sheet := port.Sheet{
		Name:    "Sheet1",
		Headers: []string{"Serial Number", "Customer", "Product", "Quantity", "Unit Price", "Tax", "Total", "Date"},
		Rows: []map[string]string{
			{
				"Serial Number": "INV-001",
				"Customer":      "Alice",
				"Product":       "Widget",
				"Quantity":      "2",
				"Unit Price":    "100",
				"Tax":           "18",
				"Total":         "236",
				"Date":          "2024-01-15",
			},
		},
	}

	frag := FromSheet(sheet)

	require.Len(t, frag.Products, 1)
	assert.Equal(t, "Widget", frag.Products[0].Name)
	assert.Equal(t, 100.0, frag.Products[0].UnitPrice)
	assert.Equal(t, 0.18, frag.Products[0].TaxRate)

	require.Len(t, frag.Customers, 1)
	assert.Equal(t, "Alice", frag.Customers[0].Name)

	require.Len(t, frag.Invoices, 1)
	inv := frag.Invoices[0]
	assert.Equal(t, "INV-001", inv.SerialNumber)
	assert.Equal(t, "Alice", inv.CustomerName)
	assert.Equal(t, "2024-01-15", inv.Date)
	assert.Equal(t, 236.0, inv.TotalAmount)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, 2.0, inv.Items[0].Qty)
	assert.Equal(t, 100.0, inv.Items[0].UnitPrice)
	assert.Equal(t, 0.18, inv.Items[0].TaxRate)
}

func TestFromSheet_SkipsEmptyRows(t *testing.T) {
	sheet := port.Sheet{
		Headers: []string{"Product", "Unit Price"},
		Rows: []map[string]string{
			{"Product": "", "Unit Price": ""},
			{"Product": "Widget", "Unit Price": "50"},
		},
	}

	frag := FromSheet(sheet)
	require.Len(t, frag.Invoices, 1)
	require.Len(t, frag.Products, 1)
	assert.Equal(t, "Widget", frag.Products[0].Name)
}

func TestFromSheet_NoMappableColumns(t *testing.T) {
	sheet := port.Sheet{
		Headers: []string{"Foo", "Bar"},
		Rows:    []map[string]string{{"Foo": "x", "Bar": "y"}},
	}
	assert.True(t, FromSheet(sheet).Empty())
}

func TestNormalizeTaxRate(t *testing.T) {
	assert.Equal(t, 0.18, normalizeTaxRate(18))
	assert.Equal(t, 0.18, normalizeTaxRate(0.18))
	assert.Equal(t, 1.0, normalizeTaxRate(1.0))
	assert.Equal(t, 0.0, normalizeTaxRate(0))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 1234.5, parseNumber("₹1,234.50"))
	assert.Equal(t, 500.0, parseNumber("Rs.500"))
	assert.Equal(t, 18.0, parseNumber("18%"))
	assert.Equal(t, 99.99, parseNumber(" $99.99 "))
	assert.Equal(t, 0.0, parseNumber("n/a"))
	assert.Equal(t, 0.0, parseNumber(""))
}
