// Package extract holds the reconciliation pipeline: the spreadsheet
// column mapper, the unstructured-text heuristics, the escalation
// quality gate, the result cleaner, and the normalizer.
package extract

import (
	"strconv"
	"strings"

	"swipe/internal/domain"
	"swipe/internal/port"
)

// columnRole is a canonical spreadsheet column role.
type columnRole int

const (
	roleSerial columnRole = iota
	roleCustomer
	rolePhone
	roleProduct
	roleQuantity
	roleUnitPrice
	roleTax
	roleTotal
	roleDate
)

// roleSynonyms maps each role to the substrings that identify it in a
// lowercased header. Order is the claim priority: earlier roles pick
// their column first and a header can be claimed by only one role.
var roleSynonyms = []struct {
	role  columnRole
	terms []string
}{
	{roleSerial, []string{"serial", "invoice no", "invoice num", "invoice #", "inv no", "bill no", "voucher"}},
	{roleCustomer, []string{"customer", "client", "buyer", "party", "billed to", "bill to"}},
	{rolePhone, []string{"phone", "mobile", "contact"}},
	{roleProduct, []string{"product", "item", "description", "goods", "particulars"}},
	{roleQuantity, []string{"qty", "quantity", "units", "nos"}},
	// tax claims before unit price so "Tax Rate" is not taken by the
	// bare "rate" synonym
	{roleTax, []string{"tax", "gst", "cgst", "sgst", "igst", "vat"}},
	{roleUnitPrice, []string{"unit price", "price", "rate", "unit cost"}},
	{roleTotal, []string{"grand total", "total", "amount", "net"}},
	{roleDate, []string{"date"}},
}

// MapColumns selects, for each canonical role, the first header whose
// lowercased text contains one of the role's synonyms. Unmatched roles
// are absent from the result.
func MapColumns(headers []string) map[columnRole]string {
	claimed := make(map[string]bool, len(headers))
	mapped := make(map[columnRole]string)

	for _, rs := range roleSynonyms {
		for _, h := range headers {
			if h == "" || claimed[h] {
				continue
			}
			lower := strings.ToLower(h)
			for _, term := range rs.terms {
				if strings.Contains(lower, term) {
					mapped[rs.role] = h
					claimed[h] = true
					break
				}
			}
			if _, ok := mapped[rs.role]; ok {
				break
			}
		}
	}
	return mapped
}

// FromSheet builds a raw fragment from one decoded sheet. Each row
// yields at most one product, at most one customer, and exactly one
// single-item invoice; rows where every mapped cell is empty or zero
// are skipped. An empty sheet yields an empty fragment, which the
// orchestrator treats as a signal to escalate, not as an error.
func FromSheet(sheet port.Sheet) domain.Fragment {
	var frag domain.Fragment
	cols := MapColumns(sheet.Headers)
	if len(cols) == 0 {
		return frag
	}

	cell := func(row map[string]string, role columnRole) string {
		h, ok := cols[role]
		if !ok {
			return ""
		}
		return strings.TrimSpace(row[h])
	}

	for _, row := range sheet.Rows {
		product := cell(row, roleProduct)
		customer := cell(row, roleCustomer)
		serial := cell(row, roleSerial)
		qty := parseNumber(cell(row, roleQuantity))
		unitPrice := parseNumber(cell(row, roleUnitPrice))
		taxRate := normalizeTaxRate(parseNumber(cell(row, roleTax)))
		total := parseNumber(cell(row, roleTotal))

		if product == "" && customer == "" && serial == "" && qty == 0 && unitPrice == 0 && total == 0 {
			continue
		}

		if product != "" {
			frag.Products = append(frag.Products, domain.RawProduct{
				Name:      product,
				UnitPrice: unitPrice,
				TaxRate:   taxRate,
				Quantity:  qty,
			})
		}
		if customer != "" {
			frag.Customers = append(frag.Customers, domain.RawCustomer{
				Name:  customer,
				Phone: cell(row, rolePhone),
			})
		}

		inv := domain.RawInvoice{
			SerialNumber: serial,
			CustomerName: customer,
			Date:         cell(row, roleDate),
			TotalAmount:  total,
		}
		if product != "" {
			inv.Items = append(inv.Items, domain.RawInvoiceItem{
				ProductName: product,
				Qty:         qty,
				UnitPrice:   unitPrice,
				TaxRate:     taxRate,
			})
		}
		frag.Invoices = append(frag.Invoices, inv)
	}
	return frag
}

// normalizeTaxRate interprets raw values above 1.0 as percentages
// (18 -> 0.18); values at or below 1.0 are already fractional.
func normalizeTaxRate(v float64) float64 {
	if v > 1.0 {
		return v / 100.0
	}
	return v
}

// parseNumber parses a cell value as a float, tolerating currency
// symbols, thousands separators, and surrounding whitespace. Anything
// unparseable is zero.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.NewReplacer("₹", "", "$", "", "€", "", "£", "", ",", "", "%", "", " ", "").Replace(s)
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.TrimPrefix(s, "rs.")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
