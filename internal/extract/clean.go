package extract

import (
	"strings"

	"swipe/internal/domain"
)

// boilerplateKeywords flag names that are really document chrome:
// addresses, bank details, tax-authority jargon, and fine print that
// heuristic scrapers routinely misread as products.
var boilerplateKeywords = []string{
	"address", "bank", "ifsc", "account no", "a/c no", "branch",
	"gstin", "gst no", "pan", "hsn", "upi",
	"terms and conditions", "terms & conditions",
	"authorized signatory", "authorised signatory",
	"thank you", "e.&o.e", "e. & o.e", "subject to", "jurisdiction",
	"declaration", "place of supply", "reverse charge",
	"amount in words", "payment due",
}

// noiseTokens are known sample/survey artifacts seen in test corpora.
var noiseTokens = []string{
	"sample", "survey", "lorem ipsum", "test product", "n/a", "none",
}

const longNameThreshold = 40

// looksLikeBoilerplate classifies a name as document chrome rather
// than a product: keyword hits, or implausibly long text with embedded
// commas.
func looksLikeBoilerplate(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return true
	}
	for _, kw := range boilerplateKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return len(lower) > longNameThreshold && strings.Contains(lower, ",")
}

// Clean filters clearly-invalid products and invoice items out of a
// merged fragment before normalization. Customers pass through
// untouched. The input fragment is not modified.
func Clean(f domain.Fragment) domain.Fragment {
	out := domain.Fragment{
		Customers: append([]domain.RawCustomer(nil), f.Customers...),
	}

	for _, p := range f.Products {
		if dropName(p.Name) {
			continue
		}
		out.Products = append(out.Products, p)
	}

	for _, inv := range f.Invoices {
		kept := inv
		kept.Items = nil
		for _, it := range inv.Items {
			if dropName(it.ProductName) {
				continue
			}
			if it.UnitPrice <= 0 && it.Qty <= 0 {
				continue
			}
			kept.Items = append(kept.Items, it)
		}
		out.Invoices = append(out.Invoices, kept)
	}
	return out
}

// dropName decides whether a product or item name is noise.
func dropName(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return true
	}
	if looksLikeBoilerplate(trimmed) {
		return true
	}
	if strings.HasSuffix(trimmed, ",") && !containsDigit(trimmed) {
		return true
	}
	if strings.Contains(trimmed, ",") && isShouting(trimmed) {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, tok := range noiseTokens {
		if lower == tok {
			return true
		}
	}
	return false
}

// isShouting reports whether the name has letters and every letter is
// uppercase.
func isShouting(s string) bool {
	hasLetter := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		}
	}
	return hasLetter
}
