package extract

import "swipe/internal/domain"

// NeedsEscalation scores a heuristic-path fragment and reports whether
// the external extraction service should be invoked instead. It fires
// when the heuristics found nothing, when at least half of the product
// names read like document boilerplate, when every product carries a
// zero unit price, or when the sole invoice is missing its date or its
// items.
func NeedsEscalation(f domain.Fragment) bool {
	if f.ItemCount() == 0 && len(f.Products) == 0 {
		return true
	}

	if len(f.Products) > 0 {
		boilerplate := 0
		zeroPriced := 0
		for _, p := range f.Products {
			if looksLikeBoilerplate(p.Name) {
				boilerplate++
			}
			if p.UnitPrice == 0 {
				zeroPriced++
			}
		}
		if boilerplate*2 >= len(f.Products) {
			return true
		}
		if zeroPriced == len(f.Products) {
			return true
		}
	}

	if len(f.Invoices) == 1 {
		inv := f.Invoices[0]
		if inv.Date == "" || len(inv.Items) == 0 {
			return true
		}
	}
	return false
}
