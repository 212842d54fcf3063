package extract

import "swipe/internal/domain"

// Merge combines per-document fragments into one accumulator fragment,
// preserving argument order. It is pure: inputs are never modified and
// the result shares no slices with them.
func Merge(frags ...domain.Fragment) domain.Fragment {
	var out domain.Fragment
	for _, f := range frags {
		out.Products = append(out.Products, f.Products...)
		out.Customers = append(out.Customers, f.Customers...)
		out.Invoices = append(out.Invoices, f.Invoices...)
	}
	return out
}
