package extract

import (
	"fmt"
	"strings"

	"swipe/internal/domain"
)

// registry assigns stable synthetic ids to names in first-seen order.
// Keys are lowercased trimmed names; ids are "<prefix>_<n>".
type registry struct {
	prefix string
	byKey  map[string]int // key -> index into entity slice
}

func newRegistry(prefix string) *registry {
	return &registry{prefix: prefix, byKey: make(map[string]int)}
}

func identityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *registry) nextID() string {
	return fmt.Sprintf("%s_%d", r.prefix, len(r.byKey)+1)
}

// Normalize turns a cleaned fragment into the canonical dataset:
// products and customers deduplicated by case-insensitive name with
// synthetic ids, invoice references resolved to those ids, and derived
// numeric fields recomputed.
//
// Sequencing matters: entities present directly in the fragment are
// registered before any invoice is processed, so phone numbers and tax
// fields attached there survive; invoices then resolve or create the
// remaining names in order.
func Normalize(f domain.Fragment) domain.Dataset {
	products := newRegistry("prod")
	customers := newRegistry("cust")

	var ds domain.Dataset

	for _, p := range f.Products {
		key := identityKey(p.Name)
		if key == "" {
			continue
		}
		if _, seen := products.byKey[key]; seen {
			continue
		}
		priceWithTax := p.PriceWithTax
		if priceWithTax == 0 {
			priceWithTax = p.UnitPrice * (1 + p.TaxRate)
		}
		id := products.nextID()
		products.byKey[key] = len(ds.Products)
		ds.Products = append(ds.Products, domain.Product{
			ID:           id,
			Name:         strings.TrimSpace(p.Name),
			UnitPrice:    p.UnitPrice,
			TaxRate:      p.TaxRate,
			PriceWithTax: priceWithTax,
			Quantity:     p.Quantity,
			Discount:     p.Discount,
		})
	}

	// rawTotals remembers supplied customer totals for the
	// zero-invoice fallback after recomputation.
	rawTotals := make(map[string]float64)
	for _, c := range f.Customers {
		key := identityKey(c.Name)
		if key == "" {
			continue
		}
		if _, seen := customers.byKey[key]; seen {
			continue
		}
		id := customers.nextID()
		customers.byKey[key] = len(ds.Customers)
		rawTotals[key] = c.TotalPurchase
		ds.Customers = append(ds.Customers, domain.Customer{
			ID:    id,
			Name:  strings.TrimSpace(c.Name),
			Phone: c.Phone,
		})
	}

	for _, raw := range f.Invoices {
		inv := domain.Invoice{
			ID:           fmt.Sprintf("inv_%d", len(ds.Invoices)+1),
			SerialNumber: raw.SerialNumber,
			Date:         raw.Date,
		}

		if key := identityKey(raw.CustomerName); key != "" {
			idx, seen := customers.byKey[key]
			if !seen {
				id := customers.nextID()
				idx = len(ds.Customers)
				customers.byKey[key] = idx
				ds.Customers = append(ds.Customers, domain.Customer{
					ID:   id,
					Name: strings.TrimSpace(raw.CustomerName),
				})
			}
			inv.CustomerID = ds.Customers[idx].ID
		}

		subtotal := 0.0
		itemTax := 0.0
		for _, it := range raw.Items {
			item := domain.InvoiceItem{
				Qty:       it.Qty,
				UnitPrice: it.UnitPrice,
				TaxRate:   it.TaxRate,
			}
			if key := identityKey(it.ProductName); key != "" {
				idx, seen := products.byKey[key]
				if !seen {
					id := products.nextID()
					idx = len(ds.Products)
					products.byKey[key] = idx
					ds.Products = append(ds.Products, domain.Product{
						ID:           id,
						Name:         strings.TrimSpace(it.ProductName),
						UnitPrice:    it.UnitPrice,
						TaxRate:      it.TaxRate,
						PriceWithTax: it.UnitPrice * (1 + it.TaxRate),
					})
				}
				item.ProductID = ds.Products[idx].ID
			}
			subtotal += it.UnitPrice * it.Qty
			itemTax += it.UnitPrice * it.Qty * it.TaxRate
			inv.Items = append(inv.Items, item)
		}

		inv.Tax = itemTax
		if raw.Tax != 0 {
			inv.Tax = raw.Tax
		}
		inv.TotalAmount = raw.TotalAmount
		if inv.TotalAmount == 0 {
			inv.TotalAmount = subtotal + inv.Tax
		}

		ds.Invoices = append(ds.Invoices, inv)
	}

	// Customer totals are derived from referencing invoices; the
	// raw-supplied value only survives when no invoice references the
	// customer.
	for i := range ds.Customers {
		sum := 0.0
		for _, inv := range ds.Invoices {
			if inv.CustomerID == ds.Customers[i].ID {
				sum += inv.TotalAmount
			}
		}
		if sum == 0 {
			sum = rawTotals[identityKey(ds.Customers[i].Name)]
		}
		ds.Customers[i].TotalPurchase = sum
	}

	return ds
}
