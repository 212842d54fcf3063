package validate

import (
	"fmt"
	"math"

	"swipe/internal/domain"
)

const mathTolerance = 1.00

// datasetRule is a generic built-in rule backed by a check function.
type datasetRule struct {
	key      string
	severity Severity
	check    func(ds *domain.Dataset) []Issue
}

func (r *datasetRule) Key() string                      { return r.key }
func (r *datasetRule) Severity() Severity               { return r.severity }
func (r *datasetRule) Check(ds *domain.Dataset) []Issue { return r.check(ds) }

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= mathTolerance
}

func fmtf(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func (r *datasetRule) issue(fieldPath, message string) Issue {
	return Issue{RuleKey: r.key, FieldPath: fieldPath, Severity: r.severity, Message: message}
}

// BuiltinRules returns the built-in consistency rules in evaluation order.
func BuiltinRules() []Rule {
	var rules []Rule

	required := &datasetRule{key: "required.invoice.fields", severity: SeverityWarning}
	required.check = func(ds *domain.Dataset) []Issue {
		var issues []Issue
		for i, inv := range ds.Invoices {
			if inv.SerialNumber == "" {
				issues = append(issues, required.issue(
					fmt.Sprintf("invoices[%d].serialNumber", i), "invoice has no serial number"))
			}
			if inv.Date == "" {
				issues = append(issues, required.issue(
					fmt.Sprintf("invoices[%d].date", i), "invoice has no date"))
			}
			if len(inv.Items) == 0 {
				issues = append(issues, required.issue(
					fmt.Sprintf("invoices[%d].items", i), "invoice has no line items"))
			}
		}
		return issues
	}
	rules = append(rules, required)

	refs := &datasetRule{key: "ref.integrity", severity: SeverityError}
	refs.check = func(ds *domain.Dataset) []Issue {
		customers := make(map[string]bool, len(ds.Customers))
		for _, c := range ds.Customers {
			customers[c.ID] = true
		}
		products := make(map[string]bool, len(ds.Products))
		for _, p := range ds.Products {
			products[p.ID] = true
		}

		var issues []Issue
		for i, inv := range ds.Invoices {
			if inv.CustomerID != "" && !customers[inv.CustomerID] {
				issues = append(issues, refs.issue(
					fmt.Sprintf("invoices[%d].customerId", i),
					fmt.Sprintf("customer %s does not exist", inv.CustomerID)))
			}
			for j, item := range inv.Items {
				if !products[item.ProductID] {
					issues = append(issues, refs.issue(
						fmt.Sprintf("invoices[%d].items[%d].productId", i, j),
						fmt.Sprintf("product %s does not exist", item.ProductID)))
				}
			}
		}
		return issues
	}
	rules = append(rules, refs)

	totals := &datasetRule{key: "math.invoice.total", severity: SeverityWarning}
	totals.check = func(ds *domain.Dataset) []Issue {
		var issues []Issue
		for i, inv := range ds.Invoices {
			if len(inv.Items) == 0 {
				continue
			}
			subtotal := 0.0
			for _, item := range inv.Items {
				subtotal += item.Qty * item.UnitPrice
			}
			expected := subtotal + inv.Tax
			if !approxEqual(inv.TotalAmount, expected) {
				issues = append(issues, totals.issue(
					fmt.Sprintf("invoices[%d].totalAmount", i),
					fmt.Sprintf("total %s does not match items plus tax (%s)", fmtf(inv.TotalAmount), fmtf(expected))))
			}
		}
		return issues
	}
	rules = append(rules, totals)

	purchases := &datasetRule{key: "math.customer.total_purchase", severity: SeverityWarning}
	purchases.check = func(ds *domain.Dataset) []Issue {
		sums := make(map[string]float64)
		counts := make(map[string]int)
		for _, inv := range ds.Invoices {
			if inv.CustomerID == "" {
				continue
			}
			sums[inv.CustomerID] += inv.TotalAmount
			counts[inv.CustomerID]++
		}

		var issues []Issue
		for i, c := range ds.Customers {
			if counts[c.ID] == 0 {
				continue
			}
			if !approxEqual(c.TotalPurchase, sums[c.ID]) {
				issues = append(issues, purchases.issue(
					fmt.Sprintf("customers[%d].totalPurchase", i),
					fmt.Sprintf("total purchase %s does not match invoice totals (%s)", fmtf(c.TotalPurchase), fmtf(sums[c.ID]))))
			}
		}
		return issues
	}
	rules = append(rules, purchases)

	prices := &datasetRule{key: "logical.product.price", severity: SeverityWarning}
	prices.check = func(ds *domain.Dataset) []Issue {
		var issues []Issue
		for i, p := range ds.Products {
			if p.UnitPrice < 0 {
				issues = append(issues, prices.issue(
					fmt.Sprintf("products[%d].unitPrice", i), "unit price is negative"))
			}
			if p.PriceWithTax > 0 && p.PriceWithTax < p.UnitPrice {
				issues = append(issues, prices.issue(
					fmt.Sprintf("products[%d].priceWithTax", i), "price with tax is below the unit price"))
			}
		}
		return issues
	}
	rules = append(rules, prices)

	return rules
}
