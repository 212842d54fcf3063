package domain

// Fragment is one unreconciled extraction result produced by a single
// extraction path for a single document. Names are free text and numeric
// fields may be absent, zero, or otherwise unreliable until normalization.
type Fragment struct {
	Products  []RawProduct  `json:"products"`
	Customers []RawCustomer `json:"customers"`
	Invoices  []RawInvoice  `json:"invoices"`
}

// Empty reports whether the fragment carries no entities at all.
func (f Fragment) Empty() bool {
	return len(f.Products) == 0 && len(f.Customers) == 0 && len(f.Invoices) == 0
}

// ItemCount returns the total number of line items across all invoices.
func (f Fragment) ItemCount() int {
	n := 0
	for _, inv := range f.Invoices {
		n += len(inv.Items)
	}
	return n
}

// RawProduct is a pre-normalization product row.
type RawProduct struct {
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	TaxRate      float64 `json:"taxRate"` // fraction, e.g. 0.18
	PriceWithTax float64 `json:"priceWithTax,omitempty"`
	Quantity     float64 `json:"quantity,omitempty"`
	Discount     float64 `json:"discount,omitempty"`
}

// RawCustomer is a pre-normalization customer record.
type RawCustomer struct {
	Name          string  `json:"name"`
	Phone         string  `json:"phone,omitempty"`
	TotalPurchase float64 `json:"totalPurchase,omitempty"`
}

// RawInvoiceItem is a pre-normalization invoice line item. The product is
// referenced by free-text name; normalization resolves it to an id.
type RawInvoiceItem struct {
	ProductName string  `json:"productName,omitempty"`
	Qty         float64 `json:"qty"`
	UnitPrice   float64 `json:"unitPrice"`
	TaxRate     float64 `json:"taxRate"`
}

// RawInvoice is a pre-normalization invoice.
type RawInvoice struct {
	SerialNumber string           `json:"serialNumber,omitempty"`
	CustomerName string           `json:"customerName,omitempty"`
	Date         string           `json:"date,omitempty"`
	Items        []RawInvoiceItem `json:"items"`
	Tax          float64          `json:"tax,omitempty"`
	TotalAmount  float64          `json:"totalAmount,omitempty"`
}

// Product is a canonical, deduplicated product. Identity key is the
// lowercased trimmed name; at most one Product per distinct key exists
// within a normalization run.
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	TaxRate      float64 `json:"taxRate"`
	PriceWithTax float64 `json:"priceWithTax"`
	Quantity     float64 `json:"quantity,omitempty"`
	Discount     float64 `json:"discount,omitempty"`
}

// Customer is a canonical, deduplicated customer. TotalPurchase is derived
// from referencing invoices, falling back to the raw-supplied value only
// when no invoice references the customer.
type Customer struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone,omitempty"`
	TotalPurchase float64 `json:"totalPurchase"`
}

// InvoiceItem is an invoice line with the product reference resolved.
type InvoiceItem struct {
	ProductID string  `json:"productId"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	TaxRate   float64 `json:"taxRate"`
}

// Invoice is a canonical invoice with resolved references and recomputed
// derived amounts. CustomerID is empty when the source had no customer name.
type Invoice struct {
	ID           string        `json:"id"`
	SerialNumber string        `json:"serialNumber"`
	CustomerID   string        `json:"customerId"`
	Items        []InvoiceItem `json:"items"`
	Tax          float64       `json:"tax"`
	TotalAmount  float64       `json:"totalAmount"`
	Date         string        `json:"date"`
}

// Dataset is the reconciled output of one extraction request. Identifiers
// are stable only within the request that produced them.
type Dataset struct {
	Products  []Product  `json:"products"`
	Customers []Customer `json:"customers"`
	Invoices  []Invoice  `json:"invoices"`
}
