package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"swipe/internal/domain"
)

const (
	headScanLines  = 20 // dates are assumed near the top
	tailScanLines  = 40 // grand totals are assumed near the end
	labelScanAhead = 3  // lines to look past a "Bill To:"-style label
)

var (
	customerLabelRe = regexp.MustCompile(`(?i)^\s*(bill(?:ed)?\s*to|customer(?:\s*name)?|client|sold\s*to|buyer|consignee)\s*[:\-]?\s*(.*)$`)
	inlineKVRe      = regexp.MustCompile(`(?i)(?:customer|client|buyer)\s*(?:name)?\s*[:\-]\s*([^,|]{2,60})`)
	metadataLabelRe = regexp.MustCompile(`(?i)^\s*(invoice|date|gst|gstin|pan|phone|mobile|email|address|state|place|po\s*box|order|payment|due|terms)\b`)

	phoneLabelRe = regexp.MustCompile(`(?i)(?:phone|mobile|contact|tel)\s*(?:no\.?|number)?\s*[:\-]?\s*([+\d][\d\s\-()]{5,20}\d)`)
	bareDigitsRe = regexp.MustCompile(`(?:^|\s)(\+?\d[\d\s\-()]{5,18}\d)(?:\s|$)`)

	serialLabelRe     = regexp.MustCompile(`(?i)(?:invoice|bill|receipt)\s*(?:no\.?|number|num|#)\s*[:\-#]?\s*([A-Za-z0-9][A-Za-z0-9\-/_.]*)`)
	serialBareLabelRe = regexp.MustCompile(`(?i)^(?:invoice|bill)\s*(?:no\.?|number|#)\s*[:\-]?\s*$`)

	dateLabelRe   = regexp.MustCompile(`(?i)\bdate\s*[:\-]\s*(\S+(?:\s+\d{1,2},?\s+\d{4})?)`)
	isoDateRe     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	dmyDateRe     = regexp.MustCompile(`\b(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})\b`)
	literalDateRe = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}\b`)

	totalLabelRe = regexp.MustCompile(`(?i)(?:grand\s*total|total\s*amount|amount\s*due|balance\s*due|net\s*payable|total\s*payable|invoice\s*total|total)\s*[:\-]?\s*(?:₹|\$|€|£|rs\.?)?\s*([\d,]+(?:\.\d+)?)`)

	itemHeaderRe  = regexp.MustCompile(`(?i)(description|item|product|particulars)`)
	itemHeader2Re = regexp.MustCompile(`(?i)(qty|quantity)`)
	itemHeader3Re = regexp.MustCompile(`(?i)(price|rate|amount)`)
	boundaryRe    = regexp.MustCompile(`(?i)^\s*(sub\s*total|subtotal|total|grand\s*total|tax|cgst|sgst|igst|terms|notes|thank|amount\s+in\s+words|declaration|bank)`)

	inlineItemRe   = regexp.MustCompile(`(?i)^(.{3,60}?)\s+x\s*(\d+)\s*@\s*(?:₹|\$|€|£|rs\.?)?\s*([\d,]+(?:\.\d+)?)`)
	numberedRowRe  = regexp.MustCompile(`^\s*\d{1,3}[.)]?\s+(.+?)\s+(\d+(?:\.\d+)?)\s+([\d,]+(?:\.\d+)?)\s+([\d,]+(?:\.\d+)?)\s*$`)
	nameQtyPriceRe = regexp.MustCompile(`^(.{3,60}?)\s+(\d+(?:\.\d+)?)\s+([\d,]+\.\d{2})\s+([\d,]+\.\d{2})\s*$`)
	namePriceRe    = regexp.MustCompile(`^(.{3,60}?)\s+(?:₹|\$|€|£)?([\d,]+\.\d{2})\s*$`)
	fieldSplitRe   = regexp.MustCompile(`\t|\s{2,}`)

	nonProductPrefixes = []string{
		"invoice", "date", "gst", "gstin", "total", "subtotal", "sub total",
		"tax", "bill", "phone", "email", "address", "page", "amount",
		"balance", "terms", "thank", "customer", "s.no", "sno", "sr.",
	}
)

// ParseText recovers invoice header fields and line items from decoded
// document text using regex and positional heuristics. Each field is
// recovered independently; whatever is found lands in a fragment with
// at most one invoice. It never fails: empty or hopeless text produces
// an empty fragment.
func ParseText(text string) domain.Fragment {
	var frag domain.Fragment
	lines := splitLines(text)
	if len(lines) == 0 {
		return frag
	}

	customer := findCustomerName(lines)
	phone := findPhone(lines)
	serial := findSerial(lines)
	date := findDate(lines)
	total := findGrandTotal(lines)
	items := findItems(lines)

	if customer == "" && serial == "" && date == "" && total == 0 && len(items) == 0 {
		return frag
	}

	for _, it := range items {
		frag.Products = append(frag.Products, domain.RawProduct{
			Name:      it.ProductName,
			UnitPrice: it.UnitPrice,
			TaxRate:   it.TaxRate,
			Quantity:  it.Qty,
		})
	}
	if customer != "" {
		frag.Customers = append(frag.Customers, domain.RawCustomer{Name: customer, Phone: phone})
	}
	frag.Invoices = append(frag.Invoices, domain.RawInvoice{
		SerialNumber: serial,
		CustomerName: customer,
		Date:         date,
		Items:        items,
		TotalAmount:  total,
	})
	return frag
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// findCustomerName looks for a labeled block ("Bill To:", "Customer:")
// taking the remainder of the label line after the colon, else the
// first of the next few lines that does not itself look like a
// metadata label. A plain inline key-value scan is the fallback.
func findCustomerName(lines []string) string {
	for i, line := range lines {
		m := customerLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if name := cleanName(m[2]); name != "" {
			return name
		}
		for j := i + 1; j <= i+labelScanAhead && j < len(lines); j++ {
			candidate := lines[j]
			if metadataLabelRe.MatchString(candidate) {
				continue
			}
			if name := cleanName(candidate); name != "" {
				return name
			}
		}
	}
	for _, line := range lines {
		if m := inlineKVRe.FindStringSubmatch(line); m != nil {
			if name := cleanName(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

func cleanName(s string) string {
	s = strings.Trim(strings.TrimSpace(s), ",;|-")
	if s == "" || len(s) > 80 {
		return ""
	}
	// a bare number or date is never a name
	if !strings.ContainsFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' }) {
		return ""
	}
	return s
}

// findPhone prefers a labeled number; otherwise it takes the first bare
// digit group that survives separator stripping at 7-15 digits.
func findPhone(lines []string) string {
	for _, line := range lines {
		if m := phoneLabelRe.FindStringSubmatch(line); m != nil {
			if p := normalizePhone(m[1]); p != "" {
				return p
			}
		}
	}
	for _, line := range lines {
		if m := bareDigitsRe.FindStringSubmatch(line); m != nil {
			if p := normalizePhone(m[1]); p != "" {
				return p
			}
		}
	}
	return ""
}

func normalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 7 || len(digits) > 15 {
		return ""
	}
	return digits
}

// findSerial requires the captured value to contain at least one digit;
// when a label line carries no value it looks ahead one line.
func findSerial(lines []string) string {
	for i, line := range lines {
		m := serialLabelRe.FindStringSubmatch(line)
		if m == nil {
			if i+1 < len(lines) && serialBareLabelRe.MatchString(line) {
				if next := strings.Fields(lines[i+1]); len(next) > 0 && containsDigit(next[0]) {
					return next[0]
				}
			}
			continue
		}
		if containsDigit(m[1]) {
			return m[1]
		}
	}
	return ""
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// findDate scans labeled "date:" occurrences first, then the first 20
// lines for a token matching one of three grammars. ISO and
// day-first numeric forms normalize to yyyy-mm-dd; the "Month DD, YYYY"
// literal passes through unchanged.
func findDate(lines []string) string {
	for _, line := range lines {
		if m := dateLabelRe.FindStringSubmatch(line); m != nil {
			if d := parseDateToken(m[1]); d != "" {
				return d
			}
			if d := parseDateToken(line); d != "" {
				return d
			}
		}
	}
	limit := len(lines)
	if limit > headScanLines {
		limit = headScanLines
	}
	for _, line := range lines[:limit] {
		if d := parseDateToken(line); d != "" {
			return d
		}
	}
	return ""
}

func parseDateToken(s string) string {
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if validDate(year, month, day) {
			return m[0]
		}
	}
	if m := dmyDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if validDate(year, month, day) {
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		}
	}
	if m := literalDateRe.FindString(s); m != "" {
		return m
	}
	return ""
}

func validDate(year, month, day int) bool {
	return year >= 1900 && year <= 2100 && month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// findGrandTotal scans only the last 40 lines; totals live near the
// document end, and matching earlier would pick up line amounts.
func findGrandTotal(lines []string) float64 {
	start := len(lines) - tailScanLines
	if start < 0 {
		start = 0
	}
	for i := len(lines) - 1; i >= start; i-- {
		if m := totalLabelRe.FindStringSubmatch(lines[i]); m != nil {
			if v := parseNumber(m[1]); v > 0 {
				return v
			}
		}
	}
	return 0
}

// itemStrategies are tried in order until one yields at least one item.
var itemStrategies = []func(lines []string) []domain.RawInvoiceItem{
	itemsFromHeaderTable,
	itemsFromNumberedRows,
	itemsFromLooseLines,
}

func findItems(lines []string) []domain.RawInvoiceItem {
	for _, strategy := range itemStrategies {
		if items := strategy(lines); len(items) > 0 {
			return items
		}
	}
	return nil
}

// itemsFromHeaderTable locates a header row naming description,
// quantity, and price together, then parses the lines below it as
// delimited fields or as inline "Name x2 @ 100" rows, stopping at the
// first totals/terms boundary.
func itemsFromHeaderTable(lines []string) []domain.RawInvoiceItem {
	headerIdx := -1
	for i, line := range lines {
		if itemHeaderRe.MatchString(line) && itemHeader2Re.MatchString(line) && itemHeader3Re.MatchString(line) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	var items []domain.RawInvoiceItem
	for _, line := range lines[headerIdx+1:] {
		if boundaryRe.MatchString(line) {
			break
		}
		if m := inlineItemRe.FindStringSubmatch(line); m != nil {
			qty, _ := strconv.ParseFloat(m[2], 64)
			items = append(items, domain.RawInvoiceItem{
				ProductName: strings.TrimSpace(m[1]),
				Qty:         qty,
				UnitPrice:   parseNumber(m[3]),
			})
			continue
		}
		if it, ok := parseDelimitedItem(line); ok {
			items = append(items, it)
		}
	}
	return items
}

// parseDelimitedItem handles rows of three or more whitespace- or
// tab-delimited fields: the first small positive number is the
// quantity and the largest of the trailing numbers is the price.
func parseDelimitedItem(line string) (domain.RawInvoiceItem, bool) {
	fields := fieldSplitRe.Split(line, -1)
	if len(fields) < 3 {
		return domain.RawInvoiceItem{}, false
	}

	var nameParts []string
	qty := 0.0
	price := 0.0
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v := parseNumber(f)
		switch {
		case v == 0:
			nameParts = append(nameParts, f)
		case qty == 0 && v > 0 && v == float64(int(v)) && v < 10000:
			qty = v
		case v > price:
			price = v
		}
	}

	name := strings.Join(nameParts, " ")
	if name == "" || (qty == 0 && price == 0) {
		return domain.RawInvoiceItem{}, false
	}
	if qty == 0 {
		qty = 1
	}
	return domain.RawInvoiceItem{ProductName: name, Qty: qty, UnitPrice: price}, true
}

// itemsFromNumberedRows matches "N  <name>  <qty>  <price>  <amount>"
// rows, accepting a row only when qty*price is within 30% of the
// stated amount.
func itemsFromNumberedRows(lines []string) []domain.RawInvoiceItem {
	var items []domain.RawInvoiceItem
	for _, line := range lines {
		m := numberedRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty, _ := strconv.ParseFloat(m[2], 64)
		price := parseNumber(m[3])
		amount := parseNumber(m[4])
		if qty <= 0 || price <= 0 || amount <= 0 {
			continue
		}
		if !within(qty*price, amount, 0.30) {
			continue
		}
		items = append(items, domain.RawInvoiceItem{
			ProductName: strings.TrimSpace(m[1]),
			Qty:         qty,
			UnitPrice:   price,
		})
	}
	return items
}

// itemsFromLooseLines is the last resort: "<name> <qty> <price>
// <amount>" or "<name> <price>" with known non-product prefixes
// rejected.
func itemsFromLooseLines(lines []string) []domain.RawInvoiceItem {
	var items []domain.RawInvoiceItem
	for _, line := range lines {
		lower := strings.ToLower(line)
		if startsWithAny(lower, nonProductPrefixes) {
			continue
		}
		if m := nameQtyPriceRe.FindStringSubmatch(line); m != nil {
			qty, _ := strconv.ParseFloat(m[2], 64)
			items = append(items, domain.RawInvoiceItem{
				ProductName: strings.TrimSpace(m[1]),
				Qty:         qty,
				UnitPrice:   parseNumber(m[3]),
			})
			continue
		}
		if m := namePriceRe.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			if name == "" || !strings.ContainsFunc(name, func(r rune) bool {
				return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'
			}) {
				continue
			}
			items = append(items, domain.RawInvoiceItem{
				ProductName: name,
				Qty:         1,
				UnitPrice:   parseNumber(m[2]),
			})
		}
	}
	return items
}

func startsWithAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func within(got, want, tolerance float64) bool {
	if want == 0 {
		return false
	}
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff/want <= tolerance
}
