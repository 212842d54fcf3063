package gemini

// BuildExtractionPrompt returns the fixed instructional contract for
// invoice extraction. The schema here must stay in sync with the
// fragment schema in respparse.go.
func BuildExtractionPrompt() string {
	return `You are an invoice data extraction assistant. Analyze the provided document and extract its data into the following JSON structure.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation. Respond with the raw JSON object with exactly these three top-level keys:

{
  "products": [
    {
      "name": "",
      "unitPrice": 0,
      "taxRate": 0,
      "priceWithTax": 0,
      "quantity": 0,
      "discount": 0
    }
  ],
  "customers": [
    {
      "name": "",
      "phone": "",
      "totalPurchase": 0
    }
  ],
  "invoices": [
    {
      "serialNumber": "",
      "customerName": "",
      "date": "",
      "items": [
        { "productName": "", "qty": 0, "unitPrice": 0, "taxRate": 0 }
      ],
      "tax": 0,
      "totalAmount": 0
    }
  ]
}

RULES:
- Extract EVERY line item; do not skip, summarize, or omit any.
- "taxRate" is a fraction: 18% tax is 0.18, not 18.
- Dates use yyyy-mm-dd where the document allows it.
- If a field is not present in the document, use an empty string for
  text and 0 for numbers. NEVER invent a value.`
}
