package gemini

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"swipe/internal/domain"
)

// fragmentSchema validates the shape of model output before it is
// accepted as a fragment. The model is asked for this exact key set;
// anything else is treated as a failed call, not patched up.
const fragmentSchema = `{
  "type": "object",
  "required": ["products", "customers", "invoices"],
  "properties": {
    "products": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name":         {"type": "string"},
          "unitPrice":    {"type": "number"},
          "taxRate":      {"type": "number"},
          "priceWithTax": {"type": "number"},
          "quantity":     {"type": "number"},
          "discount":     {"type": "number"}
        }
      }
    },
    "customers": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name":          {"type": "string"},
          "phone":         {"type": "string"},
          "totalPurchase": {"type": "number"}
        }
      }
    },
    "invoices": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "serialNumber": {"type": "string"},
          "customerName": {"type": "string"},
          "date":         {"type": "string"},
          "tax":          {"type": "number"},
          "totalAmount":  {"type": "number"},
          "items": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "productName": {"type": "string"},
                "qty":         {"type": "number"},
                "unitPrice":   {"type": "number"},
                "taxRate":     {"type": "number"}
              }
            }
          }
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("fragment.json", strings.NewReader(fragmentSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("fragment.json")
}

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// jsonStrategies extract a candidate JSON document from model output.
// They are tried in fixed preference order: direct JSON, JSON fenced
// in a markdown code block, then a brace scan over raw text.
var jsonStrategies = []struct {
	name string
	fn   func(text string) (string, bool)
}{
	{"direct", directJSON},
	{"fenced", fencedJSON},
	{"brace-scan", braceScanJSON},
}

func directJSON(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed, true
	}
	return "", false
}

func fencedJSON(text string) (string, bool) {
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

func braceScanJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseFragment parses best-effort model output into a fragment. Each
// extraction strategy that yields candidate JSON is unmarshaled and
// validated against the fragment schema; the first candidate that
// passes wins. All failures are reported as an error, never a panic.
func ParseFragment(text string) (domain.Fragment, error) {
	var lastErr error
	for _, strategy := range jsonStrategies {
		candidate, ok := strategy.fn(text)
		if !ok {
			continue
		}

		var v any
		if err := json.Unmarshal([]byte(candidate), &v); err != nil {
			lastErr = fmt.Errorf("%s: invalid json: %w", strategy.name, err)
			continue
		}
		if err := compiledSchema.Validate(v); err != nil {
			lastErr = fmt.Errorf("%s: schema mismatch: %w", strategy.name, err)
			continue
		}

		var frag domain.Fragment
		if err := json.Unmarshal([]byte(candidate), &frag); err != nil {
			lastErr = fmt.Errorf("%s: decoding fragment: %w", strategy.name, err)
			continue
		}
		return frag, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no json object found in model output")
	}
	return domain.Fragment{}, lastErr
}
