package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strings"
)

// The model is asked for bare JSON but routinely wraps it in prose and/or
// fenced code blocks. We take the first '{' through the last '}', spanning
// newlines.
var reJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSONObject locates the JSON object embedded in a raw completion.
// Fence markers are stripped first so a fence inside the object body cannot
// truncate the span. Returns an error when no object-shaped span exists.
func ExtractJSONObject(raw string) ([]byte, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	span := reJSONObject.FindString(cleaned)
	if span == "" {
		return nil, fmt.Errorf("no JSON object in completion (%d bytes)", len(raw))
	}
	return []byte(span), nil
}

// moneyKeys are coerced to strings when the model emits bare numbers.
var moneyKeys = []string{"Taxable_Value", "CGST", "SGST", "IGST", "Total_Value"}

// NormalizeAndSanitizeJSON
// - Coerces numeric values to strings for money fields
// - Trims string values; empty strings on non-tax fields are dropped
// - Removes unknown keys (additionalProperties = false friendliness)
// Nulls are kept: they are meaningful on tax fields.
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 4)

	for _, k := range moneyKeys {
		if v, ok := m[k]; ok {
			switch t := v.(type) {
			case float64:
				m[k] = fmt.Sprintf("%.2f", t)
			case string:
				m[k] = strings.TrimSpace(t)
			case nil:
				// keep: null marks an inapplicable tax scheme
			default:
				delete(m, k)
				dropped = append(dropped, k+"(type)")
			}
		}
	}

	allowed := make(map[string]struct{}, len(FieldKeys))
	for _, k := range FieldKeys {
		allowed[k] = struct{}{}
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	textKeys := []string{"Invoice_no", "Date", "Buyer_Name", "Buyer_GSTIN", "Buyer_State"}
	for _, k := range textKeys {
		switch t := m[k].(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		case float64:
			m[k] = fmt.Sprintf("%v", t)
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}
