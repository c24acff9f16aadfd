package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// decodeTransactions parses the raw model response into transactions.
// The response is expected to be a STRICT JSON array of objects; each
// object is validated field by field so that a schema violation by the
// model is caught here rather than surfacing downstream.
func decodeTransactions(raw string) ([]Transaction, error) {
	clean := cleanResponseJSON(raw)

	var parsed []interface{}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("decodeTransactions: unmarshal JSON: %w: %w", ErrMalformedResponse, err)
	}

	result := make([]Transaction, 0, len(parsed))

	for i, item := range parsed {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("decodeTransactions: element %d is %T, want object: %w", i, item, ErrMalformedResponse)
		}

		date, err := getStringField(obj, "date", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w: %w", i, err, ErrMalformedResponse)
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("transaction %d: invalid date %q: %w", i, date, ErrMalformedResponse)
		}

		desc, err := getStringField(obj, "description", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w: %w", i, err, ErrMalformedResponse)
		}

		amount, err := getFloat64Field(obj, "amount", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w: %w", i, err, ErrMalformedResponse)
		}

		category, err := getStringField(obj, "category", true)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w: %w", i, err, ErrMalformedResponse)
		}

		// notes is optional; absent and empty are equivalent.
		notes, err := getStringField(obj, "notes", false)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w: %w", i, err, ErrMalformedResponse)
		}

		result = append(result, Transaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			Category:    category,
			Notes:       notes,
		})
	}

	return result, nil
}

// cleanResponseJSON strips Markdown fences and surrounding junk if the
// model ignored the strict-JSON instruction.
func cleanResponseJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)

		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Keep only from the first '[' to the last ']' if junk remains.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getFloat64Field(m map[string]interface{}, key string, required bool) (float64, error) {
	v, ok := m[key]
	if !ok {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	// json.Unmarshal into interface{} yields float64 for every JSON
	// number, so no other numeric representation can appear here.
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
	return f, nil
}
