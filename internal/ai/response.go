// response.go - Shared parsing of model JSON replies
//
// Gemini wraps its JSON in code fences, surrounds it with prose, and
// returns amounts as strings with separators often enough that every
// variant funnels its raw reply through the tolerant parsing here.

package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/quoc48/receipt-parser/internal/category"
	"github.com/quoc48/receipt-parser/internal/parser"
)

var (
	codeFencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```\\s*$")
	nonDigitsPattern = regexp.MustCompile(`[^\d]`)
)

// stripCodeFence removes one leading/trailing markdown fence if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// extractJSONObject returns the first balanced {...} span, tolerating
// prose before and after the object. Braces inside JSON strings are
// skipped. Returns "" when no balanced object exists.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// flexAmount unmarshals from a JSON number or a string carrying thousands
// separators and currency symbols ("35.000đ" → 35000).
type flexAmount float64

func (f *flexAmount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexAmount(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("cannot unmarshal %s as amount", string(data))
	}

	digits := nonDigitsPattern.ReplaceAllString(str, "")
	if digits == "" {
		*f = 0
		return nil
	}

	num, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return fmt.Errorf("cannot parse %q as amount: %w", str, err)
	}
	*f = flexAmount(num)
	return nil
}

// itemEnvelope holds the items array with each element kept raw so one
// malformed item is skipped without aborting the rest.
type itemEnvelope struct {
	Items []json.RawMessage `json:"items"`
}

// freeformItem is the reply shape of the freeform policy: the model
// returns the final amount already net of any discount and is trusted.
type freeformItem struct {
	Description string     `json:"description"`
	Amount      flexAmount `json:"amount"`
	IsTax       bool       `json:"is_tax"`
	Confidence  *float64   `json:"confidence"`
}

// strictItem is the reply shape of the strict state-machine policy: the
// model reports base price and discount separately and never subtracts.
type strictItem struct {
	Description string     `json:"description"`
	BasePrice   flexAmount `json:"base_price"`
	Discount    flexAmount `json:"discount"`
	IsTax       bool       `json:"is_tax"`
	Confidence  *float64   `json:"confidence"`
}

// decodeEnvelope cleans a raw model reply and decodes the items array.
func decodeEnvelope(raw string) (*itemEnvelope, error) {
	cleaned := extractJSONObject(stripCodeFence(raw))
	if cleaned == "" {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var env itemEnvelope
	if err := json.Unmarshal([]byte(cleaned), &env); err != nil {
		return nil, fmt.Errorf("malformed model response: %w", err)
	}
	return &env, nil
}

// parseFreeformItems converts a freeform-policy reply into line items.
// Items with empty descriptions or non-positive amounts are discarded.
func parseFreeformItems(raw, policyTag string, defaultConfidence float64, table *category.Table) ([]parser.LineItem, error) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	items := make([]parser.LineItem, 0, len(env.Items))
	for _, rawItem := range env.Items {
		var it freeformItem
		if err := json.Unmarshal(rawItem, &it); err != nil {
			continue // skip the one malformed item, keep the rest
		}

		li, ok := buildLineItem(it.Description, float64(it.Amount), it.IsTax, it.Confidence, defaultConfidence, policyTag, now, len(items), table)
		if ok {
			items = append(items, li)
		}
	}
	return items, nil
}

// parseStrictItems converts a strict-policy reply into line items. The
// subtraction is done here, never by the model, and items whose final
// amount is not strictly positive are dropped.
func parseStrictItems(raw, policyTag string, defaultConfidence float64, table *category.Table) ([]parser.LineItem, error) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	items := make([]parser.LineItem, 0, len(env.Items))
	for _, rawItem := range env.Items {
		var it strictItem
		if err := json.Unmarshal(rawItem, &it); err != nil {
			continue
		}

		final := float64(it.BasePrice) - float64(it.Discount)
		li, ok := buildLineItem(it.Description, final, it.IsTax, it.Confidence, defaultConfidence, policyTag, now, len(items), table)
		if ok {
			items = append(items, li)
		}
	}
	return items, nil
}

// buildLineItem applies the shared keep/discard rules and assembles one
// item. IDs are unique within a single call by construction.
func buildLineItem(desc string, amount float64, isTax bool, confidence *float64, defaultConfidence float64, policyTag string, millis int64, index int, table *category.Table) (parser.LineItem, bool) {
	desc = strings.TrimSpace(desc)
	if desc == "" || amount <= 0 {
		return parser.LineItem{}, false
	}

	conf := defaultConfidence
	if confidence != nil {
		conf = clampConfidence(*confidence)
	}

	itemType := parser.TypeMustPay
	if isTax {
		itemType = parser.TypeFeeTax
	}

	return parser.LineItem{
		ID:          fmt.Sprintf("%s_%d_%d", policyTag, millis, index),
		Description: desc,
		Amount:      amount,
		Category:    table.Classify(desc, isTax),
		Type:        itemType,
		Confidence:  conf,
	}, true
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
