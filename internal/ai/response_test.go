package ai

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/quoc48/receipt-parser/internal/category"
	"github.com/quoc48/receipt-parser/internal/parser"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"items\":[]}\n```", `{"items":[]}`},
		{"bare fence", "```\n{\"items\":[]}\n```", `{"items":[]}`},
		{"no fence", `{"items":[]}`, `{"items":[]}`},
		{"surrounding whitespace", "  ```json\n{}\n```  ", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose around", `Đây là kết quả: {"a":1} hy vọng hữu ích!`, `{"a":1}`},
		{"nested objects", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"brace inside string", `{"a":"x}y"}`, `{"a":"x}y"}`},
		{"escaped quote inside string", `{"a":"x\"}"}`, `{"a":"x\"}"}`},
		{"no object", "chỉ có chữ thôi", ""},
		{"unbalanced", `{"a":1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONObject(tt.in); got != tt.want {
				t.Errorf("extractJSONObject = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlexAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{`35000`, 35000, false},
		{`35000.0`, 35000, false},
		{`"35.000"`, 35000, false},
		{`"35.000đ"`, 35000, false},
		{`"35,000 VND"`, 35000, false},
		{`"1.250.000₫"`, 1250000, false},
		{`null`, 0, false},
		{`"miễn phí"`, 0, false},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		var f flexAmount
		err := json.Unmarshal([]byte(tt.in), &f)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Unmarshal(%s): expected error, got %v", tt.in, float64(f))
			}
			continue
		}
		if err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.in, err)
			continue
		}
		if float64(f) != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, float64(f), tt.want)
		}
	}
}

func TestParseFreeformItems(t *testing.T) {
	raw := "Kết quả phân tích:\n```json\n" + `{
		"items": [
			{"description": "Cà phê đen", "amount": "35.000đ", "is_tax": false},
			{"description": "Bánh mì", "amount": 20000, "is_tax": false, "confidence": 0.6},
			{"description": "Thuế VAT", "amount": 5000, "is_tax": true},
			{"description": "", "amount": 10000},
			{"description": "Số âm", "amount": -500},
			{"description": "Hỏng", "amount": [1, 2]}
		]
	}` + "\n```\nHết."

	items, err := parseFreeformItems(raw, "text", 0.8, category.Canonical())
	if err != nil {
		t.Fatalf("parseFreeformItems: %v", err)
	}

	// Empty description, non-positive amount and the malformed entry are
	// all dropped; the rest survive.
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3: %+v", len(items), items)
	}

	coffee := items[0]
	if coffee.Amount != 35000 {
		t.Errorf("coffee amount = %.0f, want 35000", coffee.Amount)
	}
	if coffee.Category != category.Coffee {
		t.Errorf("coffee category = %q, want %q", coffee.Category, category.Coffee)
	}
	if coffee.Confidence != 0.8 {
		t.Errorf("coffee confidence = %.2f, want default 0.80", coffee.Confidence)
	}
	if !strings.HasPrefix(coffee.ID, "text_") {
		t.Errorf("coffee id = %q, want text_ prefix", coffee.ID)
	}

	if items[1].Confidence != 0.6 {
		t.Errorf("explicit confidence = %.2f, want 0.60", items[1].Confidence)
	}

	tax := items[2]
	if tax.Type != parser.TypeFeeTax {
		t.Errorf("tax type = %q, want %q", tax.Type, parser.TypeFeeTax)
	}
	if tax.Category != category.Bills {
		t.Errorf("tax category = %q, want %q", tax.Category, category.Bills)
	}

	// IDs embed the emitted index, so survivors stay unique after skips.
	seen := make(map[string]bool)
	for _, it := range items {
		if seen[it.ID] {
			t.Errorf("duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestParseStrictItems(t *testing.T) {
	raw := `{
		"items": [
			{"description": "Sữa tươi", "base_price": 50000, "discount": 10000, "is_tax": false},
			{"description": "Bánh quy", "base_price": "30.000", "discount": 0},
			{"description": "Hàng tặng", "base_price": 10000, "discount": 10000},
			{"description": "Giảm quá tay", "base_price": 5000, "discount": 8000}
		]
	}`

	items, err := parseStrictItems(raw, "strict", 0.95, category.Canonical())
	if err != nil {
		t.Fatalf("parseStrictItems: %v", err)
	}

	// Items fully consumed by their discount are dropped.
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}

	if items[0].Amount != 40000 {
		t.Errorf("discounted amount = %.0f, want 40000", items[0].Amount)
	}
	if items[1].Amount != 30000 {
		t.Errorf("undiscounted amount = %.0f, want 30000", items[1].Amount)
	}
	for i, it := range items {
		if it.Confidence != 0.95 {
			t.Errorf("item %d confidence = %.2f, want 0.95", i, it.Confidence)
		}
		if !strings.HasPrefix(it.ID, "strict_") {
			t.Errorf("item %d id = %q, want strict_ prefix", i, it.ID)
		}
	}
}

func TestParseItemsConfidenceClamped(t *testing.T) {
	raw := `{"items": [
		{"description": "Quá tự tin", "amount": 10000, "confidence": 1.5},
		{"description": "Quá khiêm tốn", "amount": 10000, "confidence": -0.3}
	]}`

	items, err := parseFreeformItems(raw, "text", 0.8, category.Canonical())
	if err != nil {
		t.Fatalf("parseFreeformItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Confidence != 1 {
		t.Errorf("over-confidence = %.2f, want clamp to 1.00", items[0].Confidence)
	}
	if items[1].Confidence != 0 {
		t.Errorf("under-confidence = %.2f, want clamp to 0.00", items[1].Confidence)
	}
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	for _, raw := range []string{"", "chỉ có chữ", "```json\nhỏng\n```", `{"items": [}`} {
		if _, err := decodeEnvelope(raw); err == nil {
			t.Errorf("decodeEnvelope(%q): expected error", raw)
		}
	}
}

func TestParseItemsEmptyList(t *testing.T) {
	items, err := parseFreeformItems(`{"items": []}`, "text", 0.8, category.Canonical())
	if err != nil {
		t.Fatalf("parseFreeformItems: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("got %v, want empty non-nil slice", items)
	}
}
