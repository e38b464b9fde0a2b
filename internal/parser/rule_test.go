package parser

import (
	"strings"
	"testing"

	"github.com/quoc48/receipt-parser/internal/category"
)

func TestRuleParserFullReceipt(t *testing.T) {
	p := NewRuleParser(category.Canonical())

	lines := []string{
		"WINMART THAO DIEN",
		"Cà phê sữa G7 35.000",
		"2 x 17.500",
		"Bánh mì 20,000đ",
		"Giảm giá -5.000",
		"Thuế VAT 5.000",
		"Tổng cộng 55.000",
		"Tiền khách đưa 100.000",
		"--------",
		"15/08/2026 10:30",
	}

	items := p.Parse(lines)
	if len(items) != 3 {
		t.Fatalf("Parse returned %d items, want 3: %+v", len(items), items)
	}

	first := items[0]
	if first.Description != "Cà phê sữa G7" || first.Amount != 35000 {
		t.Errorf("item 0 = %q/%.0f, want Cà phê sữa G7/35000", first.Description, first.Amount)
	}
	if first.Category != category.Coffee {
		t.Errorf("item 0 category = %q, want %q", first.Category, category.Coffee)
	}

	// The discount line folds into the bánh mì amount.
	second := items[1]
	if second.Description != "Bánh mì" || second.Amount != 15000 {
		t.Errorf("item 1 = %q/%.0f, want Bánh mì/15000", second.Description, second.Amount)
	}

	tax := items[2]
	if tax.Type != TypeFeeTax {
		t.Errorf("item 2 type = %q, want %q", tax.Type, TypeFeeTax)
	}
	if tax.Category != category.Bills {
		t.Errorf("item 2 category = %q, want %q", tax.Category, category.Bills)
	}
	if tax.Amount != 5000 {
		t.Errorf("item 2 amount = %.0f, want 5000", tax.Amount)
	}

	for i, it := range items {
		if it.Confidence != 0.7 {
			t.Errorf("item %d confidence = %.2f, want 0.70", i, it.Confidence)
		}
		if !strings.HasPrefix(it.ID, "rule_") {
			t.Errorf("item %d id = %q, want rule_ prefix", i, it.ID)
		}
		if it.Type == TypeMustPay && it.Category == category.Bills {
			t.Errorf("item %d: must-pay item classified as bills", i)
		}
	}
}

func TestRuleParserAmountNormalization(t *testing.T) {
	p := NewRuleParser(category.Canonical())

	tests := []struct {
		line string
		want float64
	}{
		{"Bánh mì 20.000", 20000},
		{"Bánh mì 20,000", 20000},
		{"Bánh mì 20000đ", 20000},
		{"Bánh mì 20.000 VND", 20000},
		{"Bánh mì 1.250.000", 1250000},
	}

	for _, tt := range tests {
		items := p.Parse([]string{tt.line})
		if len(items) != 1 {
			t.Errorf("Parse(%q) returned %d items, want 1", tt.line, len(items))
			continue
		}
		if items[0].Amount != tt.want {
			t.Errorf("Parse(%q) amount = %.0f, want %.0f", tt.line, items[0].Amount, tt.want)
		}
	}
}

func TestRuleParserNoiseFloor(t *testing.T) {
	p := NewRuleParser(category.Canonical())

	items := p.Parse([]string{"Kẹo 500"})
	if len(items) != 0 {
		t.Errorf("sub-threshold line produced %d items, want 0", len(items))
	}
}

func TestRuleParserDiscountConsumesItem(t *testing.T) {
	p := NewRuleParser(category.Canonical())

	// Discount larger than the item it applies to removes the item.
	items := p.Parse([]string{"Bánh mì 10.000", "Giảm giá 15.000"})
	if len(items) != 0 {
		t.Errorf("fully discounted item survived: %+v", items)
	}
}

func TestRuleParserStandaloneDiscountDropped(t *testing.T) {
	p := NewRuleParser(category.Canonical())

	items := p.Parse([]string{"Giảm giá 5.000"})
	if len(items) != 0 {
		t.Errorf("standalone discount produced %d items, want 0", len(items))
	}
}

func TestRuleParserExcludedLines(t *testing.T) {
	p := NewRuleParser(category.Canonical())

	excluded := []string{
		"Tổng cộng 155.000",
		"Thành tiền 99.000",
		"Tạm tính 50.000",
		"Tiền mặt 200.000",
		"Tiền thừa 45.000",
		"MOMO 155.000",
		"Thu ngân 01 123",
		"Số HD 00123",
		"15/08/2026",
		"10:35:22",
		"==========",
	}

	for _, line := range excluded {
		if items := p.Parse([]string{line}); len(items) != 0 {
			t.Errorf("Parse(%q) = %+v, want no items", line, items)
		}
	}
}

func TestRuleParserEmptyInput(t *testing.T) {
	p := NewRuleParser(category.Canonical())

	for _, lines := range [][]string{nil, {}, {"", "   "}, {"không có giá nào ở đây"}} {
		items := p.Parse(lines)
		if items == nil {
			t.Fatal("Parse returned nil, want empty slice")
		}
		if len(items) != 0 {
			t.Errorf("Parse(%v) = %+v, want no items", lines, items)
		}
	}
}

func TestNormalizeAmountEdgeCases(t *testing.T) {
	s := newLineScanner()

	tests := []struct {
		raw  string
		want float64
	}{
		{"35.000", 35000},
		{"35,000", 35000},
		{"-5.000", 5000},
		{"", 0},
		{"đ", 0},
	}

	for _, tt := range tests {
		if got := s.normalizeAmount(tt.raw); got != tt.want {
			t.Errorf("normalizeAmount(%q) = %.0f, want %.0f", tt.raw, got, tt.want)
		}
	}
}
