// rule.go - Rule-based (offline) receipt parser

package parser

import (
	"fmt"
	"time"

	"github.com/quoc48/receipt-parser/internal/category"
)

// ruleConfidence is the fixed confidence the rule-based parser assigns.
// Heuristic extraction carries no per-item signal, so it never varies.
const ruleConfidence = 0.7

// RuleParser extracts line items from raw OCR text using regex heuristics
// only. It has no network dependency and never fails: when no line yields
// an item it returns an empty list.
type RuleParser struct {
	scanner *lineScanner
	table   *category.Table
}

// NewRuleParser creates a rule-based parser with the given keyword table.
func NewRuleParser(table *category.Table) *RuleParser {
	return &RuleParser{
		scanner: newLineScanner(),
		table:   table,
	}
}

// Parse turns ordered OCR lines into line items.
func (p *RuleParser) Parse(lines []string) []LineItem {
	tuples := p.scanner.scan(lines)
	if len(tuples) == 0 {
		return []LineItem{}
	}

	now := time.Now().UnixMilli()
	items := make([]LineItem, 0, len(tuples))
	for i, t := range tuples {
		itemType := TypeMustPay
		if t.isFee {
			itemType = TypeFeeTax
		}

		items = append(items, LineItem{
			ID:          fmt.Sprintf("rule_%d_%d", now, i),
			Description: t.desc,
			Amount:      t.amount,
			Category:    p.table.Classify(t.desc, t.isFee),
			Type:        itemType,
			Confidence:  ruleConfidence,
		})
	}

	return items
}
