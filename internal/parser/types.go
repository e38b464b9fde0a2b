// types.go - Core data model shared by every parser strategy

package parser

import (
	"time"

	"github.com/quoc48/receipt-parser/internal/category"
)

// ItemType distinguishes ordinary purchased items from tax/fee lines
// extracted from the same receipt.
type ItemType string

const (
	TypeMustPay ItemType = "must-pay"
	TypeFeeTax  ItemType = "fee/tax"
)

// LineItem is one extracted receipt entry. Amounts are whole VND (the
// currency has no fractional sub-units) and are always the final price
// after any discount has been folded in by the producing parser.
// Negative adjustment lines are never emitted as standalone items.
type LineItem struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Amount      float64        `json:"amount"`
	Category    category.Label `json:"category"`
	Type        ItemType       `json:"type"`
	Confidence  float64        `json:"confidence"`
}

// Method identifies which strategy produced the selected result set.
type Method string

const (
	MethodRuleBased  Method = "rule-based"
	MethodModelBased Method = "model-based"
)

// ReceiptType is a coarse layout classification derived from the raw text.
// It only biases arbitration; it is not persisted.
type ReceiptType string

const (
	ReceiptGeneric        ReceiptType = "generic"
	ReceiptSupermarket    ReceiptType = "supermarket"
	ReceiptRestaurant     ReceiptType = "restaurant"
	ReceiptBrandedChain   ReceiptType = "branded-chain"
	ReceiptOnlineDelivery ReceiptType = "online-delivery"
)

// ModelOutcome records why the model-based path produced the items it did,
// so callers and tests can distinguish "no items because the service was
// down" from "no items on the receipt" without scraping logs.
type ModelOutcome string

const (
	ModelOK           ModelOutcome = "ok"
	ModelEmpty        ModelOutcome = "empty"
	ModelFailed       ModelOutcome = "failed"
	ModelUnconfigured ModelOutcome = "unconfigured"
	ModelSkipped      ModelOutcome = "skipped"
)

// Warning is a non-fatal validation finding. Warnings never remove or
// alter items.
type Warning struct {
	Code    string `json:"code"`
	ItemID  string `json:"item_id,omitempty"`
	Message string `json:"message"`
}

// ParseResult is the arbitration engine's output: the selected item list
// plus metadata about how the selection was made.
type ParseResult struct {
	Items        []LineItem    `json:"items"`
	Method       Method        `json:"method"`
	Confidence   float64       `json:"confidence"`
	Duration     time.Duration `json:"-"`
	ReceiptType  ReceiptType   `json:"receipt_type"`
	ModelOutcome ModelOutcome  `json:"model_outcome"`
	Warnings     []Warning     `json:"warnings,omitempty"`
}

// Total sums the amounts of a result list.
func Total(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Amount
	}
	return sum
}
