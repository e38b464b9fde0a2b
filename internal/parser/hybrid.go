// hybrid.go - Arbitration engine reconciling rule-based and model-based results

package parser

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/quoc48/receipt-parser/internal/common"
)

// Amounts above this are flagged as outliers during validation (whole VND).
const outlierThreshold = 10_000_000

// Totals further apart than this percentage are treated as a disagreement
// between the two strategies.
const disagreementPercent = 20.0

// ModelInput is what a model-based parser variant consumes: raw OCR text
// for the text variant, image bytes for the vision variants.
type ModelInput struct {
	Text     string
	Image    []byte
	MIMEType string
}

// ModelResult is a model parser's reply. Items is never nil; Outcome says
// why it holds what it holds. Err is diagnostic only and is never
// propagated past the engine.
type ModelResult struct {
	Items   []LineItem
	Outcome ModelOutcome
	Err     error
}

// ModelParser is the contract every model-based variant implements.
// ParseReceipt must not return an error to its caller: all failures
// degrade to an empty item list with a failure outcome.
type ModelParser interface {
	ParseReceipt(ctx context.Context, in ModelInput, reqCtx *common.RequestContext) ModelResult
	PolicyTag() string
	IsConfigured() bool
}

// Options are the caller-facing parse flags.
type Options struct {
	PreferModel bool
	Validate    bool
}

// Input carries one receipt through a parse invocation. RawText is always
// required; Lines defaults to splitting RawText; Image is only set when
// the caller uploaded an image and a vision variant is active.
type Input struct {
	RawText  string
	Lines    []string
	Image    []byte
	MIMEType string
}

// HybridParser runs the rule-based parser and (optionally) a model-based
// parser over the same receipt and selects a single authoritative result.
// It never returns an error: an empty item list means both strategies
// independently came up empty.
type HybridParser struct {
	rule  *RuleParser
	model ModelParser // nil when no model variant is wired
}

// NewHybridParser creates the arbitration engine. model may be nil.
func NewHybridParser(rule *RuleParser, model ModelParser) *HybridParser {
	return &HybridParser{rule: rule, model: model}
}

// Parse executes the full arbitration pipeline: classify the receipt
// layout, run both strategies, select a winner, validate, and score
// cross-method agreement.
func (h *HybridParser) Parse(ctx context.Context, in Input, opts Options, reqCtx *common.RequestContext) *ParseResult {
	start := time.Now()

	receiptType := ClassifyReceiptType(in.RawText)
	reqCtx.LogInfo("Loại hóa đơn: %s", receiptType)

	// Model path first; its absence or failure must never sink the parse.
	modelItems := []LineItem{}
	outcome := ModelSkipped
	if opts.PreferModel {
		if h.model == nil || !h.model.IsConfigured() {
			outcome = ModelUnconfigured
			reqCtx.LogInfo("Model parser chưa được cấu hình, chỉ dùng luật")
		} else {
			res := h.model.ParseReceipt(ctx, ModelInput{
				Text:     in.RawText,
				Image:    in.Image,
				MIMEType: in.MIMEType,
			}, reqCtx)
			modelItems = res.Items
			outcome = res.Outcome
			if res.Err != nil {
				reqCtx.LogWarning("Model parser thất bại (bỏ qua): %v", res.Err)
			}
		}
	}

	// The rule-based parser always runs: it is the fallback baseline and
	// the comparison anchor for confidence scoring.
	lines := in.Lines
	if len(lines) == 0 {
		lines = strings.Split(in.RawText, "\n")
	}
	ruleItems := h.rule.Parse(lines)

	selected, method := selectResults(modelItems, ruleItems, receiptType)
	reqCtx.LogInfo("Chọn kết quả: %s (%d mục, model: %d / luật: %d)",
		method, len(selected), len(modelItems), len(ruleItems))

	var warnings []Warning
	if opts.Validate {
		warnings = validateItems(selected, reqCtx)
	}

	modelAttempted := outcome != ModelSkipped && outcome != ModelUnconfigured
	confidence := computeConfidence(modelAttempted, Total(modelItems), Total(ruleItems), len(ruleItems) == 0)

	return &ParseResult{
		Items:        selected,
		Method:       method,
		Confidence:   confidence,
		Duration:     time.Since(start),
		ReceiptType:  receiptType,
		ModelOutcome: outcome,
		Warnings:     warnings,
	}
}

// selectResults applies the ordered decision rule. The order of checks is
// load-bearing: the supermarket/branded-chain bias fires before the
// percent-difference tie-break. On an exact item-count tie the model
// result wins.
func selectResults(modelItems, ruleItems []LineItem, receiptType ReceiptType) ([]LineItem, Method) {
	if len(modelItems) == 0 {
		return ruleItems, MethodRuleBased
	}
	if len(ruleItems) == 0 {
		return modelItems, MethodModelBased
	}

	// Complex multi-item layouts defeat the line heuristics often enough
	// that the model result is always preferred for them.
	if receiptType == ReceiptSupermarket || receiptType == ReceiptBrandedChain {
		return modelItems, MethodModelBased
	}

	diff := percentDiff(Total(modelItems), Total(ruleItems))
	if diff > disagreementPercent {
		if len(ruleItems) > len(modelItems) {
			return ruleItems, MethodRuleBased
		}
		return modelItems, MethodModelBased
	}

	// Both methods roughly agree; the model result is generally the more
	// accurate of the two.
	return modelItems, MethodModelBased
}

// percentDiff is the symmetric percent difference of two totals. Two zero
// totals are defined as 0% apart.
func percentDiff(a, b float64) float64 {
	mean := (a + b) / 2
	if mean == 0 {
		return 0
	}
	return math.Abs(a-b) / mean * 100
}

// computeConfidence scores cross-method agreement, not either method's
// intrinsic accuracy.
func computeConfidence(modelAttempted bool, totalModel, totalRule float64, ruleEmpty bool) float64 {
	if !modelAttempted {
		return 0.7
	}
	if totalModel == 0 && totalRule == 0 {
		return 0.5
	}
	if ruleEmpty {
		return 0.85
	}

	agreement := 1 - math.Abs(totalModel-totalRule)/((totalModel+totalRule)/2)
	return clamp(agreement, 0.5, 0.95)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// validateItems runs the non-fatal sanity checks. Findings are logged and
// reported, never removed.
func validateItems(items []LineItem, reqCtx *common.RequestContext) []Warning {
	var warnings []Warning
	seen := make(map[string]string, len(items))

	for _, it := range items {
		if it.Amount < 0 {
			warnings = append(warnings, Warning{
				Code:    "negative_amount",
				ItemID:  it.ID,
				Message: fmt.Sprintf("số tiền âm: %.0f (%s)", it.Amount, it.Description),
			})
		}
		if it.Amount > outlierThreshold {
			warnings = append(warnings, Warning{
				Code:    "outlier_amount",
				ItemID:  it.ID,
				Message: fmt.Sprintf("số tiền bất thường: %.0f (%s)", it.Amount, it.Description),
			})
		}

		key := strings.ToLower(strings.TrimSpace(it.Description))
		if firstID, dup := seen[key]; dup {
			warnings = append(warnings, Warning{
				Code:    "duplicate_description",
				ItemID:  it.ID,
				Message: fmt.Sprintf("mô tả trùng với mục %s: %q", firstID, it.Description),
			})
		} else {
			seen[key] = it.ID
		}
	}

	for _, w := range warnings {
		reqCtx.LogWarning("Kiểm tra kết quả: [%s] %s", w.Code, w.Message)
	}

	return warnings
}
