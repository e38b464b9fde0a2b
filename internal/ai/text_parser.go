// text_parser.go - Text-prompt parser variant (freeform policy)

package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/quoc48/receipt-parser/internal/category"
	"github.com/quoc48/receipt-parser/internal/common"
	"github.com/quoc48/receipt-parser/internal/parser"
)

// OCR-text grounding is empirically less reliable than reading the image,
// so the text variant defaults to a lower per-item confidence.
const textDefaultConfidence = 0.8

// TextParser sends the raw OCR text to Gemini and trusts the returned
// final amounts (freeform policy).
type TextParser struct {
	apiKey    string
	modelName string
	timeout   time.Duration
	table     *category.Table
}

// NewTextParser creates the text-prompt parser variant.
func NewTextParser(apiKey, modelName string, timeout time.Duration, table *category.Table) *TextParser {
	return &TextParser{apiKey: apiKey, modelName: modelName, timeout: timeout, table: table}
}

// PolicyTag returns "text"
func (p *TextParser) PolicyTag() string { return "text" }

// IsConfigured reports whether an API key is present. Absence means
// "service unavailable", never an error.
func (p *TextParser) IsConfigured() bool { return p.apiKey != "" }

// ParseReceipt extracts line items from OCR text. It never returns an
// error to its caller: every failure degrades to an empty result with a
// failure outcome.
func (p *TextParser) ParseReceipt(ctx context.Context, in parser.ModelInput, reqCtx *common.RequestContext) parser.ModelResult {
	if !p.IsConfigured() {
		return parser.ModelResult{Items: []parser.LineItem{}, Outcome: parser.ModelUnconfigured}
	}
	if strings.TrimSpace(in.Text) == "" {
		return failedResult(reqCtx, p.PolicyTag(), fmt.Errorf("no text payload to parse"))
	}

	raw, usage, err := generateContent(ctx, p.apiKey, p.modelName, p.timeout, reqCtx,
		genai.Text(BuildTextParsePrompt(in.Text)))
	if err != nil {
		return failedResult(reqCtx, p.PolicyTag(), err)
	}
	reqCtx.AddTokens(usage)

	items, err := parseFreeformItems(raw, p.PolicyTag(), textDefaultConfidence, p.table)
	if err != nil {
		return failedResult(reqCtx, p.PolicyTag(), err)
	}

	return okResult(items)
}

// failedResult logs a degraded call and wraps it as "no results".
func failedResult(reqCtx *common.RequestContext, tag string, err error) parser.ModelResult {
	reqCtx.LogWarning("Parser %s thất bại, trả về rỗng: %v", tag, err)
	return parser.ModelResult{Items: []parser.LineItem{}, Outcome: parser.ModelFailed, Err: err}
}

func okResult(items []parser.LineItem) parser.ModelResult {
	outcome := parser.ModelOK
	if len(items) == 0 {
		outcome = parser.ModelEmpty
	}
	return parser.ModelResult{Items: items, Outcome: outcome}
}
