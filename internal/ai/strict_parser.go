// strict_parser.go - Vision parser variant with the strict state-machine policy
//
// The model walks the receipt line by line and reports base_price and
// discount as separate fields; the subtraction happens here. The freeform
// policy's "return the final amount" contract turned out to be the single
// biggest source of wrong amounts, so this variant forbids the model from
// doing any arithmetic at all.

package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/quoc48/receipt-parser/internal/category"
	"github.com/quoc48/receipt-parser/internal/common"
	"github.com/quoc48/receipt-parser/internal/parser"
)

const strictDefaultConfidence = 0.95

// StrictParser reads the receipt image with the state-machine prompt and
// computes final amounts locally.
type StrictParser struct {
	apiKey    string
	modelName string
	timeout   time.Duration
	table     *category.Table
}

// NewStrictParser creates the strict state-machine vision parser variant.
func NewStrictParser(apiKey, modelName string, timeout time.Duration, table *category.Table) *StrictParser {
	return &StrictParser{apiKey: apiKey, modelName: modelName, timeout: timeout, table: table}
}

// PolicyTag returns "strict"
func (p *StrictParser) PolicyTag() string { return "strict" }

// IsConfigured reports whether an API key is present.
func (p *StrictParser) IsConfigured() bool { return p.apiKey != "" }

// ParseReceipt extracts line items from the image bytes, computing
// final_amount = base_price - discount per item and keeping only items
// with a strictly positive final amount.
func (p *StrictParser) ParseReceipt(ctx context.Context, in parser.ModelInput, reqCtx *common.RequestContext) parser.ModelResult {
	if !p.IsConfigured() {
		return parser.ModelResult{Items: []parser.LineItem{}, Outcome: parser.ModelUnconfigured}
	}
	if len(in.Image) == 0 {
		return failedResult(reqCtx, p.PolicyTag(), fmt.Errorf("no image payload to parse"))
	}

	raw, usage, err := generateContent(ctx, p.apiKey, p.modelName, p.timeout, reqCtx,
		genai.Text(BuildStrictParsePrompt()),
		genai.Blob{MIMEType: imageMIME(in.MIMEType), Data: in.Image})
	if err != nil {
		return failedResult(reqCtx, p.PolicyTag(), err)
	}
	reqCtx.AddTokens(usage)

	items, err := parseStrictItems(raw, p.PolicyTag(), strictDefaultConfidence, p.table)
	if err != nil {
		return failedResult(reqCtx, p.PolicyTag(), err)
	}

	return okResult(items)
}
