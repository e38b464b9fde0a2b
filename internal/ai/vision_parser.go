// vision_parser.go - Vision parser variant reading the image (freeform policy)

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

const visionDefaultConfidence = 0.9

// VisionParser sends the receipt image to Gemini and trusts the returned
// final amounts (freeform policy).
type VisionParser struct {
	apiKey    string
	modelName string
	timeout   time.Duration
	table     *category.Table
}

// NewVisionParser creates the freeform vision parser variant.
func NewVisionParser(apiKey, modelName string, timeout time.Duration, table *category.Table) *VisionParser {
	return &VisionParser{apiKey: apiKey, modelName: modelName, timeout: timeout, table: table}
}

// PolicyTag returns "vision"
func (p *VisionParser) PolicyTag() string { return "vision" }

// IsConfigured reports whether an API key is present.
func (p *VisionParser) IsConfigured() bool { return p.apiKey != "" }

// ParseReceipt extracts line items straight from the image bytes.
func (p *VisionParser) ParseReceipt(ctx context.Context, in parser.ModelInput, reqCtx *common.RequestContext) parser.ModelResult {
	if !p.IsConfigured() {
		return parser.ModelResult{Items: []parser.LineItem{}, Outcome: parser.ModelUnconfigured}
	}
	if len(in.Image) == 0 {
		return failedResult(reqCtx, p.PolicyTag(), fmt.Errorf("no image payload to parse"))
	}

	raw, usage, err := generateContent(ctx, p.apiKey, p.modelName, p.timeout, reqCtx,
		genai.Text(BuildVisionParsePrompt()),
		genai.Blob{MIMEType: imageMIME(in.MIMEType), Data: in.Image})
	if err != nil {
		return failedResult(reqCtx, p.PolicyTag(), err)
	}
	reqCtx.AddTokens(usage)

	items, err := parseFreeformItems(raw, p.PolicyTag(), visionDefaultConfidence, p.table)
	if err != nil {
		return failedResult(reqCtx, p.PolicyTag(), err)
	}

	return okResult(items)
}

func imageMIME(mime string) string {
	if mime == "" {
		return "image/jpeg"
	}
	return mime
}
