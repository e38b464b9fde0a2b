// gemini.go - Shared Gemini call plumbing for the parser variants

package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/quoc48/receipt-parser/internal/common"
	"github.com/quoc48/receipt-parser/internal/ratelimit"
	"google.golang.org/api/option"
)

// maxOutputTokens caps the reply so truncation is explicit instead of silent.
const maxOutputTokens int32 = 8192

// generateContent performs one bounded, rate-limited, retried Gemini call
// and returns the text of the first candidate plus token usage.
func generateContent(
	ctx context.Context,
	apiKey, modelName string,
	timeout time.Duration,
	reqCtx *common.RequestContext,
	parts ...genai.Part,
) (string, *common.TokenUsage, error) {

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqCtx.StartSubStep("init_gemini_client")
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		reqCtx.EndSubStep("❌ FAILED")
		return "", nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: ptr(maxOutputTokens),
	}
	model.SetTemperature(0.1)
	reqCtx.EndSubStep("")

	reqCtx.StartSubStep("call_gemini_api")
	ratelimit.WaitForModelQuota()
	resp, err := GenerateWithRetry(ctx, model, reqCtx, DefaultRetryConfig, parts...)
	if err != nil {
		reqCtx.EndSubStep("❌ FAILED")
		return "", nil, err
	}
	reqCtx.EndSubStep("")

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil, fmt.Errorf("no response from Gemini API")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text = string(t)
			break
		}
	}
	if text == "" {
		return "", nil, fmt.Errorf("empty response from Gemini API (FinishReason: %v)", resp.Candidates[0].FinishReason)
	}

	if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		reqCtx.LogWarning("Response truncated (FinishReason: MAX_TOKENS) - items may be incomplete")
	}

	var tokenUsage *common.TokenUsage
	if resp.UsageMetadata != nil {
		tokens := common.CalculateParseTokenCost(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
		)
		tokenUsage = &tokens
	}

	return text, tokenUsage, nil
}

// ptr is a helper to get a pointer to an int32 value
func ptr(i int32) *int32 {
	return &i
}
