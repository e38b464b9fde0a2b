// gemini_ocr.go - Gemini-backed text extraction

package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/quoc48/receipt-parser/configs"
	"github.com/quoc48/receipt-parser/internal/ai"
	"github.com/quoc48/receipt-parser/internal/common"
	"github.com/quoc48/receipt-parser/internal/ratelimit"
	"google.golang.org/api/option"
)

const ocrMaxOutputTokens int32 = 8192

// Confidence assigned to lines recovered through the plain-text fallback,
// where the model reports no per-line scores.
const fallbackLineConfidence = 0.8

// GeminiExtractor implements TextExtractor over the Gemini vision API.
type GeminiExtractor struct {
	apiKey    string
	modelName string
	timeout   time.Duration
}

// NewGeminiExtractor creates the extractor from service configuration.
func NewGeminiExtractor() *GeminiExtractor {
	return &GeminiExtractor{
		apiKey:    configs.GEMINI_API_KEY,
		modelName: configs.OCR_MODEL_NAME,
		timeout:   time.Duration(configs.IMAGE_PARSE_TIMEOUT) * time.Second,
	}
}

// IsConfigured reports whether an API key is present.
func (e *GeminiExtractor) IsConfigured() bool { return e.apiKey != "" }

// ocrReply is the structured OCR response shape.
type ocrReply struct {
	Status  string `json:"status"`
	RawText string `json:"raw_document_text"`
	Lines   []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"lines"`
}

// ExtractText reads all visible text from a receipt image. A JSON-schema
// call is attempted first for per-line confidences; if its reply cannot
// be parsed the extractor falls back to a plain-text call. Failure of
// both is a real error - it blocks every parsing strategy downstream.
func (e *GeminiExtractor) ExtractText(ctx context.Context, image []byte, mimeType string, reqCtx *common.RequestContext) (*Extraction, error) {
	if !e.IsConfigured() {
		return nil, fmt.Errorf("text extraction unavailable: no API key configured")
	}

	if configs.ENABLE_IMAGE_PREPROCESSING {
		reqCtx.StartSubStep("image_preprocessing")
		processed, processedMIME, err := PreprocessImage(image, mimeType)
		reqCtx.EndSubStep("")
		if err != nil {
			reqCtx.LogWarning("Tiền xử lý ảnh thất bại, dùng ảnh gốc: %v", err)
		} else {
			image, mimeType = processed, processedMIME
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reqCtx.StartSubStep("init_gemini_client")
	client, err := genai.NewClient(ctx, option.WithAPIKey(e.apiKey))
	if err != nil {
		reqCtx.EndSubStep("❌ FAILED")
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(e.modelName)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: int32Ptr(ocrMaxOutputTokens),
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = ocrSchema()
	reqCtx.EndSubStep("")

	prompt := `Đọc TOÀN BỘ chữ nhìn thấy trên ảnh hóa đơn này, từ trên xuống dưới, trái sang phải.
Trả về raw_document_text (toàn bộ văn bản, xuống dòng bằng \n) và lines (từng dòng kèm confidence 0.0-1.0).
KHÔNG phân tích, KHÔNG định dạng lại - chỉ đọc và trả về đúng những gì in trên hóa đơn.`

	blob := genai.Blob{MIMEType: mimeType, Data: image}

	reqCtx.StartSubStep("call_gemini_api")
	ratelimit.WaitForModelQuota()
	resp, err := ai.GenerateWithRetry(ctx, model, reqCtx, ai.DefaultRetryConfig, genai.Text(prompt), blob)
	if err != nil {
		reqCtx.EndSubStep("❌ FAILED")
		return nil, fmt.Errorf("OCR call failed: %w", err)
	}
	reqCtx.EndSubStep("")

	text, truncated, err := firstCandidateText(resp)
	if err != nil {
		return nil, err
	}
	e.recordUsage(resp, reqCtx)

	var reply ocrReply
	if jsonErr := json.Unmarshal([]byte(fixJSONEscaping(text)), &reply); jsonErr != nil {
		reqCtx.LogWarning("OCR JSON không hợp lệ (%v), chuyển sang fallback văn bản thuần", jsonErr)
		return e.extractPlainText(ctx, client, blob, reqCtx)
	}

	extraction := &Extraction{
		RawText:   reply.RawText,
		IsPartial: truncated,
	}
	for _, l := range reply.Lines {
		if strings.TrimSpace(l.Text) == "" {
			continue
		}
		extraction.Lines = append(extraction.Lines, Line{Text: l.Text, Confidence: l.Confidence})
	}
	if len(extraction.Lines) == 0 {
		extraction.Lines = linesFromText(reply.RawText, fallbackLineConfidence)
	}

	reqCtx.LogInfo("OCR xong: %d ký tự, %d dòng", len(extraction.RawText), len(extraction.Lines))
	return extraction, nil
}

// extractPlainText retries without the JSON schema. Used when the
// structured reply was truncated or malformed.
func (e *GeminiExtractor) extractPlainText(ctx context.Context, client *genai.Client, blob genai.Blob, reqCtx *common.RequestContext) (*Extraction, error) {
	model := client.GenerativeModel(e.modelName)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: int32Ptr(ocrMaxOutputTokens),
	}

	prompt := `Đọc toàn bộ chữ trên ảnh hóa đơn này từ trên xuống dưới, trái sang phải.
Chỉ trả về văn bản đã đọc, không thêm gì khác.`

	reqCtx.StartSubStep("fallback_plain_text_ocr")
	ratelimit.WaitForModelQuota()
	resp, err := ai.GenerateWithRetry(ctx, model, reqCtx, ai.DefaultRetryConfig, genai.Text(prompt), blob)
	if err != nil {
		reqCtx.EndSubStep("❌ FAILED")
		return nil, fmt.Errorf("plain text OCR fallback failed: %w", err)
	}
	reqCtx.EndSubStep("")

	text, truncated, err := firstCandidateText(resp)
	if err != nil {
		return nil, err
	}
	e.recordUsage(resp, reqCtx)

	return &Extraction{
		RawText:      text,
		Lines:        linesFromText(text, fallbackLineConfidence),
		IsPartial:    truncated,
		FallbackUsed: true,
	}, nil
}

func (e *GeminiExtractor) recordUsage(resp *genai.GenerateContentResponse, reqCtx *common.RequestContext) {
	if resp.UsageMetadata == nil {
		return
	}
	tokens := common.CalculateOCRTokenCost(
		int(resp.UsageMetadata.PromptTokenCount),
		int(resp.UsageMetadata.CandidatesTokenCount),
	)
	reqCtx.AddTokens(&tokens)
}

// firstCandidateText pulls the text part of the first candidate and
// whether the reply hit the token cap.
func firstCandidateText(resp *genai.GenerateContentResponse) (string, bool, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", false, fmt.Errorf("no response from Gemini API")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text = string(t)
			break
		}
	}
	if text == "" {
		return "", false, fmt.Errorf("empty response from Gemini API (FinishReason: %v)", resp.Candidates[0].FinishReason)
	}

	return text, resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens, nil
}

func ocrSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"status": {
				Type:        genai.TypeString,
				Description: "Status of the extraction (success or error)",
			},
			"raw_document_text": {
				Type:        genai.TypeString,
				Description: "All visible text from the document, top to bottom, left to right, lines separated by \\n. Do not format or analyze.",
			},
			"lines": {
				Type:        genai.TypeArray,
				Description: "Each recognized line in reading order",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text":       {Type: genai.TypeString},
						"confidence": {Type: genai.TypeNumber, Description: "Recognition confidence 0.0-1.0"},
					},
					Required: []string{"text"},
				},
			},
		},
		Required: []string{"status", "raw_document_text"},
	}
}

var jsonStringPattern = regexp.MustCompile(`"([^"]*(?:\\.[^"]*)*)"`)

// fixJSONEscaping escapes literal control characters Gemini sometimes
// leaves inside JSON string values, which break Go's JSON parser.
func fixJSONEscaping(jsonStr string) string {
	return jsonStringPattern.ReplaceAllStringFunc(jsonStr, func(match string) string {
		if len(match) < 2 {
			return match
		}
		content := match[1 : len(match)-1]

		content = strings.ReplaceAll(content, "\n", "\\n")
		content = strings.ReplaceAll(content, "\r", "\\r")
		content = strings.ReplaceAll(content, "\t", "\\t")

		var b strings.Builder
		for _, ch := range content {
			if ch < 0x20 {
				fmt.Fprintf(&b, "\\u%04x", ch)
			} else {
				b.WriteRune(ch)
			}
		}
		return `"` + b.String() + `"`
	})
}

func int32Ptr(i int32) *int32 {
	return &i
}
