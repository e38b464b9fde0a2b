// handlers.go - HTTP handlers for receipt parsing endpoints

package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quoc48/receipt-parser/configs"
	"github.com/quoc48/receipt-parser/internal/ai"
	"github.com/quoc48/receipt-parser/internal/category"
	"github.com/quoc48/receipt-parser/internal/common"
	"github.com/quoc48/receipt-parser/internal/extractor"
	"github.com/quoc48/receipt-parser/internal/parser"
	"github.com/quoc48/receipt-parser/internal/storage"
)

// Uploads above this are rejected before reading the body.
const maxImageBytes = 10 << 20 // 10 MB

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// ParseResponse is the reply for both parse endpoints.
type ParseResponse struct {
	Status       string                 `json:"status"`
	RequestID    string                 `json:"request_id"`
	Items        []parser.LineItem      `json:"items"`
	Total        float64                `json:"total"`
	Method       parser.Method          `json:"method"`
	Confidence   float64                `json:"confidence"`
	ReceiptType  parser.ReceiptType     `json:"receipt_type"`
	ModelOutcome parser.ModelOutcome    `json:"model_outcome"`
	Warnings     []parser.Warning       `json:"warnings,omitempty"`
	DurationMs   int64                  `json:"duration_ms"`
	OCR          *OCRInfo               `json:"ocr,omitempty"`
	Summary      map[string]interface{} `json:"summary"`
}

// OCRInfo summarizes the text extraction phase of an image parse.
type OCRInfo struct {
	LineCount    int  `json:"line_count"`
	IsPartial    bool `json:"is_partial"`
	FallbackUsed bool `json:"fallback_used"`
}

// ParseTextRequest is the JSON body of POST /api/v1/parse-text.
type ParseTextRequest struct {
	Text        string `json:"text"`
	PreferModel *bool  `json:"prefer_model,omitempty"`
	Validate    *bool  `json:"validate,omitempty"`
}

// ParseReceiptHandler accepts a multipart receipt image, extracts its
// text and runs the hybrid parsing pipeline over it.
func ParseReceiptHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "image file is required",
			"details":  err.Error(),
			"expected": "multipart form with an 'image' field",
		})
		return
	}

	if fileHeader.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": "image too large",
			"limit": maxImageBytes,
		})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType != "" && !allowedImageTypes[mimeType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "unsupported image type",
			"received": mimeType,
			"allowed":  []string{"image/jpeg", "image/png", "image/webp"},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open uploaded file", "details": err.Error()})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file", "details": err.Error()})
		return
	}

	reqCtx := common.NewRequestContext()

	ocr := extractor.NewGeminiExtractor()
	if !ocr.IsConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":      "text extraction unavailable: GEMINI_API_KEY not configured",
			"request_id": reqCtx.RequestID,
		})
		return
	}

	reqCtx.StartStep("text_extraction")
	extraction, err := ocr.ExtractText(c.Request.Context(), imageData, mimeType, reqCtx)
	if err != nil {
		reqCtx.EndStep("failed", nil, err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "failed to read text from image",
			"details":    err.Error(),
			"request_id": reqCtx.RequestID,
		})
		return
	}
	reqCtx.EndStep("success", nil, nil)

	opts := parseOptions(formBool(c, "prefer_model", configs.PREFER_MODEL_PARSER), formBool(c, "validate", configs.VALIDATE_RESULTS))

	hybrid := parser.NewHybridParser(
		parser.NewRuleParser(category.Canonical()),
		ai.CreateModelParser(),
	)

	reqCtx.StartStep("arbitration")
	result := hybrid.Parse(c.Request.Context(), parser.Input{
		RawText:  extraction.RawText,
		Lines:    extraction.LineTexts(),
		Image:    imageData,
		MIMEType: mimeType,
	}, opts, reqCtx)
	reqCtx.EndStep("success", nil, nil)

	storage.SaveParseResult(result, reqCtx)

	resp := buildParseResponse(result, reqCtx)
	resp.OCR = &OCRInfo{
		LineCount:    len(extraction.Lines),
		IsPartial:    extraction.IsPartial,
		FallbackUsed: extraction.FallbackUsed,
	}
	c.JSON(http.StatusOK, resp)
}

// ParseTextHandler parses already-extracted receipt text. Useful for
// clipboard paste flows and for receipts shared as plain text.
func ParseTextHandler(c *gin.Context) {
	var req ParseTextRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Invalid request format",
			"details":  err.Error(),
			"expected": "JSON with a 'text' field",
		})
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	reqCtx := common.NewRequestContext()

	opts := parseOptions(
		boolOrDefault(req.PreferModel, configs.PREFER_MODEL_PARSER),
		boolOrDefault(req.Validate, configs.VALIDATE_RESULTS),
	)

	// Text input always uses the text-prompt variant regardless of the
	// configured image policy.
	hybrid := parser.NewHybridParser(
		parser.NewRuleParser(category.Canonical()),
		ai.CreateTextParser(),
	)

	reqCtx.StartStep("arbitration")
	result := hybrid.Parse(c.Request.Context(), parser.Input{RawText: req.Text}, opts, reqCtx)
	reqCtx.EndStep("success", nil, nil)

	storage.SaveParseResult(result, reqCtx)

	c.JSON(http.StatusOK, buildParseResponse(result, reqCtx))
}

// CategoryInfo is one entry of the categories listing.
type CategoryInfo struct {
	Name      string `json:"name"`
	GuidFixed string `json:"guidfixed,omitempty"`
}

// CategoriesHandler lists the known expense categories. When persistence
// is enabled each entry carries its stable UUID from the catalog.
func CategoriesHandler(c *gin.Context) {
	var catalog *storage.CategoryCatalog
	if storage.IsEnabled() {
		loaded, err := storage.GetOrLoadCategoryCatalog()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to load category catalog",
				"details": err.Error(),
			})
			return
		}
		catalog = loaded
	}

	var list []CategoryInfo
	for _, label := range category.All() {
		list = append(list, CategoryInfo{
			Name:      string(label),
			GuidFixed: catalog.GuidForName(string(label)),
		})
	}

	c.JSON(http.StatusOK, gin.H{"categories": list, "count": len(list)})
}

func buildParseResponse(result *parser.ParseResult, reqCtx *common.RequestContext) ParseResponse {
	return ParseResponse{
		Status:       "success",
		RequestID:    reqCtx.RequestID,
		Items:        result.Items,
		Total:        parser.Total(result.Items),
		Method:       result.Method,
		Confidence:   result.Confidence,
		ReceiptType:  result.ReceiptType,
		ModelOutcome: result.ModelOutcome,
		Warnings:     result.Warnings,
		DurationMs:   result.Duration.Milliseconds(),
		Summary:      reqCtx.GetSummary(),
	}
}

func parseOptions(preferModel, validate bool) parser.Options {
	return parser.Options{PreferModel: preferModel, Validate: validate}
}

// formBool reads a boolean form/query override, falling back to the
// configured default when absent or malformed.
func formBool(c *gin.Context, key string, def bool) bool {
	value := c.PostForm(key)
	if value == "" {
		value = c.Query(key)
	}
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
