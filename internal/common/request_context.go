// request_context.go - Request tracking and logging system

package common

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/quoc48/receipt-parser/configs"
)

// RequestContext tracks the entire request lifecycle with timing and costs
type RequestContext struct {
	RequestID           string
	StartTime           time.Time
	Steps               []StepLog
	TotalTokens         TokenUsage
	CurrentStep         string
	CurrentStepStart    time.Time
	CurrentSubSteps     []SubStepLog
	CurrentSubStep      string
	CurrentSubStepStart time.Time
}

// StepLog represents a single processing step
type StepLog struct {
	Name      string       `json:"name"`
	StartTime time.Time    `json:"start_time"`
	Duration  int64        `json:"duration_ms"`
	Status    string       `json:"status"` // "success", "failed", "skipped"
	Tokens    *TokenUsage  `json:"tokens,omitempty"`
	Error     string       `json:"error,omitempty"`
	SubSteps  []SubStepLog `json:"sub_steps,omitempty"`
}

// SubStepLog represents a detailed sub-operation within a step
type SubStepLog struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Duration  int64     `json:"duration_ms"`
	Details   string    `json:"details,omitempty"`
}

// TokenUsage tracks API token consumption
type TokenUsage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	CostVND      float64 `json:"cost_vnd"`
}

// NewRequestContext creates a new request tracking context
func NewRequestContext() *RequestContext {
	reqID := uuid.New().String()
	now := time.Now()

	log.Printf("[%s] 🚀 Nhận yêu cầu mới | thời gian: %s", reqID, now.Format("15:04:05"))

	return &RequestContext{
		RequestID:   reqID,
		StartTime:   now,
		Steps:       []StepLog{},
		TotalTokens: TokenUsage{},
	}
}

// StartStep begins tracking a new processing step
func (rc *RequestContext) StartStep(stepName string) {
	rc.CurrentStep = stepName
	rc.CurrentStepStart = time.Now()

	// Map step names to Vietnamese descriptions for operator logs
	stepDescriptions := map[string]string{
		"text_extraction": "📷 Đọc chữ từ ảnh hóa đơn (OCR)",
		"model_parsing":   "🤖 Phân tích hóa đơn bằng AI",
		"rule_parsing":    "📐 Phân tích hóa đơn bằng luật",
		"arbitration":     "⚖️ Đối chiếu và chọn kết quả",
		"save_history":    "💾 Lưu lịch sử phân tích",
	}

	desc := stepDescriptions[stepName]
	if desc == "" {
		desc = stepName
	}

	log.Printf("[%s] \n┌── %s", rc.RequestID, desc)
}

// EndStep completes the current step and records timing
func (rc *RequestContext) EndStep(status string, tokens *TokenUsage, err error) {
	duration := time.Since(rc.CurrentStepStart).Milliseconds()

	stepLog := StepLog{
		Name:      rc.CurrentStep,
		StartTime: rc.CurrentStepStart,
		Duration:  duration,
		Status:    status,
		Tokens:    tokens,
		SubSteps:  rc.CurrentSubSteps,
	}

	if err != nil {
		stepLog.Error = err.Error()
		log.Printf("[%s] ❌ FAILED - %s (%.2fs) - Error: %v",
			rc.RequestID, rc.CurrentStep, float64(duration)/1000, err)
	} else {
		logMsg := fmt.Sprintf("[%s] └── ✅ Xong: %.2fs",
			rc.RequestID, float64(duration)/1000)

		if tokens != nil {
			rc.TotalTokens.InputTokens += tokens.InputTokens
			rc.TotalTokens.OutputTokens += tokens.OutputTokens
			rc.TotalTokens.TotalTokens += tokens.TotalTokens
			rc.TotalTokens.CostUSD += tokens.CostUSD
			rc.TotalTokens.CostVND += tokens.CostVND

			logMsg += fmt.Sprintf(" | 🪙 Tokens: %d vào + %d ra = %d | 💰 Chi phí: %.0f₫",
				tokens.InputTokens, tokens.OutputTokens, tokens.TotalTokens, tokens.CostVND)
		}

		if len(rc.CurrentSubSteps) > 0 {
			logMsg += fmt.Sprintf(" | bước con: %d", len(rc.CurrentSubSteps))
		}

		log.Print(logMsg)
	}

	rc.Steps = append(rc.Steps, stepLog)
	rc.CurrentStep = ""
	rc.CurrentSubSteps = []SubStepLog{}
}

// AddTokens folds a completed API call's usage into the request total.
// Used by call sites that finish outside a tracked step.
func (rc *RequestContext) AddTokens(tokens *TokenUsage) {
	if tokens == nil {
		return
	}
	rc.TotalTokens.InputTokens += tokens.InputTokens
	rc.TotalTokens.OutputTokens += tokens.OutputTokens
	rc.TotalTokens.TotalTokens += tokens.TotalTokens
	rc.TotalTokens.CostUSD += tokens.CostUSD
	rc.TotalTokens.CostVND += tokens.CostVND
}

// CalculateOCRTokenCost calculates cost for the OCR phase using OCR pricing
func CalculateOCRTokenCost(inputTokens, outputTokens int) TokenUsage {
	return calculateTokenCost(inputTokens, outputTokens,
		configs.OCR_INPUT_PRICE_PER_MILLION, configs.OCR_OUTPUT_PRICE_PER_MILLION)
}

// CalculateParseTokenCost calculates cost for the model-parsing phase
func CalculateParseTokenCost(inputTokens, outputTokens int) TokenUsage {
	return calculateTokenCost(inputTokens, outputTokens,
		configs.PARSE_INPUT_PRICE_PER_MILLION, configs.PARSE_OUTPUT_PRICE_PER_MILLION)
}

func calculateTokenCost(inputTokens, outputTokens int, inputPrice, outputPrice float64) TokenUsage {
	inputCost := float64(inputTokens) * inputPrice / 1_000_000
	outputCost := float64(outputTokens) * outputPrice / 1_000_000
	costUSD := inputCost + outputCost

	return TokenUsage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		CostUSD:      costUSD,
		CostVND:      costUSD * configs.USD_TO_VND,
	}
}

// GetSummary returns a final summary of the entire request
func (rc *RequestContext) GetSummary() map[string]interface{} {
	totalDuration := time.Since(rc.StartTime).Milliseconds()

	stepBreakdown := make(map[string]int64)
	for _, step := range rc.Steps {
		stepBreakdown[step.Name] = step.Duration
	}

	summary := map[string]interface{}{
		"request_id":         rc.RequestID,
		"total_duration_ms":  totalDuration,
		"total_duration_sec": float64(totalDuration) / 1000,
		"step_breakdown":     stepBreakdown,
		"total_steps":        len(rc.Steps),
		"token_usage": map[string]interface{}{
			"input_tokens":  rc.TotalTokens.InputTokens,
			"output_tokens": rc.TotalTokens.OutputTokens,
			"total_tokens":  rc.TotalTokens.TotalTokens,
			"cost_usd":      fmt.Sprintf("$%.4f", rc.TotalTokens.CostUSD),
			"cost_vnd":      fmt.Sprintf("%.0f₫", rc.TotalTokens.CostVND),
		},
	}

	log.Printf("[%s] ═══ 🎯 Tổng kết ═══", rc.RequestID)
	log.Printf("[%s] ⏱️  Tổng thời gian: %.2fs | 📝 Số bước: %d | 🪙 Tokens: %d | 💰 Chi phí: %.0f₫",
		rc.RequestID,
		float64(totalDuration)/1000,
		len(rc.Steps),
		rc.TotalTokens.TotalTokens,
		rc.TotalTokens.CostVND)

	return summary
}

// StartSubStep begins tracking a detailed sub-operation
func (rc *RequestContext) StartSubStep(subStepName string) {
	rc.CurrentSubStep = subStepName
	rc.CurrentSubStepStart = time.Now()

	log.Printf("[%s]    ├─ %s...", rc.RequestID, subStepName)
}

// EndSubStep completes the current sub-step and records timing
func (rc *RequestContext) EndSubStep(details string) {
	if rc.CurrentSubStep == "" {
		return
	}

	duration := time.Since(rc.CurrentSubStepStart).Milliseconds()

	rc.CurrentSubSteps = append(rc.CurrentSubSteps, SubStepLog{
		Name:      rc.CurrentSubStep,
		StartTime: rc.CurrentSubStepStart,
		Duration:  duration,
		Details:   details,
	})

	detailsMsg := ""
	if details != "" {
		detailsMsg = " | " + details
	}
	log.Printf("[%s]    └─ ✅ %.2fs%s", rc.RequestID, float64(duration)/1000, detailsMsg)

	rc.CurrentSubStep = ""
}

// LogInfo logs info-level message with request ID prefix
func (rc *RequestContext) LogInfo(format string, args ...interface{}) {
	log.Printf("[%s] ℹ️  %s", rc.RequestID, fmt.Sprintf(format, args...))
}

// LogWarning logs warning-level message with request ID prefix
func (rc *RequestContext) LogWarning(format string, args ...interface{}) {
	log.Printf("[%s] ⚠️  %s", rc.RequestID, fmt.Sprintf(format, args...))
}

// LogError logs error-level message with request ID prefix
func (rc *RequestContext) LogError(format string, args ...interface{}) {
	log.Printf("[%s] ❌ %s", rc.RequestID, fmt.Sprintf(format, args...))
}
