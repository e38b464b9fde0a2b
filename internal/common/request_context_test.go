package common

import (
	"math"
	"testing"

	"github.com/quoc48/receipt-parser/configs"
)

func TestCalculateTokenCost(t *testing.T) {
	configs.PARSE_INPUT_PRICE_PER_MILLION = 0.30
	configs.PARSE_OUTPUT_PRICE_PER_MILLION = 2.50
	configs.USD_TO_VND = 25400.0

	usage := CalculateParseTokenCost(1_000_000, 1_000_000)

	if usage.TotalTokens != 2_000_000 {
		t.Errorf("total tokens = %d, want 2000000", usage.TotalTokens)
	}
	if math.Abs(usage.CostUSD-2.80) > 1e-9 {
		t.Errorf("cost USD = %.4f, want 2.8000", usage.CostUSD)
	}
	if math.Abs(usage.CostVND-2.80*25400.0) > 1e-6 {
		t.Errorf("cost VND = %.0f, want %.0f", usage.CostVND, 2.80*25400.0)
	}
}

func TestAddTokensAccumulates(t *testing.T) {
	rc := NewRequestContext()

	rc.AddTokens(&TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150, CostUSD: 0.01, CostVND: 254})
	rc.AddTokens(&TokenUsage{InputTokens: 200, OutputTokens: 100, TotalTokens: 300, CostUSD: 0.02, CostVND: 508})
	rc.AddTokens(nil)

	if rc.TotalTokens.TotalTokens != 450 {
		t.Errorf("total tokens = %d, want 450", rc.TotalTokens.TotalTokens)
	}
	if rc.TotalTokens.InputTokens != 300 {
		t.Errorf("input tokens = %d, want 300", rc.TotalTokens.InputTokens)
	}
	if math.Abs(rc.TotalTokens.CostVND-762) > 1e-9 {
		t.Errorf("cost VND = %.0f, want 762", rc.TotalTokens.CostVND)
	}
}

func TestStepTracking(t *testing.T) {
	rc := NewRequestContext()

	rc.StartStep("rule_parsing")
	rc.StartSubStep("scan_lines")
	rc.EndSubStep("42 dòng")
	rc.EndStep("success", nil, nil)

	if len(rc.Steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(rc.Steps))
	}
	step := rc.Steps[0]
	if step.Name != "rule_parsing" {
		t.Errorf("step name = %q", step.Name)
	}
	if len(step.SubSteps) != 1 || step.SubSteps[0].Name != "scan_lines" {
		t.Errorf("sub steps = %+v", step.SubSteps)
	}

	summary := rc.GetSummary()
	if summary["request_id"] != rc.RequestID {
		t.Errorf("summary request_id = %v", summary["request_id"])
	}
	if summary["total_steps"] != 1 {
		t.Errorf("summary total_steps = %v", summary["total_steps"])
	}
}

func TestRequestIDsUnique(t *testing.T) {
	a := NewRequestContext()
	b := NewRequestContext()
	if a.RequestID == b.RequestID {
		t.Error("two contexts share a request id")
	}
	if a.RequestID == "" {
		t.Error("request id is empty")
	}
}
