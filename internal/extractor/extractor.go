// extractor.go - Text Extractor boundary

package extractor

import (
	"context"
	"strings"

	"github.com/quoc48/receipt-parser/internal/common"
)

// Line is one recognized text line with its recognition confidence.
type Line struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Extraction is the extractor's output: the raw concatenated text plus
// the ordered line sequence. Downstream parsing depends on nothing else
// (no bounding boxes).
type Extraction struct {
	RawText      string `json:"raw_text"`
	Lines        []Line `json:"lines"`
	IsPartial    bool   `json:"is_partial"`
	FallbackUsed bool   `json:"fallback_used"`
}

// LineTexts returns the ordered line strings.
func (e *Extraction) LineTexts() []string {
	texts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		texts[i] = l.Text
	}
	return texts
}

// TextExtractor turns a receipt image into text. Unlike the model-based
// parsers, extraction failure is a real error surfaced to the caller:
// without text neither parsing strategy can run.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, mimeType string, reqCtx *common.RequestContext) (*Extraction, error)
	IsConfigured() bool
}

// linesFromText splits raw text into lines with a uniform confidence,
// used when the model reply carried no per-line detail.
func linesFromText(raw string, confidence float64) []Line {
	split := strings.Split(raw, "\n")
	lines := make([]Line, 0, len(split))
	for _, s := range split {
		if strings.TrimSpace(s) == "" {
			continue
		}
		lines = append(lines, Line{Text: s, Confidence: confidence})
	}
	return lines
}
