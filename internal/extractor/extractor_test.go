package extractor

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestLinesFromText(t *testing.T) {
	lines := linesFromText("WINMART\n\nCà phê 35.000\n   \nTổng 35.000\n", 0.8)

	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %+v", len(lines), lines)
	}
	if lines[1].Text != "Cà phê 35.000" {
		t.Errorf("line 1 = %q", lines[1].Text)
	}
	for i, l := range lines {
		if l.Confidence != 0.8 {
			t.Errorf("line %d confidence = %.2f, want 0.80", i, l.Confidence)
		}
	}
}

func TestLineTexts(t *testing.T) {
	e := &Extraction{Lines: []Line{{Text: "a"}, {Text: "b"}}}
	got := e.LineTexts()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("LineTexts = %v", got)
	}

	empty := &Extraction{}
	if texts := empty.LineTexts(); len(texts) != 0 {
		t.Errorf("empty LineTexts = %v", texts)
	}
}

func TestFixJSONEscaping(t *testing.T) {
	// Literal newlines inside string values come back from the model
	// often enough to need repair before unmarshaling.
	broken := "{\"raw_document_text\": \"WINMART\nCà phê 35.000\", \"status\": \"success\"}"

	var check struct {
		RawText string `json:"raw_document_text"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal([]byte(broken), &check); err == nil {
		t.Fatal("expected broken JSON to fail before repair")
	}
	if err := json.Unmarshal([]byte(fixJSONEscaping(broken)), &check); err != nil {
		t.Fatalf("repaired JSON still invalid: %v", err)
	}
	if check.RawText != "WINMART\nCà phê 35.000" {
		t.Errorf("raw text = %q", check.RawText)
	}
	if check.Status != "success" {
		t.Errorf("status = %q", check.Status)
	}
}

func TestFixJSONEscapingLeavesValidJSONAlone(t *testing.T) {
	valid := `{"a": "x\ny", "b": 1}`
	var before, after map[string]interface{}
	if err := json.Unmarshal([]byte(valid), &before); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(fixJSONEscaping(valid)), &after); err != nil {
		t.Fatalf("repair broke valid JSON: %v", err)
	}
	if before["a"] != after["a"] {
		t.Errorf("value changed: %q vs %q", before["a"], after["a"])
	}
}

func testImage(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestPreprocessImagePNG(t *testing.T) {
	data := testImage(100, 60)

	out, mime, err := PreprocessImage(data, "image/png")
	if err != nil {
		t.Fatalf("PreprocessImage: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not decodable PNG: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 60 {
		t.Errorf("small image was resized: %v", img.Bounds())
	}
}

func TestPreprocessImageDefaultsToJPEG(t *testing.T) {
	data := testImage(10, 10)

	_, mime, err := PreprocessImage(data, "image/webp")
	if err != nil {
		t.Fatalf("PreprocessImage: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q, want image/jpeg fallback", mime)
	}
}

func TestPreprocessImageRejectsGarbage(t *testing.T) {
	if _, _, err := PreprocessImage([]byte("not an image"), "image/jpeg"); err == nil {
		t.Error("expected decode error for garbage input")
	}
}
