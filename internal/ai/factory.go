// factory.go - Parser variant factory keyed by configured policy

package ai

import (
	"log"
	"time"

	"github.com/quoc48/receipt-parser/configs"
	"github.com/quoc48/receipt-parser/internal/category"
	"github.com/quoc48/receipt-parser/internal/parser"
)

// CreateModelParser creates the model-based parser variant for the
// configured PARSER_POLICY. All variants classify with the canonical
// keyword table; the legacy per-variant tables remain available through
// category.TableByName for parity comparisons.
func CreateModelParser() parser.ModelParser {
	table := category.Canonical()
	textTimeout := time.Duration(configs.TEXT_PARSE_TIMEOUT) * time.Second
	imageTimeout := time.Duration(configs.IMAGE_PARSE_TIMEOUT) * time.Second

	switch configs.PARSER_POLICY {
	case "text":
		log.Printf("🔵 Creating text-prompt parser (model: %s)", configs.PARSER_MODEL_NAME)
		return NewTextParser(configs.GEMINI_API_KEY, configs.PARSER_MODEL_NAME, textTimeout, table)

	case "vision":
		log.Printf("🔵 Creating freeform vision parser (model: %s)", configs.PARSER_MODEL_NAME)
		return NewVisionParser(configs.GEMINI_API_KEY, configs.PARSER_MODEL_NAME, imageTimeout, table)

	case "strict":
		log.Printf("🔵 Creating strict state-machine vision parser (model: %s)", configs.PARSER_MODEL_NAME)
		return NewStrictParser(configs.GEMINI_API_KEY, configs.PARSER_MODEL_NAME, imageTimeout, table)

	default:
		log.Printf("⚠️  Unknown PARSER_POLICY %q, falling back to strict", configs.PARSER_POLICY)
		return NewStrictParser(configs.GEMINI_API_KEY, configs.PARSER_MODEL_NAME, imageTimeout, table)
	}
}

// CreateTextParser always returns the text-prompt variant; the parse-text
// endpoint uses it regardless of the image policy since it has no image.
func CreateTextParser() parser.ModelParser {
	return NewTextParser(
		configs.GEMINI_API_KEY,
		configs.PARSER_MODEL_NAME,
		time.Duration(configs.TEXT_PARSE_TIMEOUT)*time.Second,
		category.Canonical(),
	)
}
