package extract

import (
	"context"
	"fmt"

	"certivault/internal/config"
	"certivault/internal/cvault"
)

// NewExtractorFromConfig creates an Extractor based on the extraction
// config type. Type "none" disables extraction: the returned Extractor is
// nil and record creation is manual-entry only.
func NewExtractorFromConfig(ctx context.Context, cfg config.ExtractionConfig, categories []string) (cvault.Extractor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "genai":
		return NewGenAIExtractor(ctx, cfg.APIKey, cfg.Model, categories)
	default:
		return nil, fmt.Errorf("unknown extraction type: %q", cfg.Type)
	}
}
