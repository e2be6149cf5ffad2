package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"certivault/internal/cvault"
)

const defaultModel = "gemini-2.0-flash"

const extractionPrompt = `You are given a photo or scan of a certificate or award document.
Extract its metadata and respond with a single JSON object using exactly these keys:
{"title": "", "studentName": "", "issuer": "", "date": "YYYY-MM-DD", "category": "", "subject": "", "summary": "", "tags": []}
Leave a field empty when it cannot be read. The date must be ISO formatted or empty.
The category should be one of: %s. Respond with JSON only.`

// GenAIExtractor extracts certificate metadata using Google's Gemini API
// with the image supplied inline.
type GenAIExtractor struct {
	client     *genai.Client
	model      string
	categories []string
}

var _ cvault.Extractor = (*GenAIExtractor)(nil)

// NewGenAIExtractor creates a Gemini-backed extractor. categories hints the
// model toward the vault's category set.
func NewGenAIExtractor(ctx context.Context, apiKey, model string, categories []string) (*GenAIExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("extraction API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIExtractor{client: client, model: model, categories: categories}, nil
}

// Extract sends the image to the model and parses the structured response.
// All failures come back as *cvault.ExtractionError; callers degrade to
// manual entry.
func (e *GenAIExtractor) Extract(ctx context.Context, image []byte, mimeType string) (*cvault.Extraction, error) {
	if len(image) == 0 {
		return nil, &cvault.ExtractionError{Err: fmt.Errorf("empty image")}
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := fmt.Sprintf(extractionPrompt, strings.Join(e.categories, ", "))
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	result, err := e.client.Models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, &cvault.ExtractionError{Err: fmt.Errorf("GenAI request failed: %w", err)}
	}

	ext, err := ParseExtraction([]byte(result.Text()))
	if err != nil {
		return nil, &cvault.ExtractionError{Err: err}
	}
	return ext, nil
}

// extractionPayload mirrors the JSON shape requested from the model.
type extractionPayload struct {
	Title       string   `json:"title"`
	StudentName string   `json:"studentName"`
	Issuer      string   `json:"issuer"`
	Date        string   `json:"date"`
	Category    string   `json:"category"`
	Subject     string   `json:"subject"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
}

// ParseExtraction decodes a model response into an Extraction. Models
// occasionally wrap JSON in markdown fences or prepend prose; the parser
// tolerates both and settles for whatever fields are present.
func ParseExtraction(raw []byte) (*cvault.Extraction, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, fmt.Errorf("empty extraction response")
	}

	// Strip markdown fences and any prose around the JSON object.
	if start := strings.IndexByte(text, '{'); start >= 0 {
		if end := strings.LastIndexByte(text, '}'); end > start {
			text = text[start : end+1]
		}
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("malformed extraction response: %w", err)
	}

	return &cvault.Extraction{
		Title:       strings.TrimSpace(payload.Title),
		StudentName: strings.TrimSpace(payload.StudentName),
		Issuer:      strings.TrimSpace(payload.Issuer),
		Date:        strings.TrimSpace(payload.Date),
		Category:    strings.TrimSpace(payload.Category),
		Subject:     strings.TrimSpace(payload.Subject),
		Summary:     strings.TrimSpace(payload.Summary),
		Tags:        payload.Tags,
	}, nil
}
