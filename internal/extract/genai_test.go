package extract_test

import (
	"reflect"
	"testing"

	"certivault/internal/extract"
)

func TestParseExtraction(t *testing.T) {
	t.Run("parses a complete response", func(t *testing.T) {
		raw := `{
			"title": "Math Olympiad Winner",
			"studentName": "Asha Rao",
			"issuer": "City School",
			"date": "2024-11-02",
			"category": "Academics",
			"subject": "Math",
			"summary": "First place in the regional round.",
			"tags": ["math", "competition"]
		}`

		got, err := extract.ParseExtraction([]byte(raw))
		if err != nil {
			t.Fatalf("ParseExtraction() error = %v", err)
		}
		if got.Title != "Math Olympiad Winner" || got.Date != "2024-11-02" || got.Category != "Academics" {
			t.Errorf("ParseExtraction() = %+v", got)
		}
		if !reflect.DeepEqual(got.Tags, []string{"math", "competition"}) {
			t.Errorf("tags = %v", got.Tags)
		}
	})

	t.Run("strips markdown fences", func(t *testing.T) {
		raw := "```json\n{\"title\": \"Swim Meet Gold\", \"tags\": []}\n```"

		got, err := extract.ParseExtraction([]byte(raw))
		if err != nil {
			t.Fatalf("ParseExtraction() error = %v", err)
		}
		if got.Title != "Swim Meet Gold" {
			t.Errorf("ParseExtraction() title = %q", got.Title)
		}
	})

	t.Run("tolerates prose around the JSON object", func(t *testing.T) {
		raw := `Here is the extracted metadata: {"title": "Piano Recital"} Hope this helps!`

		got, err := extract.ParseExtraction([]byte(raw))
		if err != nil {
			t.Fatalf("ParseExtraction() error = %v", err)
		}
		if got.Title != "Piano Recital" {
			t.Errorf("ParseExtraction() title = %q", got.Title)
		}
	})

	t.Run("accepts partial field sets", func(t *testing.T) {
		got, err := extract.ParseExtraction([]byte(`{"issuer": "Aqua Club"}`))
		if err != nil {
			t.Fatalf("ParseExtraction() error = %v", err)
		}
		if got.Issuer != "Aqua Club" || got.Title != "" || got.Tags != nil {
			t.Errorf("ParseExtraction() = %+v", got)
		}
	})

	t.Run("trims whitespace inside fields", func(t *testing.T) {
		got, err := extract.ParseExtraction([]byte(`{"title": "  Spaced Out  ", "date": " 2024-01-01 "}`))
		if err != nil {
			t.Fatalf("ParseExtraction() error = %v", err)
		}
		if got.Title != "Spaced Out" || got.Date != "2024-01-01" {
			t.Errorf("ParseExtraction() = %+v", got)
		}
	})

	t.Run("rejects an empty response", func(t *testing.T) {
		if _, err := extract.ParseExtraction([]byte("   ")); err == nil {
			t.Error("ParseExtraction() on empty input succeeded, want error")
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		if _, err := extract.ParseExtraction([]byte(`{"title": `)); err == nil {
			t.Error("ParseExtraction() on truncated JSON succeeded, want error")
		}
	})

	t.Run("rejects responses with no JSON object", func(t *testing.T) {
		if _, err := extract.ParseExtraction([]byte("I could not read the image.")); err == nil {
			t.Error("ParseExtraction() on prose succeeded, want error")
		}
	})
}
