package cvault

import "context"

// Extraction holds the structured fields returned by the extraction service
// for a captured certificate image.
type Extraction struct {
	CleanedImage []byte // perspective-corrected image, if the service returns one
	Title        string
	StudentName  string
	Issuer       string
	Date         string // ISO date when the service could read one
	Category     string
	Subject      string
	Summary      string
	Tags         []string
}

// Extractor calls the cloud vision service that cleans up a certificate
// image and extracts its metadata. Failure must never block record
// creation: callers degrade to manual entry.
type Extractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*Extraction, error)
}
