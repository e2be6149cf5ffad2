package cvault

import "certivault/internal/model"

// Renderer turns certificate records into a paginated document blob,
// one certificate per page.
type Renderer interface {
	Render(certs []*model.Certificate) ([]byte, error)
}
