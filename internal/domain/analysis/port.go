package analysis

import "context"

// Repository persists one document per token. The document store is the
// sole source of truth for cross-request state.
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, token Token) (*Analysis, error)
	Update(ctx context.Context, token Token, fields map[string]any) error
}

// Extractor turns an uploaded file into raw text based on the declared
// media type. Blank output is a caller-level concern, not an error here.
type Extractor interface {
	Extract(ctx context.Context, path, mediaType string) (string, error)
}
