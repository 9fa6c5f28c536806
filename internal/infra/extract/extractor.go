package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	domain "github.com/brlegal/clausula-ai/internal/domain/analysis"
)

// Extractor dispatches on the declared media type. Unsupported types are
// rejected by the upload filter before a file ever reaches Extract, but the
// dispatch still fails closed.
type Extractor struct {
	OCRLanguage string
}

func New() *Extractor {
	return &Extractor{OCRLanguage: "por"}
}

func (e *Extractor) Extract(_ context.Context, path, mediaType string) (string, error) {
	switch {
	case mediaType == "application/pdf":
		return extractPDF(path)
	case strings.HasPrefix(mediaType, "image/"):
		// OCR failures degrade to blank text; the caller reports the
		// document as unreadable instead of failing the request hard.
		return extractImage(path, e.OCRLanguage), nil
	case mediaType == "text/plain":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", domain.Wrap(domain.ErrExtraction, "read plain text", err)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, mediaType)
	}
}
