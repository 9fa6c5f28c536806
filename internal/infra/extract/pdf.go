package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	domain "github.com/brlegal/clausula-ai/internal/domain/analysis"
)

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, "open pdf", err)
	}
	defer f.Close()

	content, err := r.GetPlainText()
	if err != nil {
		return "", domain.Wrap(domain.ErrExtraction, "extract pdf text", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", domain.Wrap(domain.ErrExtraction, "read pdf text", err)
	}
	if strings.TrimSpace(buf.String()) == "" {
		return "", fmt.Errorf("%w: pdf sem texto extraível", domain.ErrExtraction)
	}
	return buf.String(), nil
}
