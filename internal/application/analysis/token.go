package analysis

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/brlegal/clausula-ai/internal/domain/analysis"
)

// NewToken returns an opaque identifier: a random uuid in hex concatenated
// with a base-36 timestamp for uniqueness. It is deliberately not a secret;
// the paid flag on the stored record gates access, not the token itself.
func NewToken(now time.Time) domain.Token {
	random := strings.ReplaceAll(uuid.New().String(), "-", "")
	return domain.Token(random + strconv.FormatInt(now.UnixNano(), 36))
}
