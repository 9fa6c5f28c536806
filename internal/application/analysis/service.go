package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/brlegal/clausula-ai/internal/application"
	"github.com/brlegal/clausula-ai/internal/domain/ai"
	domain "github.com/brlegal/clausula-ai/internal/domain/analysis"
	"github.com/brlegal/clausula-ai/internal/domain/payment"
)

// Recommendation is the static advisory attached to every analysis.
const Recommendation = "Recomendamos revisar as cláusulas destacadas com um advogado de sua confiança antes de assinar o contrato."

// Service implements the analysis-and-entitlement use cases.
// It is safe for concurrent use; all cross-request state lives in the repo.
type Service struct {
	Extractor  domain.Extractor
	Analyzer   ai.Analyzer
	Classifier ai.Classifier
	Repo       domain.Repository
	Gateway    payment.Gateway
	Clock      application.Clock
	Logger     *slog.Logger
}

// SubmitCommand carries one uploaded document through the pipeline.
// FilePath points at a temporary file owned by Submit from the moment it
// is called.
type SubmitCommand struct {
	FilePath  string
	MediaType string
	UID       string
}

type SubmitResult struct {
	ClauseText string       `json:"clausulas"`
	Token      domain.Token `json:"token"`
}

// Submit runs extract -> analyze -> classify (best effort) -> persist and
// returns the new token. The temporary upload is removed on every exit
// path, success or failure.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	defer os.Remove(cmd.FilePath)

	text, err := s.Extractor.Extract(ctx, cmd.FilePath, cmd.MediaType)
	if err != nil {
		return SubmitResult{}, err
	}
	if strings.TrimSpace(text) == "" {
		return SubmitResult{}, fmt.Errorf("%w: documento ilegível ou sem texto", domain.ErrValidation)
	}

	clauseText, err := s.Analyzer.Analyze(ctx, text, cmd.UID)
	if err != nil {
		return SubmitResult{}, err
	}

	now := s.Clock.Now()
	rec := &domain.Analysis{
		Token:          NewToken(now),
		UID:            cmd.UID,
		CreatedAt:      now,
		ClauseText:     clauseText,
		SafeClauses:    []domain.Clause{},
		RiskyClauses:   []domain.Clause{},
		Recommendation: Recommendation,
	}

	// Classification is best effort: a failure here must not block token
	// issuance, so the record keeps its empty lists.
	if buckets, cerr := s.Classifier.Classify(ctx, clauseText); cerr != nil {
		if s.Logger != nil {
			s.Logger.Warn("clause classification failed", "uid", cmd.UID, "err", cerr)
		}
	} else {
		rec.SafeClauses = buckets.Safe
		rec.RiskyClauses = buckets.Risky
	}

	if err := s.Repo.Save(ctx, rec); err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{ClauseText: clauseText, Token: rec.Token}, nil
}

// Classify partitions free-text clause analysis into safe/risky buckets.
// Unlike the best-effort call inside Submit, a parse failure here is
// surfaced to the caller.
func (s *Service) Classify(ctx context.Context, clauseText string) (ai.Buckets, error) {
	if strings.TrimSpace(clauseText) == "" {
		return ai.Buckets{}, fmt.Errorf("%w: clausulas é obrigatório", domain.ErrValidation)
	}
	return s.Classifier.Classify(ctx, clauseText)
}

// CreateCheckout opens a checkout session for the token and records the
// session id on the analysis. Repeated calls overwrite the previous id.
func (s *Service) CreateCheckout(ctx context.Context, token domain.Token) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: token é obrigatório", domain.ErrValidation)
	}
	sess, err := s.Gateway.CreateCheckoutSession(ctx, string(token))
	if err != nil {
		return "", err
	}
	if err := s.Repo.Update(ctx, token, map[string]any{"sessionId": sess.ID}); err != nil {
		return "", err
	}
	return sess.RedirectURL, nil
}

// CheckRelease confirms payment against the gateway and records it.
// It is idempotent: once paid is recorded, further calls re-confirm without
// another gateway round trip.
func (s *Service) CheckRelease(ctx context.Context, token domain.Token) (bool, error) {
	if token == "" {
		return false, fmt.Errorf("%w: token é obrigatório", domain.ErrValidation)
	}
	rec, err := s.Repo.Get(ctx, token)
	if err != nil {
		return false, err
	}
	if rec.Paid {
		return true, nil
	}
	if rec.SessionID == "" {
		return false, fmt.Errorf("%w: %s", domain.ErrPaymentState, token)
	}
	paid, err := s.Gateway.GetSessionStatus(ctx, rec.SessionID)
	if err != nil {
		return false, err
	}
	if paid {
		if err := s.Repo.Update(ctx, token, map[string]any{"paid": true}); err != nil {
			return false, err
		}
	}
	return paid, nil
}

// GetByToken returns the full record, gated on the paid flag.
func (s *Service) GetByToken(ctx context.Context, token domain.Token) (*domain.Analysis, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token é obrigatório", domain.ErrValidation)
	}
	rec, err := s.Repo.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !rec.Paid {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotPaid, token)
	}
	return rec, nil
}
