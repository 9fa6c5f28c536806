package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brlegal/clausula-ai/internal/domain/ai"
	domain "github.com/brlegal/clausula-ai/internal/domain/analysis"
	"github.com/brlegal/clausula-ai/internal/domain/payment"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

type fakeAnalyzer struct {
	out   string
	err   error
	calls int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.out, f.err
}

type fakeClassifier struct {
	buckets ai.Buckets
	err     error
}

func (f fakeClassifier) Classify(_ context.Context, _ string) (ai.Buckets, error) {
	return f.buckets, f.err
}

type memRepo struct {
	recs map[domain.Token]*domain.Analysis
}

func newMemRepo() *memRepo {
	return &memRepo{recs: make(map[domain.Token]*domain.Analysis)}
}

func (m *memRepo) Save(_ context.Context, a *domain.Analysis) error {
	cp := *a
	m.recs[a.Token] = &cp
	return nil
}

func (m *memRepo) Get(_ context.Context, token domain.Token) (*domain.Analysis, error) {
	rec, ok := m.recs[token]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, token)
	}
	cp := *rec
	return &cp, nil
}

func (m *memRepo) Update(_ context.Context, token domain.Token, fields map[string]any) error {
	rec, ok := m.recs[token]
	if !ok {
		return nil // last-write-wins semantics, no upsert
	}
	for k, v := range fields {
		switch k {
		case "sessionId":
			rec.SessionID = v.(string)
		case "paid":
			rec.Paid = v.(bool)
		}
	}
	return nil
}

type fakeGateway struct {
	session     payment.CheckoutSession
	createErr   error
	paid        bool
	statusErr   error
	statusCalls int
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, _ string) (payment.CheckoutSession, error) {
	return f.session, f.createErr
}

func (f *fakeGateway) GetSessionStatus(_ context.Context, _ string) (bool, error) {
	f.statusCalls++
	return f.paid, f.statusErr
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(extractor domain.Extractor, analyzer ai.Analyzer, classifier ai.Classifier, repo domain.Repository, gw payment.Gateway) *Service {
	return &Service{
		Extractor:  extractor,
		Analyzer:   analyzer,
		Classifier: classifier,
		Repo:       repo,
		Gateway:    gw,
		Clock:      fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Logger:     discardLogger(),
	}
}

func tempUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contrato.txt")
	if err := os.WriteFile(path, []byte("Cláusula 1: rescisão unilateral pelo contratante."), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestSubmitHappyPath(t *testing.T) {
	repo := newMemRepo()
	svc := newService(
		fakeExtractor{text: "texto do contrato"},
		&fakeAnalyzer{out: "- Cláusula de rescisão unilateral: risco alto."},
		fakeClassifier{buckets: ai.Buckets{
			Safe:  []domain.Clause{{Title: "Prazo", Summary: "Prazo padrão."}},
			Risky: []domain.Clause{{Title: "Rescisão", Summary: "Permite rescisão unilateral."}},
		}},
		repo, &fakeGateway{},
	)

	path := tempUpload(t)
	res, err := svc.Submit(context.Background(), SubmitCommand{FilePath: path, MediaType: "text/plain", UID: "u1"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Token == "" || res.ClauseText == "" {
		t.Fatalf("incomplete result: %+v", res)
	}

	rec, err := repo.Get(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if rec.Paid {
		t.Fatal("new record must start unpaid")
	}
	if len(rec.RiskyClauses) != 1 || rec.RiskyClauses[0].Title != "Rescisão" {
		t.Fatalf("classification not persisted: %+v", rec.RiskyClauses)
	}
	if rec.Recommendation == "" {
		t.Fatal("recommendation must be set")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("temporary upload must be removed after success")
	}
}

func TestSubmitRemovesTempFileOnAnalyzerFailure(t *testing.T) {
	svc := newService(
		fakeExtractor{text: "texto"},
		&fakeAnalyzer{err: fmt.Errorf("%w: boom", domain.ErrAnalysis)},
		fakeClassifier{},
		newMemRepo(), &fakeGateway{},
	)

	path := tempUpload(t)
	_, err := svc.Submit(context.Background(), SubmitCommand{FilePath: path, MediaType: "text/plain", UID: "u1"})
	if !errors.Is(err, domain.ErrAnalysis) {
		t.Fatalf("expected ErrAnalysis, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("temporary upload must be removed on failure too")
	}
}

func TestSubmitRemovesTempFileOnExtractionFailure(t *testing.T) {
	svc := newService(
		fakeExtractor{err: fmt.Errorf("%w: corrupt", domain.ErrExtraction)},
		&fakeAnalyzer{},
		fakeClassifier{},
		newMemRepo(), &fakeGateway{},
	)

	path := tempUpload(t)
	_, err := svc.Submit(context.Background(), SubmitCommand{FilePath: path, MediaType: "application/pdf", UID: "u1"})
	if !errors.Is(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("temporary upload must be removed on extraction failure")
	}
}

func TestSubmitBlankTextIsValidationError(t *testing.T) {
	analyzer := &fakeAnalyzer{out: "nunca chamado"}
	svc := newService(fakeExtractor{text: "   \n\t"}, analyzer, fakeClassifier{}, newMemRepo(), &fakeGateway{})

	_, err := svc.Submit(context.Background(), SubmitCommand{FilePath: tempUpload(t), MediaType: "image/png", UID: "u1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if analyzer.calls != 0 {
		t.Fatal("blank text must not reach the model")
	}
}

func TestSubmitClassificationIsSoftFailure(t *testing.T) {
	repo := newMemRepo()
	svc := newService(
		fakeExtractor{text: "texto"},
		&fakeAnalyzer{out: "- risco"},
		fakeClassifier{err: fmt.Errorf("%w: saída ilegível", domain.ErrClassification)},
		repo, &fakeGateway{},
	)

	res, err := svc.Submit(context.Background(), SubmitCommand{FilePath: tempUpload(t), MediaType: "text/plain", UID: "u1"})
	if err != nil {
		t.Fatalf("classification failure must not block token issuance: %v", err)
	}

	rec, err := repo.Get(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if len(rec.SafeClauses) != 0 || len(rec.RiskyClauses) != 0 {
		t.Fatalf("expected empty clause lists, got %+v / %+v", rec.SafeClauses, rec.RiskyClauses)
	}
}

func TestClassifyRequiresInput(t *testing.T) {
	svc := newService(fakeExtractor{}, &fakeAnalyzer{}, fakeClassifier{}, newMemRepo(), &fakeGateway{})
	if _, err := svc.Classify(context.Background(), "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateCheckoutStoresSessionID(t *testing.T) {
	repo := newMemRepo()
	tok := domain.Token("abc123")
	repo.recs[tok] = &domain.Analysis{Token: tok}

	gw := &fakeGateway{session: payment.CheckoutSession{ID: "cs_1", RedirectURL: "https://pay.example/cs_1"}}
	svc := newService(fakeExtractor{}, &fakeAnalyzer{}, fakeClassifier{}, repo, gw)

	url, err := svc.CreateCheckout(context.Background(), tok)
	if err != nil {
		t.Fatalf("CreateCheckout() error = %v", err)
	}
	if url != "https://pay.example/cs_1" {
		t.Fatalf("unexpected url %q", url)
	}
	if repo.recs[tok].SessionID != "cs_1" {
		t.Fatalf("sessionId not stored: %+v", repo.recs[tok])
	}

	// a retry overwrites the previous session id
	gw.session = payment.CheckoutSession{ID: "cs_2", RedirectURL: "https://pay.example/cs_2"}
	if _, err := svc.CreateCheckout(context.Background(), tok); err != nil {
		t.Fatalf("CreateCheckout() retry error = %v", err)
	}
	if repo.recs[tok].SessionID != "cs_2" {
		t.Fatalf("retry must overwrite sessionId, got %q", repo.recs[tok].SessionID)
	}
}

func TestCheckReleaseRequiresSession(t *testing.T) {
	repo := newMemRepo()
	tok := domain.Token("semselecao")
	repo.recs[tok] = &domain.Analysis{Token: tok}

	svc := newService(fakeExtractor{}, &fakeAnalyzer{}, fakeClassifier{}, repo, &fakeGateway{})
	if _, err := svc.CheckRelease(context.Background(), tok); !errors.Is(err, domain.ErrPaymentState) {
		t.Fatalf("expected ErrPaymentState, got %v", err)
	}
}

func TestCheckReleaseMarksPaidAndIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	tok := domain.Token("pago1")
	repo.recs[tok] = &domain.Analysis{Token: tok, SessionID: "cs_1"}

	gw := &fakeGateway{paid: true}
	svc := newService(fakeExtractor{}, &fakeAnalyzer{}, fakeClassifier{}, repo, gw)

	paid, err := svc.CheckRelease(context.Background(), tok)
	if err != nil || !paid {
		t.Fatalf("first CheckRelease() = %v, %v", paid, err)
	}
	if !repo.recs[tok].Paid {
		t.Fatal("paid flag not recorded")
	}

	paid, err = svc.CheckRelease(context.Background(), tok)
	if err != nil || !paid {
		t.Fatalf("second CheckRelease() = %v, %v", paid, err)
	}
	if gw.statusCalls != 1 {
		t.Fatalf("paid token must not be re-polled, gateway called %d times", gw.statusCalls)
	}
}

func TestCheckReleaseUnpaidSession(t *testing.T) {
	repo := newMemRepo()
	tok := domain.Token("aberto1")
	repo.recs[tok] = &domain.Analysis{Token: tok, SessionID: "cs_1"}

	svc := newService(fakeExtractor{}, &fakeAnalyzer{}, fakeClassifier{}, repo, &fakeGateway{paid: false})
	paid, err := svc.CheckRelease(context.Background(), tok)
	if err != nil {
		t.Fatalf("CheckRelease() error = %v", err)
	}
	if paid || repo.recs[tok].Paid {
		t.Fatal("unpaid session must stay unpaid")
	}
}

func TestGetByTokenGating(t *testing.T) {
	repo := newMemRepo()
	tok := domain.Token("fechado1")
	repo.recs[tok] = &domain.Analysis{Token: tok, ClauseText: "- risco"}

	svc := newService(fakeExtractor{}, &fakeAnalyzer{}, fakeClassifier{}, repo, &fakeGateway{})

	if _, err := svc.GetByToken(context.Background(), tok); !errors.Is(err, domain.ErrNotPaid) {
		t.Fatalf("expected ErrNotPaid before payment, got %v", err)
	}
	if _, err := svc.GetByToken(context.Background(), "inexistente"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	repo.recs[tok].Paid = true
	rec, err := svc.GetByToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("GetByToken() after payment error = %v", err)
	}
	if rec.ClauseText != "- risco" {
		t.Fatalf("unexpected record %+v", rec)
	}
}
