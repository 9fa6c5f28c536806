package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/brlegal/clausula-ai/internal/application/analysis"
	domain "github.com/brlegal/clausula-ai/internal/domain/analysis"
	"github.com/brlegal/clausula-ai/internal/middleware"
)

// Upload ceiling enforced before any extraction work happens.
const maxUploadBytes = 10 << 20

type Router struct {
	svc *appanalysis.Service
}

func NewRouter(svc *appanalysis.Service, allowedOrigins []string, health http.HandlerFunc) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	if svc.Logger != nil {
		mux.Use(middleware.Logging(svc.Logger))
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	if health != nil {
		mux.Get("/health", health)
	}

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/analisar-contrato", r.wrap(r.handleSubmit))
		rt.Post("/resumir-clausulas", r.wrap(r.handleClassify))
		rt.Post("/create-checkout-session", r.wrap(r.handleCreateCheckout))
		rt.Get("/analise-liberada", r.wrap(r.handleCheckRelease))
		rt.Get("/analise-por-token", r.wrap(r.handleGetByToken))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps the error taxonomy to a status plus a JSON {"error": ...} body.
// No raw stack trace ever crosses to the client.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			writeError(w, statusFor(err), err)
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnsupportedMedia),
		errors.Is(err, domain.ErrPaymentState):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotPaid):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		// extraction, analysis, classification, gateway and store faults
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// POST /api/analisar-contrato
// multipart form: file (<=10MB, pdf|image/*|text/plain) + uid
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return fmt.Errorf("%w: formulário multipart inválido: %v", domain.ErrValidation, err)
	}
	defer func() {
		if req.MultipartForm != nil {
			_ = req.MultipartForm.RemoveAll()
		}
	}()

	uid := strings.TrimSpace(req.FormValue("uid"))
	if uid == "" {
		return fmt.Errorf("%w: uid é obrigatório", domain.ErrValidation)
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: file é obrigatório", domain.ErrValidation)
	}
	defer file.Close()

	mediaType := header.Header.Get("Content-Type")
	if mt, _, perr := mime.ParseMediaType(mediaType); perr == nil {
		mediaType = mt
	}
	if !allowedMediaType(mediaType) {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedMedia, mediaType)
	}

	tmpPath, err := spoolUpload(file, header.Filename)
	if err != nil {
		return err
	}

	// Submit owns the temporary file from here and removes it on every
	// exit path.
	res, err := r.svc.Submit(req.Context(), appanalysis.SubmitCommand{
		FilePath:  tmpPath,
		MediaType: mediaType,
		UID:       uid,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// spoolUpload writes the multipart part to a scoped temporary file.
func spoolUpload(file io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "contrato-*"+filepath.Ext(filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func allowedMediaType(mt string) bool {
	switch {
	case mt == "application/pdf", mt == "text/plain":
		return true
	case strings.HasPrefix(mt, "image/"):
		return true
	}
	return false
}

// POST /api/resumir-clausulas
// Body: {"clausulas": "<free-text analysis>"}
func (r *Router) handleClassify(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Clausulas string `json:"clausulas"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: corpo JSON inválido", domain.ErrValidation)
	}

	buckets, err := r.svc.Classify(req.Context(), body.Clausulas)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, buckets)
}

// POST /api/create-checkout-session
// Body: {"token": "<token>"}
func (r *Router) handleCreateCheckout(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: corpo JSON inválido", domain.ErrValidation)
	}

	url, err := r.svc.CreateCheckout(req.Context(), domain.Token(body.Token))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// GET /api/analise-liberada?token=
func (r *Router) handleCheckRelease(w http.ResponseWriter, req *http.Request) error {
	token := req.URL.Query().Get("token")

	paid, err := r.svc.CheckRelease(req.Context(), domain.Token(token))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]bool{"liberado": paid})
}

// GET /api/analise-por-token?token=
func (r *Router) handleGetByToken(w http.ResponseWriter, req *http.Request) error {
	token := req.URL.Query().Get("token")

	rec, err := r.svc.GetByToken(req.Context(), domain.Token(token))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"analise": rec})
}
