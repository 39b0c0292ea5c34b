// internal/library/handler.go
package library

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"librarysim/internal/catalog"
	"librarysim/internal/importer"
	"librarysim/internal/membership"
)

// Default request body limits.
const (
	MaxBookBytes   = 64 << 10
	MaxImportBytes = 32 << 20
)

type Handler struct {
	service        Service
	logger         *slog.Logger
	maxBookBytes   int64
	maxImportBytes int64
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:        service,
		logger:         logger,
		maxBookBytes:   MaxBookBytes,
		maxImportBytes: MaxImportBytes,
	}
}

// WithImportLimit caps the size of import uploads.
func (h *Handler) WithImportLimit(n int64) *Handler {
	h.maxImportBytes = n
	return h
}

// Routes mounts the API on a chi router. A nil limiter disables rate
// limiting.
func (h *Handler) Routes(limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if limiter != nil {
		r.Use(rateLimit(limiter))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.HandleShowCatalog)
		r.Post("/", h.HandleAddBook)
		r.Get("/next", h.HandleShowAnyBook)
		r.Post("/import", h.HandleImport)
	})

	r.Route("/patrons", func(r chi.Router) {
		r.Get("/", h.HandlePatrons)
		r.Post("/", h.HandleRegisterPatron)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.HandlePatron)
			r.Get("/wishlist", h.HandleWishlist)
			r.Post("/borrow/{id}", h.HandleBorrow)
			r.Post("/confirm/{id}", h.HandleConfirm)
			r.Post("/return/{id}", h.HandleReturn)
		})
	})

	return r
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OutcomeResponse is the body returned by the circulation endpoints.
type OutcomeResponse struct {
	Outcome string `json:"outcome"`
	Patron  string `json:"patron"`
	BookID  int    `json:"book_id"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) HandleShowCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ShowCatalog(r.Context()))
}

func (h *Handler) HandleAddBook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBookBytes)

	var b catalog.Book
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, decodeStatus(err), err.Error())
		return
	}
	if b.Name == "" {
		writeError(w, http.StatusBadRequest, "book name is empty")
		return
	}

	res, err := h.service.AddBook(r.Context(), b)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"outcome": res.String(), "book": b})
}

func (h *Handler) HandleShowAnyBook(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ShowAnyBook(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"book": summary})
}

func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		writeError(w, http.StatusBadRequest, "missing format query parameter")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImportBytes)
	rep, err := h.service.Import(r.Context(), format, r.Body)
	if err != nil {
		h.logger.Warn("Import rejected", "format", format, "err", err)
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"outcome": "imported",
		"titles":  rep.Titles,
		"copies":  rep.Copies,
	})
}

func (h *Handler) HandlePatrons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Patrons(r.Context()))
}

func (h *Handler) HandleRegisterPatron(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBookBytes)

	var req struct {
		Kind string `json:"kind"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, decodeStatus(err), err.Error())
		return
	}

	p, err := h.service.RegisterPatron(r.Context(), req.Kind, req.Name)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) HandlePatron(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Patron(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleWishlist(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.Wishlist(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *Handler) HandleBorrow(w http.ResponseWriter, r *http.Request) {
	name, id, ok := pathArgs(w, r)
	if !ok {
		return
	}
	res, err := h.service.BorrowBook(r.Context(), name, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeOutcome(w, name, id, res.String(), res.Err())
}

func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	name, id, ok := pathArgs(w, r)
	if !ok {
		return
	}
	res, err := h.service.ConfirmCollection(r.Context(), name, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeOutcome(w, name, id, res.String(), res.Err())
}

func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	name, id, ok := pathArgs(w, r)
	if !ok {
		return
	}
	res, err := h.service.ReturnBook(r.Context(), name, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeOutcome(w, name, id, res.String(), res.Err())
}

func pathArgs(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "book id must be an integer")
		return "", 0, false
	}
	return chi.URLParam(r, "name"), id, true
}

func writeOutcome(w http.ResponseWriter, name string, id int, outcome string, failure error) {
	resp := OutcomeResponse{Outcome: outcome, Patron: name, BookID: id}
	status := http.StatusOK
	if failure != nil {
		resp.Error = failure.Error()
		status = statusOf(failure)
	}
	writeJSON(w, status, resp)
}

// fail writes facade errors. Anything unrecognised is a server fault.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "err", err)
	}
	writeError(w, status, err.Error())
}

func decodeStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, catalog.ErrUnavailable):
		return http.StatusAccepted
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, membership.ErrNoPatron),
		errors.Is(err, ErrNoWishlist),
		errors.Is(err, ErrEmptyCatalog):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrLimitReached),
		errors.Is(err, catalog.ErrDuplicateOrder),
		errors.Is(err, catalog.ErrNotBorrowed),
		errors.Is(err, catalog.ErrNotOrdered),
		errors.Is(err, catalog.ErrNothingHeld),
		errors.Is(err, membership.ErrPatronExists):
		return http.StatusConflict
	case errors.Is(err, membership.ErrUnknownRole),
		errors.Is(err, membership.ErrEmptyName),
		errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrMalformed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
