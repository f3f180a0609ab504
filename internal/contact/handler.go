// Package contact serves the site contact form endpoint and relays
// submissions to MailChannels.
package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-site/internal/logging"
	"github.com/goliatone/go-site/internal/templates"
	"github.com/goliatone/go-site/pkg/interfaces"
)

const (
	serviceName     = "contact-worker"
	defaultSiteName = "Website"
	subjectPrefix   = "Website contact: "
)

// Config describes the mail routing for submissions.
type Config struct {
	To            string
	From          string
	SiteName      string
	Endpoint      string
	Timeout       time.Duration
	AllowedOrigin string
}

// Validate ensures the handler can address outbound mail.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.To, validation.Required, is.EmailFormat),
		validation.Field(&c.From, validation.Required, is.EmailFormat),
		validation.Field(&c.Endpoint, is.URL),
	)
}

// Option customises a Handler.
type Option func(*Handler)

// WithMailer overrides the MailChannels client.
func WithMailer(mailer Mailer) Option {
	return func(h *Handler) {
		if mailer != nil {
			h.mailer = mailer
		}
	}
}

// WithRenderer overrides the renderer used for HTML bodies.
func WithRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(h *Handler) {
		if renderer != nil {
			h.renderer = renderer
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// Handler serves the contact and health endpoints.
type Handler struct {
	cfg      Config
	mailer   Mailer
	renderer interfaces.TemplateRenderer
	logger   interfaces.Logger
	now      func() time.Time
}

// NewHandler validates cfg and builds a handler.
func NewHandler(cfg Config, opts ...Option) (*Handler, error) {
	cfg.To = strings.TrimSpace(cfg.To)
	cfg.From = strings.TrimSpace(cfg.From)
	if strings.TrimSpace(cfg.SiteName) == "" {
		cfg.SiteName = defaultSiteName
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid contact configuration")
	}

	h := &Handler{
		cfg:    cfg,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	if h.mailer == nil {
		h.mailer = NewMailChannelsClient(cfg.Endpoint, cfg.Timeout, nil)
	}
	if h.renderer == nil {
		renderer, err := templates.New("")
		if err != nil {
			return nil, err
		}
		h.renderer = renderer
	}
	return h, nil
}

// RegisterRoutes registers the contact routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("POST /api/contact", h.handleContact)
	mux.HandleFunc("OPTIONS /api/contact", h.handlePreflight)
	mux.HandleFunc("/api/contact", h.handleMethodNotAllowed)
}

type response struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	TS      string `json:"ts"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		OK:      true,
		Service: serviceName,
		TS:      h.now().UTC().Format(isoMillis),
	})
}

func (h *Handler) handlePreflight(w http.ResponseWriter, r *http.Request) {
	h.cors(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.cors(w, r)
	respondJSON(w, http.StatusMethodNotAllowed, response{Error: "Method Not Allowed"})
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	h.cors(w, r)

	submissionID := uuid.NewString()
	logger := logging.WithRequestID(h.logger, submissionID)

	submission, err := decodeSubmission(r)
	if err != nil {
		logger.Debug("contact.decode.failed", "error", err)
		h.respondError(w, err)
		return
	}

	if submission.IsSpam() {
		logger.Info("contact.honeypot.triggered")
		respondJSON(w, http.StatusOK, response{OK: true})
		return
	}

	if err := submission.Validate(); err != nil {
		logger.Debug("contact.validation.failed", "error", err)
		h.respondError(w, err)
		return
	}

	meta := metaFromRequest(r, h.now())
	html, err := htmlBody(h.renderer, submission, meta)
	if err != nil {
		logger.Error("contact.render.failed", "error", err)
		h.respondError(w, err)
		return
	}

	req := MailRequest{
		Personalizations: []Personalization{{To: []Address{{Email: h.cfg.To}}}},
		From:             Address{Email: h.cfg.From, Name: h.cfg.SiteName},
		ReplyTo:          Address{Email: submission.Email, Name: submission.FullName()},
		Subject:          subjectPrefix + submission.FullName(),
		Content: []Content{
			{Type: "text/plain", Value: textBody(submission, meta)},
			{Type: "text/html", Value: html},
		},
	}

	if err := h.mailer.Send(r.Context(), req); err != nil {
		logger.Error("contact.send.failed", "error", err)
		h.respondError(w, err)
		return
	}

	logger.Info("contact.send.success", "reply_to", submission.Email)
	respondJSON(w, http.StatusOK, response{OK: true})
}

// respondError maps categorised errors onto JSON responses. Validation and
// bad input become 400, upstream failures 502, anything else 500.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var typed *goerrors.Error
	if !errors.As(err, &typed) {
		respondJSON(w, http.StatusInternalServerError, response{Error: "Internal server error"})
		return
	}

	resp := response{Error: typed.Message}
	switch typed.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		respondJSON(w, http.StatusBadRequest, resp)
	case goerrors.CategoryExternal:
		if detail, ok := typed.Metadata["detail"].(string); ok {
			resp.Detail = detail
		}
		respondJSON(w, http.StatusBadGateway, resp)
	default:
		respondJSON(w, http.StatusInternalServerError, response{Error: "Internal server error"})
	}
}

func (h *Handler) cors(w http.ResponseWriter, r *http.Request) {
	origin := h.cfg.AllowedOrigin
	if origin == "" {
		origin = r.Header.Get("Origin")
	}
	if origin == "" {
		origin = "*"
	}
	header := w.Header()
	header.Set("Access-Control-Allow-Origin", origin)
	header.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	header.Set("Access-Control-Allow-Headers", "content-type")
	header.Set("Vary", "origin")
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
