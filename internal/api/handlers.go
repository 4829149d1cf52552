package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"qrmanager/internal/apperr"
	"qrmanager/internal/config"
	"qrmanager/internal/manager"
	"qrmanager/internal/metrics"
	"qrmanager/internal/token"
)

// Server holds the wired components behind the HTTP surface.
type Server struct {
	cfg     *config.Config
	tokens  *token.Service
	manager *manager.Manager
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewServer wires the HTTP surface. All collaborators are constructed by
// the caller; the server adds no state of its own.
func NewServer(cfg *config.Config, tokens *token.Service, mgr *manager.Manager, m *metrics.Metrics, log *zap.Logger) *Server {
	return &Server{cfg: cfg, tokens: tokens, manager: mgr, metrics: m, log: log}
}

// TokenResponse is the login success payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CreateQRRequest is the create payload. Omitted colors and size fall back
// to the configured defaults.
type CreateQRRequest struct {
	URL       string `json:"url"`
	FillColor string `json:"fill_color,omitempty"`
	BackColor string `json:"back_color,omitempty"`
	Size      int    `json:"size,omitempty"`
}

// CreateQRResponse is the create success payload.
type CreateQRResponse struct {
	Message   string `json:"message"`
	QRCodeURL string `json:"qr_code_url"`
}

// ListQRResponse is the list payload.
type ListQRResponse struct {
	QRCodes []string `json:"qr_codes"`
}

// loginHandler exchanges form credentials for a bearer token.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "malformed form body"))
		return
	}
	p, err := s.tokens.Authenticate(r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		s.metrics.AuthFailures.Inc()
		writeError(w, err)
		return
	}
	tok, err := s.tokens.Issue(p, s.cfg.TokenTTL)
	if err != nil {
		s.log.Error("could not issue token", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: tok, TokenType: "bearer"})
}

// createQRHandler creates a new QR code artifact for the request URL.
func (s *Server) createQRHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateQRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "malformed json body"))
		return
	}
	locator, err := s.manager.Create(req.URL, req.FillColor, req.BackColor, req.Size)
	if err != nil {
		s.logFailure(r, err)
		writeError(w, err)
		return
	}
	s.metrics.ArtifactsCreated.Inc()
	writeJSON(w, http.StatusCreated, CreateQRResponse{
		Message:   "QR code created successfully",
		QRCodeURL: locator,
	})
}

// listQRHandler returns the locators of all managed artifacts.
func (s *Server) listQRHandler(w http.ResponseWriter, r *http.Request) {
	locators, err := s.manager.List()
	if err != nil {
		s.logFailure(r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListQRResponse{QRCodes: locators})
}

// deleteQRHandler removes an artifact by the filename from its locator.
func (s *Server) deleteQRHandler(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]
	if err := s.manager.Delete(filename); err != nil {
		s.logFailure(r, err)
		writeError(w, err)
		return
	}
	s.metrics.ArtifactsDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// downloadHandler serves the stored PNG a locator points at.
func (s *Server) downloadHandler(w http.ResponseWriter, r *http.Request) {
	path, err := s.manager.FilePath(mux.Vars(r)["filename"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

// healthHandler is a plain liveness probe.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "OK")
}

// logFailure records a failed operation; store faults get full context at
// error level, client errors stay at warn.
func (s *Server) logFailure(r *http.Request, err error) {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
	if p, ok := principalFrom(r.Context()); ok {
		fields = append(fields, zap.String("subject", p.Username))
	}
	if apperr.Status(err) >= http.StatusInternalServerError {
		s.log.Error("operation failed", fields...)
		return
	}
	s.log.Warn("request rejected", fields...)
}
