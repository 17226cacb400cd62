package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"procwatch/internal/config"
	"procwatch/internal/logging"
	"procwatch/internal/notify"
	"procwatch/internal/report"
	"procwatch/internal/store"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

type tagRequest struct {
	TagName string `json:"tag_name"`
}

type folderRequest struct {
	TagName       string `json:"tag_name"`
	FolderPath    string `json:"folder_path"`
	CheckUC4File  bool   `json:"check_uc4_file"`
	ScheduledTime string `json:"scheduled_time"`
	CheckQuery    string `json:"check_query"`
}

type recipientRequest struct {
	Email string `json:"email"`
}

type notifyRequest struct {
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	srv := &apiServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}
	if bind == "" {
		return srv, nil
	}

	token := cfg.Paths.APIToken
	mux := http.NewServeMux()
	route := func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, srv.withAuth(token, handler))
	}

	route("/api/status", srv.handleStatus)
	route("/api/reports", srv.handleReports)
	route("/api/reports/failed", srv.handleFailedReports)
	route("/api/tags", srv.handleTags)
	route("/api/tags/", srv.handleTagItem)
	route("/api/folders", srv.handleFolders)
	route("/api/folders/", srv.handleFolderItem)
	route("/api/recipients", srv.handleRecipients)
	route("/api/recipients/", srv.handleRecipientItem)
	route("/api/events", srv.handleEvents)
	route("/api/notify", srv.handleNotify)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// withAuth gates a handler behind the configured bearer token. An empty
// token leaves the API open.
func (s *apiServer) withAuth(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || presented != token {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *apiServer) start(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rows, err := s.daemon.aggregator.BuildReports(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]report.Row{"reports": rows})
}

func (s *apiServer) handleFailedReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rows, err := s.daemon.aggregator.Failed(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]report.Row{"reports": rows})
}

func (s *apiServer) handleTags(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tags, err := s.daemon.store.ListTags(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
	case http.MethodPost:
		var req tagRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.daemon.store.AddTag(r.Context(), req.TagName); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusCreated, map[string]string{"tag_name": strings.TrimSpace(req.TagName)})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleTagItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	tag := strings.TrimPrefix(r.URL.Path, "/api/tags/")
	if tag == "" || strings.Contains(tag, "/") {
		s.writeError(w, http.StatusNotFound, "tag not found")
		return
	}
	if err := s.daemon.store.RemoveTag(r.Context(), tag); err != nil {
		if errors.Is(err, store.ErrUnknownTag) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"removed": tag})
}

func (s *apiServer) handleFolders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		processes, err := s.daemon.store.ListMonitoredProcesses(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string][]store.Process{"folders": processes})
	case http.MethodPost:
		var req folderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		err := s.daemon.store.SetFolderConfig(r.Context(),
			req.TagName, req.FolderPath, req.CheckUC4File, req.ScheduledTime, req.CheckQuery)
		switch {
		case errors.Is(err, store.ErrUnknownTag):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, store.ErrConfigPairing):
			s.writeError(w, http.StatusBadRequest, err.Error())
		case err != nil:
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeJSON(w, http.StatusOK, map[string]string{"tag_name": strings.TrimSpace(req.TagName)})
		}
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleFolderItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	tag := strings.TrimPrefix(r.URL.Path, "/api/folders/")
	if tag == "" || strings.Contains(tag, "/") {
		s.writeError(w, http.StatusNotFound, "folder config not found")
		return
	}
	if err := s.daemon.store.ClearFolderConfig(r.Context(), tag); err != nil {
		if errors.Is(err, store.ErrUnknownTag) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"cleared": tag})
}

func (s *apiServer) handleRecipients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		recipients, err := s.daemon.store.ListRecipients(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string][]string{"recipients": recipients})
	case http.MethodPost:
		var req recipientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := s.daemon.store.AddRecipient(r.Context(), req.Email); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeJSON(w, http.StatusCreated, map[string]string{"email": strings.TrimSpace(req.Email)})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleRecipientItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	email := strings.TrimPrefix(r.URL.Path, "/api/recipients/")
	if email == "" || strings.Contains(email, "/") {
		s.writeError(w, http.StatusNotFound, "recipient not found")
		return
	}
	if err := s.daemon.store.RemoveRecipient(r.Context(), email); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"removed": email})
}

func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))
	if tag == "" {
		s.writeError(w, http.StatusBadRequest, "tag query parameter is required")
		return
	}
	events, err := s.daemon.store.FatalEvents(r.Context(), tag)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]store.FatalEvent{"events": events})
}

func (s *apiServer) handleNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	recipients := req.Recipients
	if len(recipients) == 0 {
		stored, err := s.daemon.store.ListRecipients(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		recipients = stored
	}
	if len(recipients) == 0 {
		s.writeError(w, http.StatusBadRequest, "no recipients configured")
		return
	}

	failed, err := s.daemon.aggregator.Failed(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.daemon.notifier.SendFailureReport(r.Context(), recipients, message, failed); err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"sent":       true,
		"recipients": recipients,
		"subject":    notify.Subject,
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
