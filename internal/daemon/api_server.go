package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"frame/internal/analytics"
	"frame/internal/api"
	"frame/internal/config"
	"frame/internal/layout"
	"frame/internal/logging"
	"frame/internal/rows"
	"frame/internal/services"
	"frame/internal/session"
)

const gapAnalysisError = "Failed to load gap analysis"

type apiServer struct {
	bind    string
	gapPath string
	logger  *slog.Logger
	daemon  *Daemon
	now     func() time.Time

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, errors.New("api server requires config and daemon")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api server requires paths.api_bind")
	}

	srv := &apiServer{
		bind:    bind,
		gapPath: cfg.Paths.GapAnalysisPath,
		logger:  logger,
		daemon:  d,
		now:     time.Now,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/rows", authMiddleware(token, srv.handleRows))
	mux.HandleFunc("/api/rows/{id}/submit", authMiddleware(token, srv.handleSubmit))
	mux.HandleFunc("/api/rows/{id}/drag", authMiddleware(token, srv.handleRowDrag))
	mux.HandleFunc("/api/columns/{name}/drag", authMiddleware(token, srv.handleColumnDrag))
	mux.HandleFunc("/api/queue", authMiddleware(token, srv.handleQueue))
	mux.HandleFunc("/api/usage", authMiddleware(token, srv.handleUsage))
	mux.HandleFunc("/api/gap-analysis", authMiddleware(token, srv.handleGapAnalysis))
	mux.HandleFunc("/api/notifications/test", authMiddleware(token, srv.handleTestNotification))
	mux.HandleFunc("/api/events", authMiddleware(token, srv.handleEvents))

	srv.server = &http.Server{
		Handler:           withRequestID(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// withRequestID stamps a correlation id on the request context.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		StateDBPath:  status.StateDBPath,
		LockFilePath: status.LockFilePath,
		RowCount:     status.RowCount,
		RowCap:       status.RowCap,
		Subscribers:  status.Subscribers,
		Queue:        api.CountersFrom(status.Queue),
	})
}

func (s *apiServer) handleRows(w http.ResponseWriter, r *http.Request) {
	sess := s.daemon.Session()
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.RowsResponse{
			Rows:    sess.Rows().Snapshot(),
			Columns: api.ColumnWidths(sess.Columns().Snapshot()),
		})
	case http.MethodPost:
		s.writeJSON(w, http.StatusCreated, api.RowResponse{Row: sess.AddRow()})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rowID := r.PathValue("id")
	var req api.SubmitRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess := s.daemon.Session()
	ctx := services.WithRowID(r.Context(), rowID)

	if !req.Wait {
		if err := sess.SubmitAsync(rowID, req.URL); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusAccepted, api.SubmitResponse{RowID: rowID, Accepted: true})
		return
	}

	result, err := sess.Submit(context.WithoutCancel(ctx), rowID, req.URL)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SubmitResponse{
		RowID:    result.RowID,
		Accepted: result.Err == nil,
		VideoID:  result.VideoID,
		JobID:    result.JobID,
		Message:  result.Message,
	})
}

func (s *apiServer) handleRowDrag(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.DragRequest
	if !s.decode(w, r, &req) {
		return
	}
	resizer := s.daemon.Session().RowResizer()
	switch req.Phase {
	case api.DragBegin:
		if err := resizer.Begin(r.PathValue("id"), req.Position); err != nil {
			s.writeServiceError(w, err)
			return
		}
		row, _ := s.daemon.Session().Rows().Get(r.PathValue("id"))
		s.writeJSON(w, http.StatusOK, api.DragResponse{Height: row.Height})
	case api.DragMove:
		if dragging, ok := resizer.Active(); ok && dragging != r.PathValue("id") {
			s.writeError(w, http.StatusConflict, "another row is being resized")
			return
		}
		height, err := resizer.Move(req.Position)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.DragResponse{Height: height})
	case api.DragEnd:
		resizer.End()
		w.WriteHeader(http.StatusNoContent)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown drag phase %q", req.Phase))
	}
}

func (s *apiServer) handleColumnDrag(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.DragRequest
	if !s.decode(w, r, &req) {
		return
	}
	column := rows.Field(r.PathValue("name"))
	resizer := s.daemon.Session().ColumnResizer()
	switch req.Phase {
	case api.DragBegin:
		if err := resizer.Begin(column, req.Position, req.Viewport); err != nil {
			s.writeServiceError(w, err)
			return
		}
		width, _ := s.daemon.Session().Columns().Width(column)
		s.writeJSON(w, http.StatusOK, api.DragResponse{Width: width})
	case api.DragMove:
		width, err := resizer.Move(req.Position)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.DragResponse{Width: width})
	case api.DragEnd:
		resizer.End()
		w.WriteHeader(http.StatusNoContent)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown drag phase %q", req.Phase))
	}
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromQueueStatus(s.daemon.Session().Queue().Snapshot()))
}

func (s *apiServer) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	usage, err := analytics.LoadUsage(r.Context(), s.daemon.history, r.URL.Query().Get("range"), s.now())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, usage)
}

func (s *apiServer) handleGapAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	doc, err := analytics.LoadGapAnalysis(s.gapPath)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.log()), "gap analysis unavailable", "gap_analysis_failed",
			logging.String("path", s.gapPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "dashboard cannot render content gaps"),
			logging.String(logging.FieldErrorHint, "regenerate the artifact or fix paths.gap_analysis_path"),
		)
		s.writeError(w, http.StatusInternalServerError, gapAnalysisError)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *apiServer) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sent, message, err := s.daemon.TestNotification(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Sprintf("%s: %v", message, err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sent": sent, "message": message})
}

func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.daemon.hub.serve(w, r)
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	body := http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps error markers to HTTP statuses.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrRowBusy), errors.Is(err, layout.ErrNoDrag):
		status = http.StatusConflict
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
