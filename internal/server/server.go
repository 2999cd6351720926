package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/turbolytics/hydrator/internal/hydrate"
	"github.com/turbolytics/hydrator/internal/payload"
)

// maxBodyBytes caps a single payload.
const maxBodyBytes = 4 << 20

type record struct {
	hydrator *hydrate.Hydrator
	stats    Stats
}

type Server struct {
	logger  *zap.Logger
	policy  hydrate.Policy
	records map[string]*record
	mu      sync.RWMutex

	now func() time.Time
}

type RecordInfo struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
	Stats  Stats    `json:"stats"`
}

type HydrateResponse struct {
	ID       string          `json:"id"`
	Record   string          `json:"record"`
	Policy   hydrate.Policy  `json:"policy"`
	Accepted bool            `json:"accepted"`
	Error    string          `json:"error,omitempty"`
	Result   *hydrate.Result `json:"result"`
}

func NewServer(logger *zap.Logger, policy hydrate.Policy) *Server {
	return &Server{
		logger:  logger,
		policy:  policy,
		records: make(map[string]*record),
		now:     time.Now,
	}
}

func (s *Server) RegisterHydrator(name string, h *hydrate.Hydrator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[name] = &record{hydrator: h}
	s.logger.Info("record registered",
		zap.String("record", name),
		zap.Strings("fields", h.Spec().Names()))
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)

	r.Route("/api/v1/records", func(r chi.Router) {
		r.Get("/", s.listRecords)
		r.Get("/{name}", s.getRecord)
		r.Post("/{name}/hydrate", s.hydrate)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("from", r.RemoteAddr),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) info(name string, rec *record) RecordInfo {
	return RecordInfo{
		Name:   name,
		Fields: rec.hydrator.Spec().Names(),
		Stats:  rec.stats,
	}
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	records := make([]RecordInfo, 0, len(s.records))
	for name, rec := range s.records {
		records = append(records, s.info(name, rec))
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.RLock()
	rec, exists := s.records[name]
	var info RecordInfo
	if exists {
		info = s.info(name, rec)
	}
	s.mu.RUnlock()

	if !exists {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (s *Server) hydrate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.RLock()
	rec, exists := s.records[name]
	s.mu.RUnlock()

	if !exists {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}

	policy := s.policy
	if q := r.URL.Query().Get("policy"); q != "" {
		p, err := hydrate.ParsePolicy(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		policy = p
	}

	format, err := payload.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := payload.Decode(format, http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}

	result := rec.hydrator.Hydrate(p)
	rejectErr := result.Err(policy)

	s.mu.Lock()
	rec.stats.observe(result, rejectErr != nil, s.now())
	s.mu.Unlock()

	resp := HydrateResponse{
		ID:       uuid.Must(uuid.NewUUID()).String(),
		Record:   name,
		Policy:   policy,
		Accepted: rejectErr == nil,
		Result:   result,
	}

	status := http.StatusOK
	if rejectErr != nil {
		resp.Error = rejectErr.Error()
		status = http.StatusUnprocessableEntity
	}

	s.logger.Debug("hydrated",
		zap.String("id", resp.ID),
		zap.String("record", name),
		zap.Bool("accepted", resp.Accepted),
	)

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting hydrator server", zap.String("addr", addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down hydrator server")
		srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
