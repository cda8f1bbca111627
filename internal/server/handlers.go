package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/semindex/internal/config"
	"github.com/hyperjump/semindex/internal/embedding"
	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/vector"
)

type createIndexRequest struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
}

type clusterRequest struct {
	K int `json:"k"`
}

type recommendRequest struct {
	Profile models.Metadata `json:"profile"`
	Limit   int             `json:"limit"`
}

type gapsRequest struct {
	Topics []string `json:"topics"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	indices := s.engine.ListIndices()
	total := 0
	for _, info := range indices {
		total += info.TotalVectors
	}
	resp := map[string]interface{}{
		"indices":       len(indices),
		"total_vectors": total,
	}
	if sized, ok := s.storage.(interface{ SizeBytes() (int64, error) }); ok {
		if n, err := sized.SizeBytes(); err == nil {
			resp["disk_usage_bytes"] = n
		}
	}
	if cached, ok := s.engine.Embedder().(interface{ Stats() embedding.CacheStats }); ok {
		resp["embedding_cache"] = cached.Stats()
	}
	if s.watchConfig != nil {
		resp["config"] = map[string]interface{}{
			"embedding_provider":   s.watchConfig.Embedding.Provider,
			"embedding_dimensions": s.watchConfig.Embedding.Dimensions,
			"database_path":        s.watchConfig.Storage.DatabasePath,
			"snapshot_enabled":     s.watchConfig.Storage.SnapshotEnabled,
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListIndices(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"indices": s.engine.ListIndices()})
}

func (s *Server) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	var req createIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	info, err := s.engine.CreateIndex(req.Name, req.Dimension, req.Metric)
	if err != nil {
		s.respondEngineError(w, "create index", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetIndex(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, ok := s.engine.GetIndexStats(name)
	if !ok {
		s.respondError(w, http.StatusNotFound, "index not found")
		return
	}
	s.respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDropIndex(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.engine.DropIndex(name); err != nil {
		s.respondEngineError(w, "drop index", err)
		return
	}
	if s.storage != nil {
		if err := s.storage.DeleteIndex(r.Context(), name); err != nil {
			s.logger.Warn("failed to delete index snapshot", zap.String("index", name), zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"name": name, "status": "dropped"})
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "snapshots not enabled")
		return
	}
	name := chi.URLParam(r, "name")
	info, embs, err := s.engine.Store().Export(name)
	if err != nil {
		s.respondEngineError(w, "export index", err)
		return
	}
	if err := s.storage.SaveIndex(r.Context(), info, embs); err != nil {
		s.logger.Error("snapshot failed", zap.String("index", name), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"name": name, "total_vectors": len(embs), "status": "saved"})
}

func (s *Server) handleAddContent(w http.ResponseWriter, r *http.Request) {
	var input models.ContentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := chi.URLParam(r, "name")
	s.logger.Debug("add content request", zap.String("index", name), zap.String("id", input.ID))
	emb, err := s.engine.AddContent(r.Context(), name, &input)
	if err != nil {
		s.respondEngineError(w, "add content", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, emb)
}

func (s *Server) handleAddEmbedding(w http.ResponseWriter, r *http.Request) {
	var emb models.Embedding
	if err := json.NewDecoder(r.Body).Decode(&emb); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := s.engine.AddEmbedding(r.Context(), chi.URLParam(r, "name"), &emb)
	if err != nil {
		s.respondEngineError(w, "add embedding", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": out.ID, "status": "added"})
}

func (s *Server) handleGetEmbedding(w http.ResponseWriter, r *http.Request) {
	emb, err := s.engine.GetEmbedding(chi.URLParam(r, "name"), chi.URLParam(r, "id"))
	if err != nil {
		s.respondEngineError(w, "get embedding", err)
		return
	}
	s.respondJSON(w, http.StatusOK, emb)
}

func (s *Server) handleDeleteEmbedding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.engine.DeleteEmbedding(chi.URLParam(r, "name"), id); err != nil {
		s.respondEngineError(w, "delete embedding", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleFindSimilar(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	results, err := s.engine.FindSimilar(r.Context(), chi.URLParam(r, "name"), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.respondEngineError(w, "find similar", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("text", query.Text), zap.Int("limit", query.Limit))
	results, err := s.engine.SemanticSearch(r.Context(), chi.URLParam(r, "name"), &query)
	if err != nil {
		s.respondEngineError(w, "search", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	var req clusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	clusters, err := s.engine.Cluster(r.Context(), chi.URLParam(r, "name"), req.K)
	if err != nil {
		s.respondEngineError(w, "cluster", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"clusters": clusters})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	recs, err := s.engine.Recommend(r.Context(), chi.URLParam(r, "name"), req.Profile, req.Limit)
	if err != nil {
		s.respondEngineError(w, "recommend", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recs})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	timeframe := r.URL.Query().Get("timeframe")
	trends, err := s.engine.DetectTrends(r.Context(), chi.URLParam(r, "name"), timeframe)
	if err != nil {
		s.respondEngineError(w, "detect trends", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"trends": trends})
}

func (s *Server) handleGaps(w http.ResponseWriter, r *http.Request) {
	var req gapsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gaps, err := s.engine.AnalyzeGaps(r.Context(), chi.URLParam(r, "name"), req.Topics)
	if err != nil {
		s.respondEngineError(w, "analyze gaps", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"gaps": gaps})
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	dirs := s.watch.Directories()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": dirs})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	s.logger.Debug("watch remove directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.watchConfig == nil {
		return
	}
	s.watchConfigMu.Lock()
	defer s.watchConfigMu.Unlock()
	s.watchConfig.Watch.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.watchConfig); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, vector.ErrIndexNotFound), errors.Is(err, vector.ErrVectorNotFound):
		return http.StatusNotFound
	case errors.Is(err, vector.ErrDuplicateIndex):
		return http.StatusConflict
	case errors.Is(err, vector.ErrDimensionMismatch), errors.Is(err, vector.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, vector.ErrInsufficientData), errors.Is(err, embedding.ErrUnsupportedContentType):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondEngineError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Error(err))
	} else {
		s.logger.Debug(op+" rejected", zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func intQuery(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
