package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/dialname/internal/config"
	"github.com/hyperjump/dialname/internal/indexer"
	"github.com/hyperjump/dialname/internal/models"
	"github.com/hyperjump/dialname/internal/search"
	"github.com/hyperjump/dialname/internal/storage"
	"github.com/hyperjump/dialname/internal/watcher"
	"github.com/hyperjump/dialname/pkg/utils"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.ContactQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		s.respondErr(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("number")
	if number == "" {
		s.respondError(w, http.StatusBadRequest, "number is required")
		return
	}
	response, err := s.engine.Lookup(r.Context(), number)
	if err != nil {
		s.respondErr(w, "lookup failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

type speechRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSpeechNormalize(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"text": utils.NormalizeForSpeech(req.Text)})
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return n, nil
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit == 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	if q := r.URL.Query().Get("q"); q != "" {
		found, err := s.engine.FindContacts(ctx, q, limit)
		if err != nil {
			s.respondErr(w, "contact search failed", err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"contacts": found, "total": len(found)})
		return
	}

	list, err := s.storage.ListContacts(ctx, offset, limit)
	if err != nil {
		s.respondErr(w, "list contacts failed", err)
		return
	}
	total, err := s.storage.CountNumbers(ctx)
	if err != nil {
		s.respondErr(w, "count contacts failed", err)
		return
	}
	if list == nil {
		list = []*models.ContactRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"contacts": list,
		"total":    total,
		"offset":   offset,
		"limit":    limit,
	})
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var input models.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("create contact request", zap.String("name", input.DisplayName))
	rec, err := s.indexer.AddContact(r.Context(), &input)
	if err != nil {
		s.respondErr(w, "create contact failed", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	rec, err := s.storage.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, "get contact failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var input models.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := s.indexer.UpdateContact(r.Context(), chi.URLParam(r, "id"), &input)
	if err != nil {
		s.respondErr(w, "update contact failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete contact request", zap.String("id", id))
	if err := s.indexer.DeleteContact(r.Context(), id); err != nil {
		s.respondErr(w, "delete contact failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type importRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	info, err := os.Stat(req.Path)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "path not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ctx := r.Context()
	if !info.IsDir() {
		res, err := s.indexer.ImportFile(ctx, req.Path, nil)
		if err != nil {
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"results": []*indexer.ImportResult{res}})
		return
	}
	results, err := s.indexer.ImportDirectory(ctx, req.Path, nil)
	if results == nil {
		results = []indexer.ImportResult{}
	}
	resp := map[string]interface{}{"results": results}
	if err != nil {
		s.logger.Warn("import had failures", zap.String("path", req.Path), zap.Error(err))
		resp["errors"] = err.Error()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactCount, err := s.storage.CountContacts(ctx)
	if err != nil {
		s.respondErr(w, "status: count contacts failed", err)
		return
	}
	numberCount, err := s.storage.CountNumbers(ctx)
	if err != nil {
		s.respondErr(w, "status: count numbers failed", err)
		return
	}
	resp := map[string]interface{}{
		"contacts": contactCount,
		"numbers":  numberCount,
	}
	if s.keywordIndex != nil {
		if n, err := s.keywordIndex.DocCount(); err == nil {
			resp["keyword_index_size"] = n
		}
	}

	configInfo := map[string]interface{}{}
	if s.watchConfig != nil {
		configInfo["database_path"] = s.watchConfig.Storage.DatabasePath
		configInfo["bleve_index_path"] = s.watchConfig.Storage.BleveIndexPath
		configInfo["default_threshold"] = s.watchConfig.Search.DefaultThreshold
		configInfo["default_limit"] = s.watchConfig.Search.DefaultLimit
		configInfo["max_limit"] = s.watchConfig.Search.MaxLimit

		paths := storage.DatabaseFiles(s.watchConfig.Storage.DatabasePath)
		paths = append(paths, s.watchConfig.Storage.BleveIndexPath)
		if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	resp["config"] = configInfo

	if s.watch != nil {
		watchInfo := map[string]interface{}{"directories": s.watch.Directories()}
		if sp, ok := s.watch.(interface{ Stats() watcher.Stats }); ok {
			watchInfo["stats"] = sp.Stats()
		}
		resp["watch"] = watchInfo
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
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

// persistWatchDirectories writes the current watch roots to the config file.
func (s *Server) persistWatchDirectories() {
	if s.configPath == "" || s.watchConfig == nil {
		return
	}
	s.watchConfigMu.Lock()
	s.watchConfig.Watch.Directories = s.watch.Directories()
	err := config.Save(s.configPath, s.watchConfig)
	s.watchConfigMu.Unlock()
	if err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, indexer.ErrInvalidContact), errors.Is(err, search.ErrInvalidQuery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes err with the status it maps to. Server-side failures are logged.
func (s *Server) respondErr(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
