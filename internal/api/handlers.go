package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ballotmap/internal"
	"ballotmap/internal/catalog"
	"ballotmap/internal/view"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zap.L().Error("failed to encode error response", zap.Error(err))
	}
}

// respondSessionError maps session errors to status codes.
func respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, view.ErrInvalidTransition):
		respondError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, catalog.ErrNoIndex):
		respondError(w, http.StatusServiceUnavailable, "no_index", err.Error())
	default:
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

type viewResponse struct {
	State   internal.ViewState    `json:"state"`
	Filter  internal.FilterConfig `json:"filter"`
	Display internal.DisplayMode  `json:"display"`
}

func (s *Server) viewLocked() viewResponse {
	return viewResponse{State: s.session.State(), Filter: s.session.Filter(), Display: s.session.Display()}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type indexResponse struct {
	Report    *catalog.BuildReport `json:"report,omitempty"`
	Positions []string             `json:"positions"`
	Counties  []string             `json:"counties"`
}

func (s *Server) handleGetIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.session.Index()
	if idx == nil {
		respondSessionError(w, catalog.ErrNoIndex)
		return
	}
	respondJSON(w, http.StatusOK, indexResponse{
		Report:    s.report,
		Positions: idx.PositionKeys(),
		Counties:  idx.Counties(),
	})
}

type reloadResponse struct {
	Applied bool                `json:"applied"`
	Report  catalog.BuildReport `json:"report"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	report, applied := s.Reload(r.Context())
	if r.Context().Err() != nil {
		return
	}
	respondJSON(w, http.StatusOK, reloadResponse{Applied: applied, Report: report})
}

type positionResponse struct {
	Office *internal.Office `json:"office,omitempty"`
	internal.Bucket
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.session.Position(key)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "unknown position: "+key)
		return
	}
	resp := positionResponse{Bucket: bucket}
	if office, ok := s.session.Index().Office(key); ok {
		resp.Office = &office
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCountyOffices(w http.ResponseWriter, r *http.Request) {
	county := pathParam(r, "county")

	s.mu.Lock()
	defer s.mu.Unlock()

	respondJSON(w, http.StatusOK, s.session.CountyOffices(county))
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	respondJSON(w, http.StatusOK, s.viewLocked())
}

type selectStateRequest struct {
	Code string `json:"code" validate:"required"`
}

func (s *Server) handleSelectState(w http.ResponseWriter, r *http.Request) {
	var req selectStateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.SelectState(req.Code); err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.viewLocked())
}

type selectCountyRequest struct {
	Name string `json:"name" validate:"required"`
}

func (s *Server) handleSelectCounty(w http.ResponseWriter, r *http.Request) {
	var req selectCountyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.SelectCounty(req.Name); err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.viewLocked())
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Back()
	respondJSON(w, http.StatusOK, s.viewLocked())
}

type selectPositionRequest struct {
	Key string `json:"key" validate:"required"`
}

func (s *Server) handleSelectPosition(w http.ResponseWriter, r *http.Request) {
	var req selectPositionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.SelectPosition(req.Key)
	respondJSON(w, http.StatusOK, s.viewLocked())
}

func (s *Server) handleClearPosition(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.ClearPosition()
	respondJSON(w, http.StatusOK, s.viewLocked())
}

type filterResponse struct {
	Filter internal.FilterConfig `json:"filter"`
	Bucket *internal.Bucket      `json:"bucket,omitempty"`
}

func (s *Server) handleApplyFilter(w http.ResponseWriter, r *http.Request) {
	var req internal.FilterConfig
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok, err := s.session.ApplyFilter(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	resp := filterResponse{Filter: s.session.Filter()}
	if ok {
		resp.Bucket = &bucket
	}
	respondJSON(w, http.StatusOK, resp)
}

type setDisplayRequest struct {
	Mode internal.DisplayMode `json:"mode" validate:"required,oneof=Flat Elevation"`
}

func (s *Server) handleSetDisplay(w http.ResponseWriter, r *http.Request) {
	var req setDisplayRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.SetDisplay(req.Mode); err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.viewLocked())
}

func (s *Server) handleOffices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	respondJSON(w, http.StatusOK, s.session.Offices())
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.State().SelectedPosition == "" {
		respondError(w, http.StatusNotFound, "no_position", "no position selected")
		return
	}
	bucket, ok := s.session.Filtered()
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "unknown position: "+s.session.State().SelectedPosition)
		return
	}
	respondJSON(w, http.StatusOK, bucket)
}
