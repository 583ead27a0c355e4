package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/mcapidx/pkg/catalog"
	"github.com/ssargent/mcapidx/pkg/mcap"
	"github.com/ssargent/mcapidx/pkg/scan"
)

// handleHealth godoc
//
//	@Summary		Health check
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListScans godoc
//
//	@Summary		List stored scans
//	@Tags			scans
//	@Produce		json
//	@Success		200	{array}		catalog.Entry
//	@Failure		500	{object}	APIResponse
//	@Router			/scans [get]
//	@Security		ApiKeyAuth
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List()
	if err != nil {
		s.logger.Error("failed to list scans", zap.Error(err))
		sendError(w, "Failed to list scans", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*catalog.Entry{}
	}
	sendSuccess(w, entries)
}

// handleCreateScan godoc
//
//	@Summary		Scan a file and store the result
//	@Tags			scans
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ScanRequest	true	"File to scan"
//	@Success		201		{object}	catalog.Entry
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/scans [post]
//	@Security		ApiKeyAuth
func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		sendError(w, "path is required", http.StatusBadRequest)
		return
	}

	opts := s.config.Scan
	if req.Strict != nil {
		opts.Strict = *req.Strict
	}
	if req.KeepRecords != nil {
		opts.KeepRecords = *req.KeepRecords
	}

	res, err := s.scanner.ScanFile(r.Context(), req.Path, opts, nil)
	if err != nil {
		status := scanErrorStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("scan failed", zap.String("path", req.Path), zap.Error(err))
		}
		sendError(w, err.Error(), status)
		return
	}

	id, err := s.catalog.Save(res)
	if err != nil {
		s.logger.Error("failed to save scan", zap.String("path", req.Path), zap.Error(err))
		sendError(w, "Failed to save scan", http.StatusInternalServerError)
		return
	}

	entry, err := s.catalog.Get(id)
	if err != nil {
		sendError(w, "Failed to load saved scan", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusCreated, entry)
}

// handleGetScan godoc
//
//	@Summary		Get a stored scan
//	@Tags			scans
//	@Produce		json
//	@Param			id	path		string	true	"Scan ID"
//	@Success		200	{object}	catalog.Entry
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Router			/scans/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id, ok := scanID(w, r)
	if !ok {
		return
	}

	entry, err := s.catalog.Get(id)
	if err != nil {
		s.sendCatalogError(w, err)
		return
	}
	sendSuccess(w, entry)
}

// handleGetRecords godoc
//
//	@Summary		List the record descriptors of a stored scan
//	@Tags			scans
//	@Produce		json
//	@Param			id	path		string	true	"Scan ID"
//	@Success		200	{array}		mcap.Record
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Router			/scans/{id}/records [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := scanID(w, r)
	if !ok {
		return
	}

	records, err := s.catalog.Records(id)
	if err != nil {
		s.sendCatalogError(w, err)
		return
	}
	if records == nil {
		records = []mcap.Record{}
	}
	sendSuccess(w, records)
}

// handleDeleteScan godoc
//
//	@Summary		Delete a stored scan
//	@Tags			scans
//	@Produce		json
//	@Param			id	path		string	true	"Scan ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	APIResponse
//	@Router			/scans/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	id, ok := scanID(w, r)
	if !ok {
		return
	}

	if err := s.catalog.Delete(id); err != nil {
		s.sendCatalogError(w, err)
		return
	}
	sendSuccess(w, map[string]string{"deleted": id.String()})
}

func (s *Server) sendCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		sendError(w, "Scan not found", http.StatusNotFound)
		return
	}
	s.logger.Error("catalog error", zap.Error(err))
	sendError(w, "Catalog error", http.StatusInternalServerError)
}

func scanID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid scan ID", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

// scanErrorStatus maps a scan failure to an HTTP status
func scanErrorStatus(err error) int {
	var fe *mcap.FormatError
	switch {
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, os.ErrPermission):
		return http.StatusForbidden
	case errors.As(err, &fe),
		errors.Is(err, scan.ErrMissingHeader),
		errors.Is(err, scan.ErrUnexpectedOpcode),
		errors.Is(err, scan.ErrMissingFooter):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
