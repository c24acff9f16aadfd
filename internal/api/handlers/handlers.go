package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ktuntum/statement-ocr/internal/api/middleware"
	"github.com/ktuntum/statement-ocr/internal/document"
	"github.com/ktuntum/statement-ocr/internal/export"
	"github.com/ktuntum/statement-ocr/internal/extract"
	"github.com/ktuntum/statement-ocr/internal/jobs"
	"github.com/ktuntum/statement-ocr/internal/session"
)

// StatementsHandler accepts statement uploads and starts extractions.
type StatementsHandler struct {
	session   *session.Session
	publisher jobs.Publisher
	maxBytes  int64
	log       zerolog.Logger
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(s *session.Session, publisher jobs.Publisher, maxBytes int64, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		session:   s,
		publisher: publisher,
		maxBytes:  maxBytes,
		log:       log,
	}
}

// Analyze handles POST /api/statements.
//
// The media type is validated before any state transition: an
// unsupported upload is rejected with 415 and the session stays as it
// was. A second upload while one is processing gets 409.
func (h *StatementsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "No file uploaded. Use form field 'file'.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read uploaded file")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	mediaType := document.DetectMediaType(data, header.Header.Get("Content-Type"))
	if !document.SupportedMediaType(mediaType) {
		middleware.WriteError(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported file type %q. Supported types: %s",
				mediaType, strings.Join(document.SupportedMediaTypes(), ", ")))
		return
	}

	filename := filepath.Base(header.Filename)

	if err := h.session.Begin(filename); err != nil {
		middleware.WriteError(w, http.StatusConflict, "An analysis is already in progress")
		return
	}

	doc, err := document.Encode(bytes.NewReader(data), mediaType)
	if err != nil {
		// Unreadable or corrupt file: the operation was accepted, so it
		// settles as an error rather than being rejected up front.
		h.log.Error().Err(err).Str("filename", filename).Msg("Document encoding failed")
		h.session.Fail()
		middleware.WriteError(w, http.StatusUnprocessableEntity, session.GenericFailureMessage)
		return
	}

	job := &jobs.AnalyzeStatementJob{
		Filename:  filename,
		MediaType: doc.MediaType,
		SizeBytes: int64(len(doc.Data)),
		Document:  doc,
	}

	if err := h.publisher.PublishAnalyzeStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Str("filename", filename).Msg("Failed to enqueue extraction job")
		h.session.Fail()
		middleware.WriteError(w, http.StatusInternalServerError, session.GenericFailureMessage)
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("filename", filename).
		Str("media_type", doc.MediaType).
		Int64("bytes", job.SizeBytes).
		Int("pages", doc.Pages).
		Msg("Extraction job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":   job.JobID,
		"filename": filename,
		"status":   string(session.StatusProcessing),
	})
}

// StateHandler exposes the processing state machine.
type StateHandler struct {
	session *session.Session
	log     zerolog.Logger
}

// NewStateHandler creates a new state handler.
func NewStateHandler(s *session.Session, log zerolog.Logger) *StateHandler {
	return &StateHandler{session: s, log: log}
}

// Get handles GET /api/state.
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	state := h.session.Snapshot()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":       state.Status,
		"filename":     state.Filename,
		"transactions": state.Transactions,
		"count":        len(state.Transactions),
		"net_total":    extract.NetTotal(state.Transactions),
		"error":        state.Error,
	})
}

// Reset handles POST /api/state/reset. Reset is refused while an
// extraction is in flight; the call is never aborted.
func (h *StateHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Reset(); err != nil {
		middleware.WriteError(w, http.StatusConflict, "An analysis is already in progress")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": string(session.StatusIdle),
	})
}

// TransactionsHandler serves extracted transactions and their CSV form.
type TransactionsHandler struct {
	session *session.Session
	log     zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(s *session.Session, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{session: s, log: log}
}

// List handles GET /api/transactions.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	state := h.session.Snapshot()
	if state.Status != session.StatusSuccess {
		middleware.WriteError(w, http.StatusConflict, "No extracted transactions available")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": state.Transactions,
		"count":        len(state.Transactions),
		"net_total":    extract.NetTotal(state.Transactions),
	})
}

// ExportCSV handles GET /api/transactions/csv. The body is the exact
// CSV projection; headers mark it as a download named transactions.csv.
func (h *TransactionsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	state := h.session.Snapshot()
	if state.Status != session.StatusSuccess {
		middleware.WriteError(w, http.StatusConflict, "No extracted transactions available")
		return
	}

	csv := export.CSV(state.Transactions)

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(csv)))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, csv)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
