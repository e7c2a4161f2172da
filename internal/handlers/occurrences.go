package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/smart-journal/internal/database"
	"github.com/benvon/smart-journal/internal/ledger"
	logpkg "github.com/benvon/smart-journal/internal/logger"
	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/recurrence"
	"github.com/benvon/smart-journal/internal/request"
	"github.com/benvon/smart-journal/internal/schedule"
	"github.com/benvon/smart-journal/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const defaultExpansionWorkers = 4

// OccurrenceHandler serves the expanded occurrences of stored templates
type OccurrenceHandler struct {
	tasks     database.TaskRepositoryInterface
	txns      database.TransactionRepositoryInterface
	expander  *schedule.Expander
	logger    *zap.Logger
	defaultTZ string
	workers   int
	maxWindow time.Duration
}

// OccurrenceOption configures an OccurrenceHandler
type OccurrenceOption func(*OccurrenceHandler)

// WithDefaultTimezone sets the zone used for plain-date windows without a timezone parameter
func WithDefaultTimezone(tz string) OccurrenceOption {
	return func(h *OccurrenceHandler) {
		if tz != "" {
			h.defaultTZ = tz
		}
	}
}

// WithExpansionWorkers sets how many templates are expanded in parallel for list endpoints
func WithExpansionWorkers(workers int) OccurrenceOption {
	return func(h *OccurrenceHandler) {
		if workers > 0 {
			h.workers = workers
		}
	}
}

// WithMaxWindow bounds the span of the start/end window a request may ask for
func WithMaxWindow(span time.Duration) OccurrenceOption {
	return func(h *OccurrenceHandler) {
		if span > 0 {
			h.maxWindow = span
		}
	}
}

// NewOccurrenceHandler creates a new occurrence handler
func NewOccurrenceHandler(tasks database.TaskRepositoryInterface, txns database.TransactionRepositoryInterface, expander *schedule.Expander, logger *zap.Logger, opts ...OccurrenceOption) *OccurrenceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &OccurrenceHandler{
		tasks:     tasks,
		txns:      txns,
		expander:  expander,
		logger:    logger,
		defaultTZ: "UTC",
		workers:   defaultExpansionWorkers,
		maxWindow: request.DefaultMaxSpan,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers occurrence routes.
// The router should already carry the /users/{owner} prefix.
func (h *OccurrenceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tasks/occurrences", h.ListTaskOccurrences).Methods("GET")
	r.HandleFunc("/tasks/{id}/occurrences", h.GetTaskOccurrences).Methods("GET")
	r.HandleFunc("/tasks/{id}/reminders", h.GetTaskReminders).Methods("GET")
	r.HandleFunc("/transactions/occurrences", h.ListTransactionOccurrences).Methods("GET")
	r.HandleFunc("/ledger/summary", h.GetLedgerSummary).Methods("GET")
}

// ReminderResponse is one reminder of a task occurrence
type ReminderResponse struct {
	TaskID     uuid.UUID    `json:"task_id"`
	Instant    int64        `json:"instant"`
	RemindAt   string       `json:"remind_at"`
	Occurrence *models.Task `json:"occurrence"`
}

// ListTaskOccurrences expands every task template of the owner
func (h *OccurrenceHandler) ListTaskOccurrences(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	window, err := request.ParseWindow(r, h.defaultTZ, h.maxWindow)
	if err != nil {
		respondError(w, r, h.logger, err, "")
		return
	}

	tasks, err := h.tasks.ListByOwner(r.Context(), owner)
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to retrieve tasks")
		return
	}
	occurrences, err := h.expander.ExpandTasksConcurrently(r.Context(), tasks, window.Start, window.End, h.workers)
	if err != nil {
		h.logExpansionFailure(owner, err)
		respondError(w, r, h.logger, err, "Failed to expand tasks")
		return
	}
	respondJSON(w, http.StatusOK, nonNilSlice(occurrences))
}

// GetTaskOccurrences expands a single task template
func (h *OccurrenceHandler) GetTaskOccurrences(w http.ResponseWriter, r *http.Request) {
	task, window, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	occurrences, err := h.expander.ExpandTask(r.Context(), task, window.Start, window.End)
	if err != nil {
		h.logExpansionFailure(task.Owner, err)
		respondError(w, r, h.logger, err, "Failed to expand task")
		return
	}
	respondJSON(w, http.StatusOK, nonNilSlice(occurrences))
}

// GetTaskReminders lists the reminders of a task template within the window, ordered by instant
func (h *OccurrenceHandler) GetTaskReminders(w http.ResponseWriter, r *http.Request) {
	task, window, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	records, err := h.expander.ReminderRecords(r.Context(), task, window.Start, window.End)
	if err != nil {
		h.logExpansionFailure(task.Owner, err)
		respondError(w, r, h.logger, err, "Failed to compute reminders")
		return
	}

	reminders := make([]ReminderResponse, 0, len(records))
	for _, rec := range schedule.SortedRecords(records) {
		occurrence := records[rec]
		at := time.UnixMilli(rec.Instant)
		if loc, err := recurrence.LoadZone(occurrence.Timezone); err == nil {
			at = at.In(loc)
		}
		reminders = append(reminders, ReminderResponse{
			TaskID:     rec.TaskID,
			Instant:    rec.Instant,
			RemindAt:   at.Format(time.RFC3339),
			Occurrence: occurrence,
		})
	}
	respondJSON(w, http.StatusOK, reminders)
}

// ListTransactionOccurrences expands every transaction template of the owner
func (h *OccurrenceHandler) ListTransactionOccurrences(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	window, err := request.ParseWindow(r, h.defaultTZ, h.maxWindow)
	if err != nil {
		respondError(w, r, h.logger, err, "")
		return
	}
	occurrences, err := h.transactionOccurrences(r, owner, window)
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to expand transactions")
		return
	}
	respondJSON(w, http.StatusOK, nonNilSlice(occurrences))
}

// GetLedgerSummary aggregates the owner's transaction occurrences within the window.
// The type parameter defaults to DEFAULT and the frequency parameter to MONTHLY.
func (h *OccurrenceHandler) GetLedgerSummary(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]
	window, err := request.ParseWindow(r, h.defaultTZ, h.maxWindow)
	if err != nil {
		respondError(w, r, h.logger, err, "")
		return
	}

	q := r.URL.Query()
	summaryReq := ledger.SummaryRequest{
		Type:      ledger.SummaryType(q.Get("type")),
		Frequency: ledger.FrequencyType(q.Get("frequency")),
		Start:     window.Start,
		End:       window.End,
	}
	if summaryReq.Type == "" {
		summaryReq.Type = ledger.SummaryTypeDefault
	}
	if summaryReq.Type == ledger.SummaryTypeDefault && summaryReq.Frequency == "" {
		summaryReq.Frequency = ledger.FrequencyMonthly
	}
	if err := validation.Validate.Struct(summaryReq); err != nil {
		respondError(w, r, h.logger, err, "")
		return
	}

	summaryReq.Transactions, err = h.transactionOccurrences(r, owner, window)
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to expand transactions")
		return
	}
	summary, err := ledger.Calculate(summaryReq)
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to calculate summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *OccurrenceHandler) transactionOccurrences(r *http.Request, owner string, window request.Window) ([]*models.Transaction, error) {
	txns, err := h.txns.ListByOwner(r.Context(), owner)
	if err != nil {
		return nil, err
	}
	occurrences, err := h.expander.ExpandTransactionsConcurrently(r.Context(), txns, window.Start, window.End, h.workers)
	if err != nil {
		h.logExpansionFailure(owner, err)
		return nil, err
	}
	return occurrences, nil
}

// loadTask resolves the owner's task from the route and the window from the query.
// It writes the error response itself and reports whether the caller may continue.
func (h *OccurrenceHandler) loadTask(w http.ResponseWriter, r *http.Request) (*models.Task, request.Window, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return nil, request.Window{}, false
	}
	window, err := request.ParseWindow(r, h.defaultTZ, h.maxWindow)
	if err != nil {
		respondError(w, r, h.logger, err, "")
		return nil, request.Window{}, false
	}
	task, err := h.tasks.GetByID(r.Context(), vars["owner"], id)
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to retrieve task")
		return nil, request.Window{}, false
	}
	return task, window, true
}

func (h *OccurrenceHandler) logExpansionFailure(owner string, err error) {
	h.logger.Warn("expansion_failed",
		zap.String("owner", logpkg.SanitizeOwner(owner)),
		zap.String("error", logpkg.SanitizeError(err)),
	)
}

// nonNilSlice keeps empty results encoded as [] rather than null
func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
