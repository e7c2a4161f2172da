package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/request"
	"github.com/benvon/smart-journal/internal/schedule"
	"github.com/benvon/smart-journal/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MaxExpandTemplates caps how many templates one POST /expand may carry
const MaxExpandTemplates = 500

// ExpandRequest carries templates to expand without storing them.
// Every template is validated through dive before expansion.
type ExpandRequest struct {
	Tasks        []*models.Task        `json:"tasks" validate:"omitempty,dive,required"`
	Transactions []*models.Transaction `json:"transactions" validate:"omitempty,dive,required"`
	Start        time.Time             `json:"start" validate:"required"`
	End          time.Time             `json:"end" validate:"required,gtefield=Start"`
}

// ExpandResponse holds the occurrences of an ExpandRequest in template order
type ExpandResponse struct {
	Tasks        []*models.Task        `json:"tasks"`
	Transactions []*models.Transaction `json:"transactions"`
}

// ExpandHandler expands posted templates statelessly
type ExpandHandler struct {
	expander  *schedule.Expander
	logger    *zap.Logger
	workers   int
	maxWindow time.Duration
}

// NewExpandHandler creates a new expand handler. Windows longer than maxWindow are
// rejected; a non-positive maxWindow means request.DefaultMaxSpan.
func NewExpandHandler(expander *schedule.Expander, logger *zap.Logger, workers int, maxWindow time.Duration) *ExpandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = defaultExpansionWorkers
	}
	if maxWindow <= 0 {
		maxWindow = request.DefaultMaxSpan
	}
	return &ExpandHandler{expander: expander, logger: logger, workers: workers, maxWindow: maxWindow}
}

// RegisterRoutes registers the expand route
func (h *ExpandHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/expand", h.Expand).Methods("POST")
}

// Expand handles POST /expand
func (h *ExpandHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var req ExpandRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if len(req.Tasks)+len(req.Transactions) > MaxExpandTemplates {
		respondJSONError(w, http.StatusBadRequest, "Bad Request",
			fmt.Sprintf("at most %d templates may be expanded per request", MaxExpandTemplates))
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondError(w, r, h.logger, err, "")
		return
	}
	if err := request.CheckSpan(req.Start, req.End, h.maxWindow); err != nil {
		respondError(w, r, h.logger, err, "")
		return
	}

	tasks, err := h.expander.ExpandTasksConcurrently(r.Context(), req.Tasks, req.Start, req.End, h.workers)
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to expand tasks")
		return
	}
	txns, err := h.expander.ExpandTransactionsConcurrently(r.Context(), req.Transactions, req.Start, req.End, h.workers)
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to expand transactions")
		return
	}

	respondJSON(w, http.StatusOK, ExpandResponse{
		Tasks:        nonNilSlice(tasks),
		Transactions: nonNilSlice(txns),
	})
}
