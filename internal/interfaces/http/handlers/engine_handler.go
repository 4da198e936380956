package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/complytrack/complytrack/internal/application/cleanup"
	"github.com/complytrack/complytrack/internal/application/generation"
	"github.com/complytrack/complytrack/internal/domain/schedule"
	"github.com/complytrack/complytrack/internal/domain/timeline"
	"github.com/complytrack/complytrack/internal/scheduler"
	"github.com/complytrack/complytrack/pkg/errors"
)

// PassRunner is the generation surface the handler drives.
type PassRunner interface {
	RunPass(ctx context.Context, freq schedule.Frequency) (generation.PassSummary, error)
	RunAll(ctx context.Context) []generation.PassSummary
	Backfill(ctx context.Context, fyStartYear int, dryRun bool) (generation.BackfillSummary, error)
}

// Deduper is the cleanup surface the handler drives.
type Deduper interface {
	FindDuplicates(ctx context.Context) ([]timeline.DuplicateGroup, error)
	RemoveDuplicates(ctx context.Context, dryRun bool) (cleanup.Report, error)
}

// TriggerController exposes the scheduler to operators.
type TriggerController interface {
	Status() []scheduler.TriggerStatus
	Trigger(ctx context.Context, name string) error
}

// EngineHandler serves the operational endpoints: manual passes, backfills,
// duplicate cleanup, and scheduler introspection.
type EngineHandler struct {
	generator PassRunner
	cleaner   Deduper
	triggers  TriggerController
}

// NewEngineHandler wires the handler.  The trigger controller is optional;
// binaries without an embedded scheduler pass nil and the trigger endpoints
// answer 404.
func NewEngineHandler(g PassRunner, d Deduper, t TriggerController) *EngineHandler {
	return &EngineHandler{generator: g, cleaner: d, triggers: t}
}

// RunPass handles POST /passes/:frequency.
func (h *EngineHandler) RunPass(c *gin.Context) {
	freq := schedule.Frequency(c.Param("frequency"))
	if !freq.Recurring() {
		respondError(c, errors.Newf(errors.ErrCodeFrequencyUnsupported,
			"frequency %q is not a recurring class", freq))
		return
	}

	summary, err := h.generator.RunPass(c.Request.Context(), freq)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}

// RunAll handles POST /passes.
func (h *EngineHandler) RunAll(c *gin.Context) {
	respond(c, http.StatusOK, h.generator.RunAll(c.Request.Context()))
}

type backfillRequest struct {
	StartYear int  `json:"start_year" binding:"required"`
	DryRun    bool `json:"dry_run"`
}

// Backfill handles POST /backfills.  The body names the financial year by
// its starting calendar year, e.g. 2024 for 2024-25.
func (h *EngineHandler) Backfill(c *gin.Context) {
	var req backfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "decoding backfill request"))
		return
	}
	if req.StartYear < 1900 || req.StartYear > 9999 {
		respondError(c, errors.Newf(errors.ErrCodeValidation,
			"start year %d out of range", req.StartYear))
		return
	}

	summary, err := h.generator.Backfill(c.Request.Context(), req.StartYear, req.DryRun)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}

// duplicateGroupView flattens a duplicate group for the wire.
type duplicateGroupView struct {
	Identity string   `json:"identity"`
	Count    int      `json:"count"`
	Records  []string `json:"record_ids"`
}

// ListDuplicates handles GET /duplicates.
func (h *EngineHandler) ListDuplicates(c *gin.Context) {
	groups, err := h.cleaner.FindDuplicates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]duplicateGroupView, 0, len(groups))
	for _, g := range groups {
		v := duplicateGroupView{Identity: g.Identity.String(), Count: len(g.Records)}
		for _, rec := range g.Records {
			v.Records = append(v.Records, string(rec.ID))
		}
		views = append(views, v)
	}
	respond(c, http.StatusOK, views)
}

// RemoveDuplicates handles POST /duplicates/cleanup.  Destructive unless
// ?dry_run=true; dry runs report the identical deletion set.
func (h *EngineHandler) RemoveDuplicates(c *gin.Context) {
	report, err := h.cleaner.RemoveDuplicates(c.Request.Context(), parseBool(c, "dry_run", false))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, report)
}

// TriggerStatus handles GET /triggers.
func (h *EngineHandler) TriggerStatus(c *gin.Context) {
	if h.triggers == nil {
		respondError(c, errors.NotFound("no scheduler in this process"))
		return
	}
	respond(c, http.StatusOK, h.triggers.Status())
}

// FireTrigger handles POST /triggers/:name/run.
func (h *EngineHandler) FireTrigger(c *gin.Context) {
	if h.triggers == nil {
		respondError(c, errors.NotFound("no scheduler in this process"))
		return
	}
	if err := h.triggers.Trigger(c.Request.Context(), c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"trigger": c.Param("name"), "fired": true})
}
