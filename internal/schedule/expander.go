package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/smart-journal/internal/logger"
	"github.com/benvon/smart-journal/internal/models"
	"github.com/benvon/smart-journal/internal/recurrence"
	"github.com/benvon/smart-journal/internal/reminder"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/benvon/smart-journal/internal/schedule"

// Expander turns templates into the occurrences that fall inside a time window.
// It holds no per-call state and may be shared between goroutines.
type Expander struct {
	logger *zap.Logger
	tracer trace.Tracer
}

// Option configures an Expander
type Option func(*Expander)

// WithLogger sets the logger used for non-fatal expansion conditions
func WithLogger(logger *zap.Logger) Option {
	return func(e *Expander) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for expansion spans
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Expander) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// NewExpander creates an expander. Without options it logs nothing and traces with the
// global tracer provider.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns the occurrences of tmpl within [start, end] in ascending order.
//
// A one-time template yields a copy of itself when its base date falls inside the window.
// A recurring template is iterated until a candidate passes end; candidates before start
// or listed in the template exclusions are skipped. Any error, including cancellation of
// ctx, aborts the whole call without partial results.
func (e *Expander) Expand(ctx context.Context, tmpl models.Template, start, end time.Time) ([]models.Template, error) {
	ctx, span := e.tracer.Start(ctx, "schedule.expand")
	defer span.End()

	occurrences, err := e.expand(ctx, tmpl, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if tmpl != nil {
		span.SetAttributes(attribute.String("template.id", tmpl.TemplateID().String()))
	}
	span.SetAttributes(attribute.Int("occurrence.count", len(occurrences)))
	return occurrences, nil
}

func (e *Expander) expand(ctx context.Context, tmpl models.Template, start, end time.Time) ([]models.Template, error) {
	if isNil(tmpl) {
		return nil, ErrCloneFailed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !models.IsRecurring(tmpl) {
		return e.passThrough(tmpl, start, end)
	}

	anchor, _ := baseInstant(tmpl)
	rule, err := recurrence.ParseAt(tmpl.Rule(), tmpl.Zone(), anchor)
	if err != nil {
		e.logger.Warn("invalid_recurrence_rule",
			zap.String("template_id", tmpl.TemplateID().String()),
			zap.String("rule", logger.SanitizeRule(tmpl.Rule())),
			zap.Error(err),
		)
		return nil, err
	}
	exclusions := recurrence.ParseExclusions(tmpl.Exclusions())

	var occurrences []models.Template
	it := rule.Iterator()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate, ok := it.Next()
		if !ok || candidate.After(end) {
			break
		}
		if candidate.Before(start) || exclusions.Contains(candidate) {
			continue
		}

		occurrence, err := e.Materialize(tmpl, tmpl.Zone(), candidate)
		if err != nil {
			return nil, err
		}
		if task, ok := occurrence.(*models.Task); ok {
			applyReminder(task, *task.StartTime)
		}
		occurrences = append(occurrences, occurrence)
	}

	e.logger.Debug("expanded_template",
		zap.String("template_id", tmpl.TemplateID().String()),
		zap.Time("window_start", start),
		zap.Time("window_end", end),
		zap.Int("occurrences", len(occurrences)),
	)
	return occurrences, nil
}

func (e *Expander) passThrough(tmpl models.Template, start, end time.Time) ([]models.Template, error) {
	base, ok := baseInstant(tmpl)
	if !ok || base.Before(start) || base.After(end) {
		return nil, nil
	}
	cloned, err := tmpl.CloneTemplate()
	if err != nil {
		return nil, err
	}
	if task, ok := cloned.(*models.Task); ok {
		applyReminder(task, base)
	}
	return []models.Template{cloned}, nil
}

// applyReminder writes the reminder projected from start onto a task occurrence
func applyReminder(task *models.Task, start time.Time) {
	if projected, ok := reminder.Project(task, start).Get(); ok {
		task.ReminderSetting = &projected
	}
}

// baseInstant resolves the base date and time of a template in its own timezone
func baseInstant(tmpl models.Template) (time.Time, bool) {
	date, clock := tmpl.BaseDateTime()
	if date == "" {
		return time.Time{}, false
	}
	loc, err := recurrence.LoadZone(tmpl.Zone())
	if err != nil {
		return time.Time{}, false
	}
	at, err := recurrence.StartInstant(date, clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

func isNil(tmpl models.Template) bool {
	switch t := tmpl.(type) {
	case *models.Task:
		return t == nil
	case *models.Transaction:
		return t == nil
	default:
		return tmpl == nil
	}
}

// ExpandTask expands a single task template
func (e *Expander) ExpandTask(ctx context.Context, task *models.Task, start, end time.Time) ([]*models.Task, error) {
	return expandTyped(ctx, e, task, start, end)
}

// ExpandTransaction expands a single transaction template
func (e *Expander) ExpandTransaction(ctx context.Context, txn *models.Transaction, start, end time.Time) ([]*models.Transaction, error) {
	return expandTyped(ctx, e, txn, start, end)
}

// ExpandTasks expands every task and concatenates the results in input order
func (e *Expander) ExpandTasks(ctx context.Context, tasks []*models.Task, start, end time.Time) ([]*models.Task, error) {
	return expandAll(ctx, e, tasks, start, end)
}

// ExpandTransactions expands every transaction and concatenates the results in input order
func (e *Expander) ExpandTransactions(ctx context.Context, txns []*models.Transaction, start, end time.Time) ([]*models.Transaction, error) {
	return expandAll(ctx, e, txns, start, end)
}

func expandTyped[T models.Template](ctx context.Context, e *Expander, tmpl T, start, end time.Time) ([]T, error) {
	occurrences, err := e.Expand(ctx, tmpl, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(occurrences))
	for _, occurrence := range occurrences {
		typed, ok := occurrence.(T)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected occurrence %T", ErrCloneFailed, occurrence)
		}
		out = append(out, typed)
	}
	return out, nil
}

func expandAll[T models.Template](ctx context.Context, e *Expander, templates []T, start, end time.Time) ([]T, error) {
	var out []T
	for _, tmpl := range templates {
		occurrences, err := expandTyped(ctx, e, tmpl, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to expand template %s: %w", templateID(tmpl), err)
		}
		out = append(out, occurrences...)
	}
	return out, nil
}

func templateID(tmpl models.Template) string {
	if isNil(tmpl) {
		return "<nil>"
	}
	return tmpl.TemplateID().String()
}
