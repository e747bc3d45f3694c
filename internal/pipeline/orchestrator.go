package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// State names the stages a request moves through. Failed is terminal and
// reachable from any stage; qa requests finish after generating, guide
// requests continue into exporting.
type State string

const (
	StateClassifying State = "classifying"
	StateSearching   State = "searching"
	StateGenerating  State = "generating"
	StateExporting   State = "exporting"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Orchestrator ties planner, aggregator, generators and exporter together.
// It is the only component exposed to the boundary layer, and the only
// place allowed to decide degrade-vs-fail.
type Orchestrator struct {
	planner    *Planner
	aggregator *Aggregator
	answers    *AnswerGenerator
	guides     *GuideGenerator
	exporter   DocumentExporter
	logger     *log.Logger
}

func NewOrchestrator(planner *Planner, aggregator *Aggregator, answers *AnswerGenerator, guides *GuideGenerator, exporter DocumentExporter, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		planner:    planner,
		aggregator: aggregator,
		answers:    answers,
		guides:     guides,
		exporter:   exporter,
		logger:     logger,
	}
}

var caveatByLanguage = map[string]string{
	"it": "Nessuna fonte verificata era disponibile: la risposta si basa solo sulla conoscenza del modello.",
	"en": "No verified sources were available: this content is based on model knowledge only.",
	"es": "No había fuentes verificadas disponibles: este contenido se basa solo en el conocimiento del modelo.",
}

func sourcingCaveat(language string) string {
	if c, ok := caveatByLanguage[language]; ok {
		return c
	}
	return caveatByLanguage["en"]
}

// SubmitQuestion runs the qa branch. A total sourcing failure degrades to
// an unsourced answer with a caveat; it is never a request failure.
func (o *Orchestrator) SubmitQuestion(ctx context.Context, req Request) (QAResult, error) {
	id := uuid.New().String()
	start := time.Now()
	defer func() { requestDuration.WithLabelValues(string(ModeQA)).Observe(time.Since(start).Seconds()) }()

	o.transition(id, ModeQA, StateClassifying)
	plan, err := o.planner.Plan(req, ModeQA)
	if err != nil {
		o.fail(id, ModeQA, StateClassifying, err)
		return QAResult{}, err
	}

	o.transition(id, ModeQA, StateSearching)
	sources, caveat := o.collect(ctx, id, ModeQA, plan)

	o.transition(id, ModeQA, StateGenerating)
	answer, err := o.answers.Generate(ctx, req, plan.Language, o.aggregator.FormatContext(sources), sources)
	if err != nil {
		o.fail(id, ModeQA, StateGenerating, err)
		return QAResult{}, err
	}

	o.transition(id, ModeQA, StateDone)
	requestsTotal.WithLabelValues(string(ModeQA), "ok").Inc()
	return QAResult{
		Answer:  answer,
		Sources: ensureSources(sources),
		Mode:    ModeQA,
		Caveat:  caveat,
	}, nil
}

// SubmitGuideRequest runs the guide branch. The document is written before
// the result is returned; an export failure downgrades to done with the
// error flagged instead of dropping the guide data.
func (o *Orchestrator) SubmitGuideRequest(ctx context.Context, req Request) (GuideResult, error) {
	id := uuid.New().String()
	start := time.Now()
	defer func() { requestDuration.WithLabelValues(string(ModeGuide)).Observe(time.Since(start).Seconds()) }()

	if req.Question == "" {
		req.Question = req.Game
	}

	o.transition(id, ModeGuide, StateClassifying)
	plan, err := o.planner.Plan(req, ModeGuide)
	if err != nil {
		o.fail(id, ModeGuide, StateClassifying, err)
		return GuideResult{}, err
	}

	o.transition(id, ModeGuide, StateSearching)
	sources, caveat := o.collect(ctx, id, ModeGuide, plan)
	degraded := len(sources) == 0

	o.transition(id, ModeGuide, StateGenerating)
	guide, err := o.guides.Generate(ctx, req, plan.Language, o.aggregator.FormatContext(sources), sources, degraded)
	if err != nil {
		o.fail(id, ModeGuide, StateGenerating, err)
		return GuideResult{}, err
	}

	result := GuideResult{
		Guide:   guide,
		Sources: ensureSources(sources),
		Mode:    ModeGuide,
		Caveat:  caveat,
	}

	o.transition(id, ModeGuide, StateExporting)
	ref, err := o.exporter.Export(ctx, guide, sources, plan.Language)
	if err != nil {
		// Non-fatal: the structured guide still reaches the caller.
		o.logger.Printf("[%s] export failed: %v", id, err)
		result.ExportError = err.Error()
		requestsTotal.WithLabelValues(string(ModeGuide), "export_failed").Inc()
	} else {
		result.DocumentPath = ref.Path
		result.DocumentURL = ref.URL
		requestsTotal.WithLabelValues(string(ModeGuide), "ok").Inc()
	}

	o.transition(id, ModeGuide, StateDone)
	return result, nil
}

// Classify exposes the planner's deterministic mode inference for callers
// that submit free text without choosing an endpoint.
func (o *Orchestrator) Classify(req Request) Mode {
	return o.planner.Classify(req)
}

// collect runs the search stage and applies the degraded-continuation
// policy: partial results pass through, a total failure yields an empty
// source list plus a localized caveat.
func (o *Orchestrator) collect(ctx context.Context, id string, mode Mode, plan Plan) ([]Source, string) {
	sources, err := o.aggregator.Collect(ctx, plan.Queries, plan.Language)
	if err != nil {
		if errors.Is(err, ErrNoSources) {
			o.logger.Printf("[%s] degraded continuation: %v", id, err)
			degradedTotal.WithLabelValues(string(mode)).Inc()
			return nil, sourcingCaveat(plan.Language)
		}
		o.logger.Printf("[%s] partial sourcing failure: %v", id, err)
	}
	if len(sources) == 0 {
		degradedTotal.WithLabelValues(string(mode)).Inc()
		return nil, sourcingCaveat(plan.Language)
	}
	return sources, ""
}

func (o *Orchestrator) transition(id string, mode Mode, state State) {
	o.logger.Printf("[%s] %s -> %s", id, mode, state)
}

func (o *Orchestrator) fail(id string, mode Mode, state State, err error) {
	o.logger.Printf("[%s] %s failed at %s: %v", id, mode, state, err)
	outcome := "error"
	if errors.Is(err, ErrInvalidRequest) {
		outcome = "invalid"
	}
	requestsTotal.WithLabelValues(string(mode), outcome).Inc()
}

func ensureSources(sources []Source) []Source {
	if sources == nil {
		return []Source{}
	}
	return sources
}
