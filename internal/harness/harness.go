package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/professor-lee/FalseClose/internal/editor"
	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/registry"
	"github.com/professor-lee/FalseClose/internal/testutil"
)

// DefaultPageID is the page a scenario without a project starts on.
const DefaultPageID = "home"

// Harness is the scenario execution engine.
// It runs scenarios with deterministic ids and timestamps.
type Harness struct {
	editor   *editor.ProjectContext
	executor *Executor
	registry *registry.Registry
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithRegistry replaces the builtin component catalog.
func WithRegistry(r *registry.Registry) Option {
	return func(h *Harness) {
		h.registry = r
	}
}

// WithLogger sets the logger given to the editor. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh editor. Edit failures are reported in the
// result; the returned error is reserved for scenarios that cannot be set
// up at all.
//
// Execution flow:
// 1. Load the starting project
// 2. Apply steps, stopping at the first unexpected outcome
// 3. Evaluate assertions
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	_, result, err := execute(scenario, opts...)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func execute(scenario *Scenario, opts ...Option) (*Harness, *Result, error) {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	if h.registry == nil {
		reg, err := registry.Default()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load component registry: %w", err)
		}
		h.registry = reg
	}

	h.editor = editor.New(
		editor.WithIDGenerator(testutil.NewSequenceIDs("n")),
		editor.WithClock(testutil.NewFixedClock(testutil.Epoch, 0)),
		editor.WithRegistry(h.registry),
		editor.WithLogger(h.logger),
	)
	h.editor.Load(startingManifest(scenario.Project))
	h.executor = NewExecutor(h.editor)

	result := NewResult()
	for _, st := range scenario.Steps {
		ev, err := h.executor.Apply(st)
		result.AddTrace(ev)
		if err != nil {
			result.AddError(err.Error())
			break
		}
	}
	result.Refs = h.executor.Refs()

	actx := &AssertionContext{
		Editor:   h.editor,
		Executor: h.executor,
		Trace:    result.Trace,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return h, result, nil
}

func startingManifest(ps *ProjectSpec) *model.Manifest {
	m := &model.Manifest{
		MetaVersion: model.MetaVersion,
		ProjectName: "scenario",
	}
	if ps == nil {
		m.Pages = []*model.Page{{ID: DefaultPageID, Name: "Home", Route: "/"}}
		return m
	}
	m.UILibrary = ps.UILibrary
	m.GlobalStyles = ps.GlobalStyles.Clone()
	for _, p := range ps.Pages {
		route := p.Route
		if route == "" {
			route = "/"
		}
		m.Pages = append(m.Pages, &model.Page{ID: p.ID, Name: p.Name, Route: route})
	}
	return m
}
