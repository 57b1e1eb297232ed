package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/professor-lee/FalseClose/internal/codegen"
	"github.com/professor-lee/FalseClose/internal/model"
)

// TraceSnapshot captures the trace and final pages of a scenario.
// It is serialized with canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string        `json:"scenario_name"`
	Trace        []TraceEvent  `json:"trace"`
	Pages        []*model.Page `json:"pages"`
}

// toCanonicalValue converts a TraceSnapshot into a model.Value for
// canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalValue() model.Map {
	trace := make(model.List, len(s.Trace))
	for i, ev := range s.Trace {
		m := model.NewMap(
			model.P("step", model.Number(ev.Step)),
			model.P("op", model.String(ev.Op)),
			model.P("pointer", model.Number(ev.Pointer)),
		)
		if ev.Page != "" {
			m.Set("page", model.String(ev.Page))
		}
		if ev.Node != "" {
			m.Set("node", model.String(ev.Node))
		}
		if len(ev.Removed) > 0 {
			removed := make(model.List, len(ev.Removed))
			for j, id := range ev.Removed {
				removed[j] = model.String(id)
			}
			m.Set("removed", removed)
		}
		if ev.Error != "" {
			m.Set("error", model.String(ev.Error))
		}
		if ev.Noop {
			m.Set("noop", model.Bool(true))
		}
		trace[i] = m
	}

	pages := make(model.List, len(s.Pages))
	for i, p := range s.Pages {
		pages[i] = model.PageValue(p)
	}
	return model.NewMap(
		model.P("scenario_name", model.String(s.ScenarioName)),
		model.P("trace", trace),
		model.P("pages", pages),
	)
}

// RunWithGolden executes a scenario and compares its trace and final pages
// against testdata/golden/{scenario.Name}.golden, and the generated
// document of the current page against {scenario.Name}.vue.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// The returned error reports a scenario that could not run. Scenario
// failures and golden mismatches fail t.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) error {
	t.Helper()

	h, result, err := execute(scenario, opts...)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	if err := AssertGolden(t, scenario.Name, result, h.editor.Pages()); err != nil {
		return err
	}

	page, ok := h.editor.CurrentPage()
	if !ok {
		return nil
	}
	doc := codegen.Document(codegen.Generate(page, codegen.Config{
		UILibrary:    h.editor.UILibrary(),
		GlobalStyles: h.editor.GlobalStyles(),
	}))
	newGoldie(t).Assert(t, scenario.Name+".vue", []byte(doc))
	return nil
}

// AssertGolden compares a result's trace and the given pages against a
// golden file, without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result, pages []*model.Page) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Pages:        pages,
	}
	data, err := model.MarshalCanonical(snapshot.toCanonicalValue())
	if err != nil {
		return err
	}
	newGoldie(t).Assert(t, scenarioName, data)
	return nil
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}
