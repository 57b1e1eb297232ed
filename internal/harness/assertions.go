package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/professor-lee/FalseClose/internal/codegen"
	"github.com/professor-lee/FalseClose/internal/editor"
	"github.com/professor-lee/FalseClose/internal/model"
	"github.com/professor-lee/FalseClose/internal/tree"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s page=%s node=%s", ev.Step, ev.Op, ev.Page, ev.Node)
			if ev.Error != "" {
				fmt.Fprintf(&buf, " error=%s", ev.Error)
			}
			fmt.Fprintf(&buf, " pointer=%d\n", ev.Pointer)
		}
	}
	return buf.String()
}

// AssertionContext is the state assertions are evaluated against.
type AssertionContext struct {
	Editor   *editor.ProjectContext
	Executor *Executor
	Trace    []TraceEvent
}

// EvaluateAssertions checks every assertion and returns the failure
// messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(a, actx); err != nil {
			if ae, ok := err.(*AssertionError); ok {
				ae.Trace = actx.Trace
			}
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i+1, err))
		}
	}
	return errs
}

func evaluate(a Assertion, actx *AssertionContext) error {
	x := actx.Executor
	ed := actx.Editor
	pageID := x.PageID(a.Page)
	nodeID := x.Resolve(a.Node)

	fail := func(expected string, actual any) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: fmt.Sprint(actual)}
	}

	if a.Type == AssertHistory {
		return assertHistory(a, ed, fail)
	}
	if a.Type == AssertValid {
		return assertValid(ed, a.Page == "", pageID, fail)
	}

	page, ok := ed.Page(pageID)
	if !ok {
		return fail("page "+pageID+" to exist", "no such page")
	}

	switch a.Type {
	case AssertNodeExists:
		if page.Node(nodeID) == nil {
			return fail("node "+nodeID+" to exist", "absent")
		}
	case AssertNodeAbsent:
		if page.Node(nodeID) != nil {
			return fail("node "+nodeID+" to be absent", "present")
		}
	case AssertNodeType:
		n := page.Node(nodeID)
		if n == nil {
			return fail("node "+nodeID+" to exist", "absent")
		}
		if want := fmt.Sprint(a.Value); n.Type != want {
			return fail("type "+want, n.Type)
		}
	case AssertChildren:
		n := page.Node(nodeID)
		if n == nil {
			return fail("node "+nodeID+" to exist", "absent")
		}
		return compareIDs(x, a.Nodes, n.Children, fail)
	case AssertRootOrder:
		return compareIDs(x, a.Nodes, page.RootOrder, fail)
	case AssertDescendants:
		return compareIDs(x, a.Nodes, tree.DescendantsOf(page, nodeID), fail)
	case AssertProp, AssertStyle:
		n := page.Node(nodeID)
		if n == nil {
			return fail("node "+nodeID+" to exist", "absent")
		}
		return assertEntry(a, n, fail)
	case AssertNodeCount:
		if a.Count == nil {
			return fail("count to be set", "missing")
		}
		if len(page.Nodes) != *a.Count {
			return fail(fmt.Sprintf("%d nodes", *a.Count), len(page.Nodes))
		}
	case AssertMarkupContains, AssertMarkupExcludes, AssertScriptContains, AssertStyleContains:
		return assertGenerated(a, ed, page, fail)
	default:
		return fail("a known assertion type", a.Type)
	}
	return nil
}

func compareIDs(x *Executor, refs, actual []string, fail func(string, any) error) error {
	want := make([]string, len(refs))
	for i, r := range refs {
		want[i] = x.Resolve(r)
	}
	if !slices.Equal(want, actual) {
		return fail(fmt.Sprint(want), fmt.Sprint(actual))
	}
	return nil
}

func assertEntry(a Assertion, n *model.Node, fail func(string, any) error) error {
	m := n.Props
	if a.Type == AssertStyle {
		m = n.Styles
	}
	got, ok := m.Get(a.Key)
	if a.Value == nil {
		if ok {
			return fail(a.Key+" to be unset", model.Text(got))
		}
		return nil
	}
	want, err := model.FromAny(a.Value)
	if err != nil {
		return fail("a valid expected value", err)
	}
	if !ok {
		return fail(fmt.Sprintf("%s = %s", a.Key, model.Text(want)), "unset")
	}
	if !model.ValuesEqual(want, got) {
		return fail(fmt.Sprintf("%s = %s", a.Key, model.Text(want)), model.Text(got))
	}
	return nil
}

func assertHistory(a Assertion, ed *editor.ProjectContext, fail func(string, any) error) error {
	if a.Pointer != nil && ed.HistoryPointer() != *a.Pointer {
		return fail(fmt.Sprintf("pointer %d", *a.Pointer), ed.HistoryPointer())
	}
	if a.Length != nil && ed.HistoryLen() != *a.Length {
		return fail(fmt.Sprintf("length %d", *a.Length), ed.HistoryLen())
	}
	if a.CanUndo != nil && ed.CanUndo() != *a.CanUndo {
		return fail(fmt.Sprintf("can_undo %t", *a.CanUndo), ed.CanUndo())
	}
	if a.CanRedo != nil && ed.CanRedo() != *a.CanRedo {
		return fail(fmt.Sprintf("can_redo %t", *a.CanRedo), ed.CanRedo())
	}
	return nil
}

func assertValid(ed *editor.ProjectContext, all bool, pageID string, fail func(string, any) error) error {
	var pages []*model.Page
	if all {
		pages = ed.Pages()
	} else {
		p, ok := ed.Page(pageID)
		if !ok {
			return fail("page "+pageID+" to exist", "no such page")
		}
		pages = []*model.Page{p}
	}
	var violations []string
	for _, p := range pages {
		for _, v := range tree.Validate(p) {
			violations = append(violations, v.String())
		}
	}
	if len(violations) > 0 {
		return fail("no invariant violations", strings.Join(violations, "; "))
	}
	return nil
}

func assertGenerated(a Assertion, ed *editor.ProjectContext, page *model.Page, fail func(string, any) error) error {
	out := codegen.Generate(page, codegen.Config{
		UILibrary:    ed.UILibrary(),
		GlobalStyles: ed.GlobalStyles(),
	})
	var blob, part string
	switch a.Type {
	case AssertScriptContains:
		blob, part = out.Script, "script"
	case AssertStyleContains:
		blob, part = out.Style, "style"
	default:
		blob, part = out.Markup, "markup"
	}
	found := strings.Contains(blob, a.Text)
	if a.Type == AssertMarkupExcludes {
		if found {
			return fail(fmt.Sprintf("%s without %q", part, a.Text), blob)
		}
		return nil
	}
	if !found {
		return fail(fmt.Sprintf("%s containing %q", part, a.Text), blob)
	}
	return nil
}
