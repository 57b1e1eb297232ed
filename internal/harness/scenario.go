package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/professor-lee/FalseClose/internal/model"
)

// Scenario defines an edit scenario.
// A scenario sets up a project, applies Steps in order and then checks
// Assertions against the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Project is the starting project. Nil means a single empty page with
	// id "home" at "/".
	Project *ProjectSpec `yaml:"project,omitempty"`

	// Steps are the edits to apply.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// ProjectSpec describes the project a scenario starts from.
type ProjectSpec struct {
	UILibrary    string     `yaml:"ui_library,omitempty"`
	GlobalStyles model.Map  `yaml:"global_styles,omitempty"`
	Pages        []PageSpec `yaml:"pages"`
}

// PageSpec is an empty starting page.
type PageSpec struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Route string `yaml:"route"`
}

// Script is a bare list of steps, the input of `pagebuilder apply`.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one edit.
type Step struct {
	// Op is the operation, one of the Op* constants.
	Op string `yaml:"op"`

	// Page is the target page (alias or id). Empty means the current page.
	Page string `yaml:"page,omitempty"`

	// Node is the target node (alias or id).
	Node string `yaml:"node,omitempty"`

	// Type is the component type for create and update.
	Type string `yaml:"type,omitempty"`

	// Parent is the parent (alias or id) for create and move. Empty means
	// the page root.
	Parent string `yaml:"parent,omitempty"`

	// Index is the position among siblings. Absent appends.
	Index *int `yaml:"index,omitempty"`

	Props  model.Map    `yaml:"props,omitempty"`
	Styles model.Map    `yaml:"styles,omitempty"`
	Events model.Events `yaml:"events,omitempty"`

	// Defaults creates the node from the registry's default props and
	// styles. It cannot be combined with props or styles.
	Defaults bool `yaml:"defaults,omitempty"`

	// Key and Value are the entry written by set_prop and set_style.
	Key   string `yaml:"key,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// Name and Route describe the page made by create_page.
	Name  string `yaml:"name,omitempty"`
	Route string `yaml:"route,omitempty"`

	// As binds the id created by create or create_page to an alias.
	As string `yaml:"as,omitempty"`

	// ExpectError is the error code the step must fail with
	// (INVALID_INPUT, NOT_FOUND, CYCLE_REJECTED). Empty means success.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpCreate     = "create"
	OpDelete     = "delete"
	OpUpdate     = "update"
	OpSetProp    = "set_prop"
	OpSetStyle   = "set_style"
	OpMove       = "move"
	OpUndo       = "undo"
	OpRedo       = "redo"
	OpCreatePage = "create_page"
	OpDeletePage = "delete_page"
	OpSwitchPage = "switch_page"
)

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Page is the page to inspect. Empty means the current page.
	Page string `yaml:"page,omitempty"`

	// Node is the node to inspect.
	Node string `yaml:"node,omitempty"`

	// Nodes is the expected id list for children, root_order and
	// descendants.
	Nodes []string `yaml:"nodes,omitempty"`

	// Key and Value are checked by prop and style. Value alone is the
	// expected type for node_type.
	Key   string `yaml:"key,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// Count is the expected node count.
	Count *int `yaml:"count,omitempty"`

	// Text is searched for by the *_contains and *_excludes assertions.
	Text string `yaml:"text,omitempty"`

	// History fields. Unset fields are not checked.
	Pointer *int  `yaml:"pointer,omitempty"`
	Length  *int  `yaml:"length,omitempty"`
	CanUndo *bool `yaml:"can_undo,omitempty"`
	CanRedo *bool `yaml:"can_redo,omitempty"`
}

// Assertion type constants.
const (
	AssertNodeExists     = "node_exists"
	AssertNodeAbsent     = "node_absent"
	AssertNodeType       = "node_type"
	AssertChildren       = "children"
	AssertRootOrder      = "root_order"
	AssertDescendants    = "descendants"
	AssertProp           = "prop"
	AssertStyle          = "style"
	AssertNodeCount      = "node_count"
	AssertHistory        = "history"
	AssertMarkupContains = "markup_contains"
	AssertMarkupExcludes = "markup_excludes"
	AssertScriptContains = "script_contains"
	AssertStyleContains  = "style_contains"
	AssertValid          = "valid"
)

var knownOps = map[string]bool{
	OpCreate: true, OpDelete: true, OpUpdate: true, OpSetProp: true, OpSetStyle: true,
	OpMove: true, OpUndo: true, OpRedo: true,
	OpCreatePage: true, OpDeletePage: true, OpSwitchPage: true,
}

var knownAssertions = map[string]bool{
	AssertNodeExists: true, AssertNodeAbsent: true, AssertNodeType: true,
	AssertChildren: true, AssertRootOrder: true, AssertDescendants: true,
	AssertProp: true, AssertStyle: true, AssertNodeCount: true, AssertHistory: true,
	AssertMarkupContains: true, AssertMarkupExcludes: true,
	AssertScriptContains: true, AssertStyleContains: true, AssertValid: true,
}

var knownErrorCodes = map[string]bool{
	"INVALID_INPUT":  true,
	"NOT_FOUND":      true,
	"CYCLE_REJECTED": true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := decodeStrict(data, &scenario); err != nil {
		return nil, err
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScript reads a step list for `pagebuilder apply`.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	var script Script
	if err := decodeStrict(data, &script); err != nil {
		return nil, err
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("invalid script: steps list is required and must be non-empty")
	}
	if err := validateSteps(script.Steps); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &script, nil
}

// decodeStrict rejects unknown fields (catches typos like "assertion:" vs
// "assertions:").
func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("steps list is required and must be non-empty")
	}
	if s.Project != nil {
		if len(s.Project.Pages) == 0 {
			return errors.New("project.pages must be non-empty")
		}
		seen := make(map[string]bool)
		for i, p := range s.Project.Pages {
			if p.ID == "" {
				return fmt.Errorf("project.pages[%d]: id is required", i)
			}
			if seen[p.ID] {
				return fmt.Errorf("project.pages[%d]: duplicate id %q", i, p.ID)
			}
			seen[p.ID] = true
		}
	}
	if err := validateSteps(s.Steps); err != nil {
		return err
	}
	for i, a := range s.Assertions {
		if !knownAssertions[a.Type] {
			return fmt.Errorf("assertions[%d]: unknown type %q", i, a.Type)
		}
	}
	return nil
}

func validateSteps(steps []Step) error {
	for i, st := range steps {
		if err := validateStep(st); err != nil {
			return fmt.Errorf("steps[%d] (%s): %w", i, st.Op, err)
		}
	}
	return nil
}

func validateStep(st Step) error {
	if !knownOps[st.Op] {
		return fmt.Errorf("unknown op %q", st.Op)
	}
	if st.ExpectError != "" && !knownErrorCodes[st.ExpectError] {
		return fmt.Errorf("unknown expect_error code %q", st.ExpectError)
	}
	switch st.Op {
	case OpCreate:
		if st.Defaults && (st.Props.Len() > 0 || st.Styles.Len() > 0) {
			return errors.New("defaults cannot be combined with props or styles")
		}
	case OpDelete, OpUpdate, OpMove:
		if st.Node == "" {
			return errors.New("node is required")
		}
	case OpSetProp, OpSetStyle:
		if st.Node == "" || st.Key == "" {
			return errors.New("node and key are required")
		}
	case OpDeletePage, OpSwitchPage:
		if st.Page == "" {
			return errors.New("page is required")
		}
	}
	if st.As != "" && st.Op != OpCreate && st.Op != OpCreatePage {
		return errors.New("as is only valid on create and create_page")
	}
	return nil
}
