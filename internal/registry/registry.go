// Package registry holds the component catalog: the palette of node types
// the editor can create, their default props and styles, the events they
// expose and whether they accept children.
//
// The catalog is written in CUE. schema.cue constrains every entry and
// components.cue is the built-in palette; projects may add their own
// entries in a components.cue next to the manifest.
package registry

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/professor-lee/FalseClose/internal/model"
)

// schemaName is the file name schema positions are reported under.
const schemaName = "schema.cue"

//go:embed schema.cue
var schemaSource []byte

//go:embed components.cue
var builtinSource []byte

// Component is one palette entry.
type Component struct {
	Type            string    `json:"type"`
	DisplayName     string    `json:"displayName"`
	Category        string    `json:"category"`
	CanHaveChildren bool      `json:"canHaveChildren"`
	DefaultProps    model.Map `json:"defaultProps"`
	DefaultStyles   model.Map `json:"defaultStyles"`
	Events          []string  `json:"events"`
}

// Clone returns a deep copy.
func (c Component) Clone() Component {
	out := c
	out.DefaultProps = c.DefaultProps.Clone()
	out.DefaultStyles = c.DefaultStyles.Clone()
	out.Events = append([]string(nil), c.Events...)
	return out
}

// Registry is an ordered, read-only component catalog.
// Safe for concurrent use once built.
type Registry struct {
	components []Component
	byType     map[string]int
}

// Source is one CUE file fed to Load.
type Source struct {
	Name string
	Data []byte
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the built-in catalog. It is parsed once.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Load(Source{Name: "components.cue", Data: builtinSource})
	})
	return defaultReg, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded catalog
// as a programming error.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(fmt.Sprintf("registry: built-in catalog: %v", err))
	}
	return r
}

// Load unifies the sources with the catalog schema and builds a registry.
// Entries keep the order in which they are declared. Errors are
// *LoadError values naming the offending source.
func Load(sources ...Source) (*Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(schemaSource, cue.Filename(schemaName))
	if err := v.Err(); err != nil {
		return nil, inSource(formatCUEError(err), schemaName)
	}
	last := schemaName
	for _, src := range sources {
		sv := ctx.CompileBytes(src.Data, cue.Filename(src.Name))
		if err := sv.Err(); err != nil {
			return nil, inSource(formatCUEError(err), src.Name)
		}
		v = v.Unify(sv)
		last = src.Name
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, inSource(formatCUEError(err), last)
	}
	r, err := build(v.LookupPath(cue.ParsePath("components")))
	if err != nil {
		return nil, inSource(err, last)
	}
	return r, nil
}

// LoadFile reads a project catalog and unifies it with the built-in one,
// so a project can add components but not contradict existing entries.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(
		Source{Name: "components.cue", Data: builtinSource},
		Source{Name: path, Data: data},
	)
}

func build(v cue.Value) (*Registry, error) {
	r := &Registry{byType: make(map[string]int)}
	if !v.Exists() {
		return r, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		c, err := compileComponent(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		r.byType[c.Type] = len(r.components)
		r.components = append(r.components, c)
	}
	return r, nil
}

func compileComponent(name string, v cue.Value) (Component, error) {
	c := Component{Type: name}
	var err error

	if c.DisplayName, err = resolve(v.LookupPath(cue.ParsePath("displayName"))).String(); err != nil {
		return c, formatCUEError(err)
	}
	if c.Category, err = resolve(v.LookupPath(cue.ParsePath("category"))).String(); err != nil {
		return c, formatCUEError(err)
	}
	if c.CanHaveChildren, err = resolve(v.LookupPath(cue.ParsePath("canHaveChildren"))).Bool(); err != nil {
		return c, formatCUEError(err)
	}
	if c.DefaultProps, err = toMap(resolve(v.LookupPath(cue.ParsePath("defaultProps")))); err != nil {
		return c, err
	}
	if c.DefaultStyles, err = toMap(resolve(v.LookupPath(cue.ParsePath("defaultStyles")))); err != nil {
		return c, err
	}

	events, err := resolve(v.LookupPath(cue.ParsePath("events"))).List()
	if err != nil {
		return c, formatCUEError(err)
	}
	for events.Next() {
		name, err := events.Value().String()
		if err != nil {
			return c, formatCUEError(err)
		}
		c.Events = append(c.Events, name)
	}
	return c, nil
}

// resolve picks the default of a disjunction such as `bool | *false`.
func resolve(v cue.Value) cue.Value {
	if d, ok := v.Default(); ok {
		return d
	}
	return v
}

func toMap(v cue.Value) (model.Map, error) {
	var m model.Map
	iter, err := v.Fields()
	if err != nil {
		return m, formatCUEError(err)
	}
	for iter.Next() {
		val, err := toValue(resolve(iter.Value()))
		if err != nil {
			return m, err
		}
		m.Set(iter.Label(), val)
	}
	return m, nil
}

// toValue converts a concrete CUE value, keeping struct field order.
func toValue(v cue.Value) (model.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return model.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return model.Bool(b), nil
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return model.Number(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return model.String(s), nil
	case cue.ListKind:
		items, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		list := model.List{}
		for items.Next() {
			item, err := toValue(resolve(items.Value()))
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		return list, nil
	case cue.StructKind:
		return toMap(v)
	default:
		return nil, &LoadError{
			Field:   v.Path().String(),
			Message: fmt.Sprintf("unsupported value kind %s", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// Lookup returns a copy of the component registered under typeTag.
func (r *Registry) Lookup(typeTag string) (Component, bool) {
	i, ok := r.byType[typeTag]
	if !ok {
		return Component{}, false
	}
	return r.components[i].Clone(), true
}

// CanHaveChildren reports whether nodes of typeTag accept children.
// known is false for types the catalog does not describe.
func (r *Registry) CanHaveChildren(typeTag string) (can, known bool) {
	i, ok := r.byType[typeTag]
	if !ok {
		return false, false
	}
	return r.components[i].CanHaveChildren, true
}

// Components returns copies of every entry in declaration order.
func (r *Registry) Components() []Component {
	out := make([]Component, len(r.components))
	for i, c := range r.components {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.components)
}

// LoadError reports an invalid catalog entry. Source names the catalog
// being loaded when the error carries no position of its own.
type LoadError struct {
	Source  string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	loc := e.Source
	if e.Pos.IsValid() {
		loc = fmt.Sprintf("%s:%d:%d", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column())
		if e.Source != "" && e.Pos.Filename() != e.Source {
			loc = e.Source + ": " + loc
		}
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Field, e.Message)
}

// inSource fills in the source of a *LoadError that has none.
func inSource(err error, name string) error {
	if le, ok := err.(*LoadError); ok && le.Source == "" {
		le.Source = name
	}
	return err
}

// formatCUEError turns a CUE error into a *LoadError, keeping the path and
// the best position found in the error list. Positions outside the schema
// are preferred.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Field: "cue", Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Field: "cue", Message: first.Error()}
	if path := first.Path(); len(path) > 0 {
		format, args := first.Msg()
		le.Field = strings.Join(path, ".")
		le.Message = fmt.Sprintf(format, args...)
	}
	var fallback token.Pos
	for _, e := range errs {
		for _, pos := range errors.Positions(e) {
			if !pos.IsValid() {
				continue
			}
			if pos.Filename() != schemaName {
				le.Pos = pos
				return le
			}
			if !fallback.IsValid() {
				fallback = pos
			}
		}
	}
	le.Pos = fallback
	return le
}
