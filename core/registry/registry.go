// Package registry holds the block types known to the pipeline.
package registry

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"go.uber.org/multierr"

	"github.com/gaurav-prasanna/blockpipe/core"
)

// ErrInvalidBlockType is wrapped by every registration error.
var ErrInvalidBlockType = errors.New("invalid block type")

var blockName = regexp.MustCompile(`^[a-z][a-z0-9-]*/[a-z][a-z0-9-]*$`)

// Registry is an in-memory core.Registry, safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*core.BlockType
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{types: map[string]*core.BlockType{}}
}

// Register adds block types. Every problem with a type is reported; types
// with problems are not registered.
func (r *Registry) Register(types ...*core.BlockType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	for _, bt := range types {
		if problems := r.check(bt); problems != nil {
			err = multierr.Append(err, problems)
			continue
		}
		r.types[bt.Name] = bt
	}
	return err
}

func (r *Registry) check(bt *core.BlockType) error {
	if bt == nil {
		return fmt.Errorf("%w: nil", ErrInvalidBlockType)
	}
	var err error
	if !blockName.MatchString(bt.Name) {
		err = multierr.Append(err, fmt.Errorf("%w: name %q must be namespace/name", ErrInvalidBlockType, bt.Name))
	}
	if _, exists := r.types[bt.Name]; exists {
		err = multierr.Append(err, fmt.Errorf("%w: %q is already registered", ErrInvalidBlockType, bt.Name))
	}
	err = multierr.Append(err, checkSchemas(bt.Name, "", bt.Attributes))
	for i, d := range bt.Deprecations {
		err = multierr.Append(err, checkSchemas(bt.Name, fmt.Sprintf("deprecation %d ", i), d.Attributes))
	}
	return err
}

func checkSchemas(name, scope string, schemas map[string]*core.AttributeSchema) error {
	var err error
	for key, schema := range schemas {
		switch {
		case schema == nil:
			err = multierr.Append(err, fmt.Errorf("%w: %s %sattribute %q has no schema", ErrInvalidBlockType, name, scope, key))
		case schema.Source == core.SourceAttribute && schema.Attribute == "":
			err = multierr.Append(err, fmt.Errorf("%w: %s %sattribute %q reads no html attribute", ErrInvalidBlockType, name, scope, key))
		case schema.Source == core.SourceQuery:
			err = multierr.Append(err, checkSchemas(name, scope+key+" ", schema.Query))
		}
	}
	return err
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(types ...*core.BlockType) {
	if err := r.Register(types...); err != nil {
		panic(err)
	}
}

// Unregister removes a block type, reporting whether it was registered.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.types[name]
	delete(r.types, name)
	return ok
}

// Lookup implements core.Registry.
func (r *Registry) Lookup(name string) (*core.BlockType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bt, ok := r.types[name]
	return bt, ok
}

// Names returns the registered block names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
