// Package circuit provides the user-facing circuit representation and
// the solver adapting it to MNA for a given pulsation.
package circuit

import (
	"errors"
	"fmt"

	"github.com/Jacajack/myspice/pkg/device"
)

var (
	// ErrUnknownReference reports a query for a reference not present
	// in the circuit.
	ErrUnknownReference = errors.New("circuit: unknown component reference")
	// ErrDuplicateReference reports an attempt to add a component under
	// an already used reference.
	ErrDuplicateReference = errors.New("circuit: duplicate component reference")
)

// Circuit is an insertion-ordered collection of referenced components.
//
// Iteration order determines the MNA branch index of voltage sources
// and op-amps, so it must stay stable across solves. An unordered map
// would make the solution layout non-deterministic.
type Circuit struct {
	refs  []string
	comps map[string]device.Component
}

func New() *Circuit {
	return &Circuit{comps: make(map[string]device.Component)}
}

// Add appends a component under a unique reference.
func (c *Circuit) Add(ref string, comp device.Component) error {
	if _, exists := c.comps[ref]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateReference, ref)
	}
	c.refs = append(c.refs, ref)
	c.comps[ref] = comp
	return nil
}

// Get returns the component registered under ref.
func (c *Circuit) Get(ref string) (device.Component, error) {
	comp, ok := c.comps[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReference, ref)
	}
	return comp, nil
}

// Refs returns the component references in insertion order.
func (c *Circuit) Refs() []string {
	refs := make([]string, len(c.refs))
	copy(refs, c.refs)
	return refs
}

// Len returns the number of components.
func (c *Circuit) Len() int {
	return len(c.refs)
}

// each walks the circuit in insertion order.
func (c *Circuit) each(f func(ref string, comp device.Component)) {
	for _, ref := range c.refs {
		f(ref, c.comps[ref])
	}
}
