// Package model holds the decoded instance tree shared by every model
// container format.
//
// A Forest is an arena: nodes live in one slice and refer to each other by
// Handle. Parent and child edges are indices, so the tree cannot hold
// reference cycles and a Forest can be handed to another goroutine once the
// decoder returns it.
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateReference is returned when a reference id is added twice.
	ErrDuplicateReference = errors.New("duplicate reference")

	// ErrInvalidHandle is returned for handles that do not name a node.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrAlreadyParented is returned when attaching a node that already has
	// a parent.
	ErrAlreadyParented = errors.New("node already has a parent")

	// ErrCycle is returned when an attachment would make a node its own
	// ancestor.
	ErrCycle = errors.New("attachment forms a cycle")
)

// Handle indexes a node within a Forest.
type Handle int32

// NoHandle marks the absence of a node, e.g. the parent of a root.
const NoHandle Handle = -1

// Instance is one node of the tree.
type Instance struct {
	ClassName  string
	Reference  string
	IsService  bool
	Properties map[string]Value
	Parent     Handle
	Children   []Handle
}

// Forest is an arena of instances plus an index from reference id to handle.
type Forest struct {
	nodes    []Instance
	index    map[string]Handle
	Metadata map[string]string

	// up points each node at an ancestor, or at itself for a root. Find
	// follows it to the root and shortens the path as it goes.
	up []Handle
}

// NewForest creates an empty forest sized for about capacity nodes.
func NewForest(capacity int) *Forest {
	if capacity < 0 {
		capacity = 0
	}
	return &Forest{
		nodes: make([]Instance, 0, capacity),
		index: make(map[string]Handle, capacity),
		up:    make([]Handle, 0, capacity),
	}
}

// Len returns the number of nodes.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Add creates a parentless node.
func (f *Forest) Add(className, reference string) (Handle, error) {
	if _, ok := f.index[reference]; ok {
		return NoHandle, fmt.Errorf("add %s %q: %w", className, reference, ErrDuplicateReference)
	}
	h := Handle(len(f.nodes))
	f.nodes = append(f.nodes, Instance{
		ClassName:  className,
		Reference:  reference,
		Properties: make(map[string]Value),
		Parent:     NoHandle,
	})
	f.up = append(f.up, h)
	f.index[reference] = h
	return h, nil
}

// Lookup finds the node carrying a reference id.
func (f *Forest) Lookup(reference string) (Handle, bool) {
	h, ok := f.index[reference]
	return h, ok
}

func (f *Forest) valid(h Handle) bool {
	return h >= 0 && int(h) < len(f.nodes)
}

// Node returns the node for h, or nil if h is out of range. The pointer is
// invalidated by the next Add.
func (f *Forest) Node(h Handle) *Instance {
	if !f.valid(h) {
		return nil
	}
	return &f.nodes[h]
}

// SetProperty assigns a property on the node for h.
func (f *Forest) SetProperty(h Handle, name string, v Value) error {
	if !f.valid(h) {
		return fmt.Errorf("set property %q on %d: %w", name, h, ErrInvalidHandle)
	}
	f.nodes[h].Properties[name] = v
	return nil
}

// Attach appends child to parent's children. A node keeps its first parent:
// re-parenting and cycles are rejected so the arena always stays a forest.
func (f *Forest) Attach(parent, child Handle) error {
	if !f.valid(parent) || !f.valid(child) {
		return fmt.Errorf("attach %d to %d: %w", child, parent, ErrInvalidHandle)
	}
	if f.nodes[child].Parent != NoHandle {
		return fmt.Errorf("attach %q to %q: %w", f.nodes[child].Reference, f.nodes[parent].Reference, ErrAlreadyParented)
	}
	// child is a root here, so a cycle forms only if it is parent's root.
	if f.root(parent) == child {
		return fmt.Errorf("attach %q to %q: %w", f.nodes[child].Reference, f.nodes[parent].Reference, ErrCycle)
	}
	f.nodes[child].Parent = parent
	f.nodes[parent].Children = append(f.nodes[parent].Children, child)
	f.up[child] = parent
	return nil
}

// root returns the root of h's tree, halving the path on the way up.
func (f *Forest) root(h Handle) Handle {
	for f.up[h] != h {
		f.up[h] = f.up[f.up[h]]
		h = f.up[h]
	}
	return h
}

// Roots returns every node that is nobody's child, in creation order.
func (f *Forest) Roots() []Handle {
	var roots []Handle
	for i := range f.nodes {
		if f.nodes[i].Parent == NoHandle {
			roots = append(roots, Handle(i))
		}
	}
	return roots
}

// Walk visits every node depth-first in pre-order, starting from each root
// in turn. Returning false from fn skips that node's children.
func (f *Forest) Walk(fn func(h Handle, depth int) bool) {
	type frame struct {
		h     Handle
		depth int
	}
	roots := f.Roots()
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.h, top.depth) {
			continue
		}
		children := f.nodes[top.h].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], top.depth + 1})
		}
	}
}
