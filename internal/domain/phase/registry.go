package phase

import (
	"errors"
	"fmt"
	"sort"

	"github.com/groundwork-cli/groundwork/internal/domain/step"
)

// Errors for registry operations.
var (
	ErrDuplicateStep  = errors.New("step with this ID already registered")
	ErrUnknownPhase   = errors.New("unknown phase")
	ErrEmptySelection = errors.New("phase selection is empty")
	ErrPhaseMismatch  = errors.New("step declares a different owning phase")
)

// Group is one phase together with its steps in declared order.
type Group struct {
	Phase Phase
	Steps []step.Step
}

// Registry is the statically declared, ordered catalog of all steps.
// Built once at program startup; phases execute in ascending numeric
// order, and steps within a phase in the order they were registered
// (not alphabetical, since later steps may depend on earlier ones in
// the same script).
type Registry struct {
	groups map[int]*Group
	seen   map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		groups: make(map[int]*Group),
		seen:   make(map[string]struct{}),
	}
}

// Register adds steps to the given phase, preserving declaration order.
// Each step must declare the phase it is registered under, and step IDs
// must be unique across the whole registry.
func (r *Registry) Register(ph Phase, steps ...step.Step) error {
	group, ok := r.groups[ph.Number()]
	if !ok {
		group = &Group{Phase: ph}
		r.groups[ph.Number()] = group
	} else if !group.Phase.Equals(ph) {
		return fmt.Errorf("phase number %02d already registered as %q", ph.Number(), group.Phase.Identifier())
	}

	for _, s := range steps {
		if s.Phase() != ph.Identifier() {
			return fmt.Errorf("%w: step %q declares %q, registered under %q",
				ErrPhaseMismatch, s.ID().String(), s.Phase(), ph.Identifier())
		}
		key := s.ID().String()
		if _, dup := r.seen[key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateStep, key)
		}
		r.seen[key] = struct{}{}
		group.Steps = append(group.Steps, s)
	}

	return nil
}

// Phases returns all registered phases in execution order.
func (r *Registry) Phases() []Phase {
	phases := make([]Phase, 0, len(r.groups))
	for _, g := range r.groups {
		phases = append(phases, g.Phase)
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i].Before(phases[j]) })
	return phases
}

// Len returns the total number of registered steps.
func (r *Registry) Len() int {
	return len(r.seen)
}

// All returns every phase group in execution order.
func (r *Registry) All() []Group {
	groups := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Phase.Before(groups[j].Phase) })
	return groups
}

// Select resolves a phase-subset selection. A nil selection means all
// registered phases. An empty or unknown identifier is a configuration
// error: it is reported before any step executes, and nothing runs.
// Global ordering is preserved regardless of the order identifiers are
// given in.
func (r *Registry) Select(identifiers []string) ([]Group, error) {
	if identifiers == nil {
		return r.All(), nil
	}
	if len(identifiers) == 0 {
		return nil, ErrEmptySelection
	}

	wanted := make(map[int]struct{}, len(identifiers))
	for _, ident := range identifiers {
		ph, err := Parse(ident)
		if err != nil {
			return nil, err
		}
		group, ok := r.groups[ph.Number()]
		if !ok || !group.Phase.Equals(ph) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPhase, ident)
		}
		wanted[ph.Number()] = struct{}{}
	}

	groups := make([]Group, 0, len(wanted))
	for _, g := range r.All() {
		if _, ok := wanted[g.Phase.Number()]; ok {
			groups = append(groups, g)
		}
	}
	return groups, nil
}
