// Package chain evaluates an ordered list of named reject predicates with
// first-match short-circuit, keeping cascade precedence explicit.
package chain

import "fmt"

// Stage is one named predicate. Result is what the cascade reports when the
// stage rejects its input.
type Stage[T, R any] struct {
	Name    string
	Result  R
	Enabled bool
	Rejects func(T) bool
}

type Cascade[T, R any] struct {
	stages []Stage[T, R]
}

func NewCascade[T, R any](stages ...Stage[T, R]) (*Cascade[T, R], error) {
	c := &Cascade[T, R]{}
	for _, s := range stages {
		if err := c.AddStage(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddStage appends a stage at the lowest precedence.
func (c *Cascade[T, R]) AddStage(s Stage[T, R]) error {
	if s.Name == "" {
		return fmt.Errorf("stage at index %d has no name", len(c.stages))
	}
	if s.Rejects == nil {
		return fmt.Errorf("stage %s has no predicate", s.Name)
	}
	for _, existing := range c.stages {
		if existing.Name == s.Name {
			return fmt.Errorf("duplicate stage %s", s.Name)
		}
	}
	c.stages = append(c.stages, s)
	return nil
}

// Evaluate runs enabled stages in order and returns the first that rejects.
// Later stages are not evaluated once one rejects.
func (c *Cascade[T, R]) Evaluate(in T) (Stage[T, R], bool) {
	for _, s := range c.stages {
		if !s.Enabled {
			continue
		}
		if s.Rejects(in) {
			return s, true
		}
	}
	return Stage[T, R]{}, false
}

func (c *Cascade[T, R]) StageCount() int {
	return len(c.stages)
}

func (c *Cascade[T, R]) GetStageNames() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name
	}
	return names
}

// EnabledStageNames lists the stages that take part in evaluation, in order.
func (c *Cascade[T, R]) EnabledStageNames() []string {
	var names []string
	for _, s := range c.stages {
		if s.Enabled {
			names = append(names, s.Name)
		}
	}
	return names
}
