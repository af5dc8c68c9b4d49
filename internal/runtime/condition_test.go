package runtime_test

import (
	"errors"
	"testing"

	"github.com/aretw0/tendril/internal/runtime"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stub answers every predicate with a fixed result and counts calls.
type stub struct {
	label   string
	result  bool
	err     error
	panics  bool
	checks  int
	actions []domain.Action
}

func (s *stub) Label() string               { return s.label }
func (s *stub) Kind() domain.Kind           { return "STUB" }
func (s *stub) ValueType() domain.ValueType { return domain.TypeInt }
func (s *stub) Value() domain.Value         { return domain.IntValue(int64(s.checks)) }
func (s *stub) Config() any                 { return nil }
func (s *stub) Capabilities() domain.Capabilities {
	return domain.BaseCapabilities.Extend(nil, []domain.Action{domain.ActionToggle})
}

func (s *stub) Evaluate(domain.Predicate, domain.Value) (bool, error) {
	s.checks++
	if s.panics {
		panic("stub exploded")
	}
	return s.result, s.err
}

func (s *stub) Perform(a domain.Action, _ domain.Value) error {
	s.actions = append(s.actions, a)
	return s.err
}

func check(c domain.Component) runtime.Check {
	return runtime.Check{Component: c, Predicate: domain.PredicateEqualTo, Method: "equal_to"}
}

func TestCondition_EmptyIsTrue(t *testing.T) {
	ok, err := (&runtime.Condition{}).Evaluate()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCondition_ShortCircuits(t *testing.T) {
	first := &stub{label: "a", result: true}
	second := &stub{label: "b", result: false}
	third := &stub{label: "c", result: true}

	cond := &runtime.Condition{Checks: []runtime.Check{check(first), check(second), check(third)}}
	ok, err := cond.Evaluate()
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 1, first.checks)
	assert.Equal(t, 1, second.checks)
	assert.Equal(t, 0, third.checks, "checks after the first false one must not run")
}

func TestCondition_ErrorStops(t *testing.T) {
	bad := &stub{label: "bad", err: domain.ErrPhysicalIO}
	after := &stub{label: "after", result: true}

	cond := &runtime.Condition{Checks: []runtime.Check{check(bad), check(after)}}
	ok, err := cond.Evaluate()
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrPhysicalIO)
	assert.Equal(t, 0, after.checks)
}

func TestEffect_RunsEveryStep(t *testing.T) {
	boom := errors.New("boom")
	a := &stub{label: "a", err: boom}
	b := &stub{label: "b"}

	eff := &runtime.Effect{Steps: []runtime.Step{
		{Component: a, Action: domain.ActionToggle, Method: "toggle"},
		{Component: b, Action: domain.ActionToggle, Method: "toggle"},
		{Component: a, Action: domain.ActionSetValue, Method: "set_value"},
	}}
	err := eff.Perform()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []domain.Action{domain.ActionToggle, domain.ActionSetValue}, a.actions)
	assert.Equal(t, []domain.Action{domain.ActionToggle}, b.actions)
}
