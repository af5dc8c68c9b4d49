package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/tendril/internal/runtime"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_RefillScenario(t *testing.T) {
	r := newResolver()
	reg, events, err := r.Resolve(&domain.Definition{
		Components: domain.ComponentSet{domain.KindCounter: {{Label: "pours", Value: 0}}},
		Events: []domain.EventDef{{
			Label:      "refill",
			Conditions: []domain.CheckDef{{Label: "pours", Method: "lessThan", Value: 1}},
			Effects:    []domain.ActionDef{{Label: "pours", Method: "increase", Arg: 5}},
		}},
	})
	require.NoError(t, err)

	engine := runtime.NewEngine()
	engine.SetEvents(events)
	pours, _ := reg.Lookup("pours")

	report := engine.Pass(context.Background())
	assert.Equal(t, []string{"refill"}, report.Fired)
	assert.Equal(t, int64(5), pours.Value().AsInt())

	report = engine.Pass(context.Background())
	assert.Empty(t, report.Fired)
	assert.Equal(t, int64(5), pours.Value().AsInt())
}

func TestEngine_OrderIsSignificant(t *testing.T) {
	build := func(order ...string) (domain.Component, *runtime.Engine) {
		byLabel := map[string]domain.EventDef{
			"bump": {
				Label:      "bump",
				Conditions: []domain.CheckDef{{Label: "n", Method: "equal_to", Value: 0}},
				Effects:    []domain.ActionDef{{Label: "n", Method: "increase_value", Arg: 1}},
			},
			"watch": {
				Label:      "watch",
				Conditions: []domain.CheckDef{{Label: "n", Method: "equal_to", Value: 1}},
				Effects:    []domain.ActionDef{{Label: "seen", Method: "increase_value", Arg: 1}},
			},
		}
		def := &domain.Definition{Components: domain.ComponentSet{
			domain.KindCounter: {{Label: "n", Value: 0}, {Label: "seen", Value: 0}},
		}}
		for _, l := range order {
			def.Events = append(def.Events, byLabel[l])
		}
		reg, events, err := newResolver().Resolve(def)
		require.NoError(t, err)
		e := runtime.NewEngine()
		e.SetEvents(events)
		seen, _ := reg.Lookup("seen")
		return seen, e
	}

	seen, e := build("bump", "watch")
	e.Pass(context.Background())
	assert.Equal(t, int64(1), seen.Value().AsInt(), "later events observe earlier effects in the same pass")

	seen, e = build("watch", "bump")
	e.Pass(context.Background())
	assert.Equal(t, int64(0), seen.Value().AsInt(), "earlier events observe them on the next pass")
	e.Pass(context.Background())
	assert.Equal(t, int64(1), seen.Value().AsInt())
}

func TestEngine_IsolatesFailures(t *testing.T) {
	panicky := &stub{label: "panicky", panics: true}
	failing := &stub{label: "failing", err: domain.ErrPhysicalIO}
	healthy := &stub{label: "healthy", result: true}

	var (
		fired  []string
		failed []string
		passes int
	)
	engine := runtime.NewEngine(runtime.WithHooks(domain.Hooks{
		OnEventFired: func(e string) { fired = append(fired, e) },
		OnEventError: func(e string, _ error) { failed = append(failed, e) },
		OnPass:       func(domain.PassReport) { passes++ },
	}))
	engine.SetEvents([]*runtime.Event{
		runtime.NewEvent("a", &runtime.Condition{Checks: []runtime.Check{check(panicky)}}, &runtime.Effect{}, nil, nil),
		runtime.NewEvent("b", &runtime.Condition{Checks: []runtime.Check{check(failing)}}, &runtime.Effect{}, nil, nil),
		runtime.NewEvent("c", &runtime.Condition{Checks: []runtime.Check{check(healthy)}},
			&runtime.Effect{Steps: []runtime.Step{{Component: healthy, Action: domain.ActionToggle, Method: "toggle"}}}, nil, nil),
	})

	report := engine.Pass(context.Background())
	assert.Equal(t, 3, report.Evaluated)
	assert.Equal(t, []string{"a", "b"}, report.Failed)
	assert.Equal(t, []string{"c"}, report.Fired)
	assert.Equal(t, []string{"a", "b"}, failed)
	assert.Equal(t, []string{"c"}, fired)
	assert.Equal(t, 1, passes)
	assert.Len(t, healthy.actions, 1)
}

func TestEngine_EmptyPass(t *testing.T) {
	report := runtime.NewEngine().Pass(context.Background())
	assert.Zero(t, report.Evaluated)
	assert.Empty(t, report.Fired)
}

func TestEngine_CancelledContext(t *testing.T) {
	s := &stub{label: "s", result: true}
	engine := runtime.NewEngine()
	engine.SetEvents([]*runtime.Event{
		runtime.NewEvent("a", &runtime.Condition{Checks: []runtime.Check{check(s)}}, &runtime.Effect{}, nil, nil),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := engine.Pass(ctx)
	assert.Zero(t, report.Evaluated)
	assert.Zero(t, s.checks)
}
