package tendril_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/component"
	"github.com/aretw0/tendril/internal/testutils"
	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/adapters/sim"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refillDefinition() *domain.Definition {
	return &domain.Definition{
		Components: domain.ComponentSet{
			domain.KindCounter: {{Label: "pours", Value: 0}},
		},
		Events: []domain.EventDef{{
			Label:      "refill",
			Conditions: []domain.CheckDef{{Label: "pours", Method: "less_than", Value: 1}},
			Effects:    []domain.ActionDef{{Label: "pours", Method: "increase_value", Arg: 5}},
		}},
	}
}

func countOf(t *testing.T, c *tendril.Controller, label string) int64 {
	t.Helper()
	comp, ok := c.Component(label)
	require.True(t, ok, "component %s", label)
	return comp.Value().AsInt()
}

func TestController_RefillScenario(t *testing.T) {
	ctx := context.Background()
	ctrl, err := tendril.New()
	require.NoError(t, err)
	require.NoError(t, ctrl.Apply(ctx, refillDefinition()))

	report := ctrl.Tick(ctx)
	assert.Equal(t, []string{"refill"}, report.Fired)
	assert.Equal(t, int64(5), countOf(t, ctrl, "pours"))

	report = ctrl.Tick(ctx)
	assert.Empty(t, report.Fired)
	assert.Equal(t, int64(5), countOf(t, ctrl, "pours"))
}

func TestController_LoadEmptyStore(t *testing.T) {
	ctx := context.Background()
	ctrl, err := tendril.New(tendril.WithStore(memory.NewStore()))
	require.NoError(t, err)

	require.NoError(t, ctrl.Load(ctx), "nothing persisted means no rules active")
	report := ctrl.Tick(ctx)
	assert.Zero(t, report.Evaluated)
}

func TestController_SyncAppliesAndPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	queue := memory.NewQueue()
	sink := memory.NewSink()

	ctrl, err := tendril.New(
		tendril.WithStore(store),
		tendril.WithUpdateSource(queue),
		tendril.WithSnapshotSink(sink),
	)
	require.NoError(t, err)
	require.NoError(t, ctrl.Load(ctx))

	queue.Push(refillDefinition())
	require.NoError(t, ctrl.Sync(ctx))

	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refill", saved.Events[0].Label)
	assert.Len(t, sink.Events(), 1)
	assert.Len(t, sink.Components()[domain.KindCounter], 1)

	// Nothing new: no second save.
	require.NoError(t, store.Save(ctx, &domain.Definition{}))
	require.NoError(t, ctrl.Sync(ctx))
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, again.IsEmpty())
}

func TestController_RejectedUpdateKeepsLiveSet(t *testing.T) {
	ctx := context.Background()
	queue := memory.NewQueue()
	ctrl, err := tendril.New(tendril.WithUpdateSource(queue))
	require.NoError(t, err)
	require.NoError(t, ctrl.Apply(ctx, refillDefinition()))

	queue.Push(&domain.Definition{Events: []domain.EventDef{{
		Label:   "broken",
		Effects: []domain.ActionDef{{Label: "ghost", Method: "toggle"}},
	}}})
	err = ctrl.Sync(ctx)
	assert.ErrorIs(t, err, domain.ErrUnresolvedReference)

	def := ctrl.Definition()
	require.Len(t, def.Events, 1)
	assert.Equal(t, "refill", def.Events[0].Label)
}

func TestController_ComponentsOnlyUpdateRebindsEvents(t *testing.T) {
	ctx := context.Background()
	ctrl, err := tendril.New()
	require.NoError(t, err)
	require.NoError(t, ctrl.Apply(ctx, refillDefinition()))

	require.NoError(t, ctrl.Apply(ctx, &domain.Definition{Components: domain.ComponentSet{
		domain.KindCounter: {{Label: "pours", Value: 0}},
	}}))
	ctrl.Tick(ctx)
	assert.Equal(t, int64(5), countOf(t, ctrl, "pours"), "events act on the new components")

	err = ctrl.Apply(ctx, &domain.Definition{Components: domain.ComponentSet{
		domain.KindCounter: {{Label: "renamed", Value: 0}},
	}})
	assert.ErrorIs(t, err, domain.ErrUnresolvedReference, "events would lose their component")
	assert.Equal(t, int64(5), countOf(t, ctrl, "pours"))
}

func TestController_EventStateSurvivesComponentsUpdate(t *testing.T) {
	ctx := context.Background()
	def := refillDefinition()
	def.Events[0].Deactivate = []domain.CheckDef{{Label: "pours", Method: "greater_than", Value: 0}}

	ctrl, err := tendril.New()
	require.NoError(t, err)
	require.NoError(t, ctrl.Apply(ctx, def))
	ctrl.Tick(ctx)
	require.Equal(t, domain.EventDeactivated, ctrl.EventStates()["refill"])

	require.NoError(t, ctrl.Apply(ctx, &domain.Definition{Components: def.Components}))
	assert.Equal(t, domain.EventDeactivated, ctrl.EventStates()["refill"])

	require.NoError(t, ctrl.Apply(ctx, &domain.Definition{Events: def.Events}))
	assert.Equal(t, domain.EventActive, ctrl.EventStates()["refill"], "new event definitions start active")
}

func TestController_RoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := testutils.NewClock()
	drivers := tendril.Drivers{GPIO: sim.NewGPIO(), ADC: sim.NewADC(), Video: sim.NewMedia(), Audio: sim.NewMedia()}

	original := ports.ContractDefinition()
	original.Components[domain.KindDigitalOutput] = []domain.ComponentDef{{Label: "pump", Value: 3}}
	original.Components[domain.KindAudioPlayer] = []domain.ComponentDef{{Label: "chime", Value: "chime.wav"}}
	original.Events = append(original.Events, domain.EventDef{
		Label:      "blink",
		Conditions: []domain.CheckDef{},
		Effects: []domain.ActionDef{
			{Label: "pump", Method: "toggle"},
			{Label: "chime", Method: "play"},
		},
		Activate: []domain.CheckDef{{Label: "pump", Method: "equal_to", Value: "LOW"}},
	})

	first, err := tendril.New(tendril.WithDrivers(drivers), tendril.WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, first.Apply(ctx, original))
	initialFeed := first.Feed()

	first.Tick(ctx)
	require.Equal(t, domain.EventDeactivated, first.EventStates()["announce"])

	// Through JSON, as the file store would.
	data, err := json.Marshal(first.Definition())
	require.NoError(t, err)
	var decoded domain.Definition
	require.NoError(t, json.Unmarshal(data, &decoded))

	second, err := tendril.New(tendril.WithDrivers(drivers), tendril.WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, second.Apply(ctx, &decoded))

	// JSON on both sides normalises int and float literals.
	a, err := json.Marshal(first.Definition())
	require.NoError(t, err)
	b, err := json.Marshal(second.Definition())
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))

	assert.Equal(t, domain.EventActive, second.EventStates()["announce"], "event state is not persisted")
	for label, state := range second.EventStates() {
		assert.Equal(t, domain.EventActive, state, label)
	}
	assert.Equal(t, initialFeed, second.Feed())
}

func TestController_InputSampledOncePerPass(t *testing.T) {
	ctx := context.Background()
	gpio := sim.NewGPIO()
	pin := component.InputPins[0]

	pressed := func(label string) domain.EventDef {
		return domain.EventDef{
			Label:      label,
			Conditions: []domain.CheckDef{{Label: "button", Method: "equal_to", Value: "PRESSED"}},
			Effects:    []domain.ActionDef{{Label: label, Method: "increase_value", Arg: 1}},
		}
	}
	ctrl, err := tendril.New(tendril.WithDrivers(tendril.Drivers{GPIO: gpio}))
	require.NoError(t, err)
	require.NoError(t, ctrl.Apply(ctx, &domain.Definition{
		Components: domain.ComponentSet{
			domain.KindDigitalInput: {{Label: "button", Value: 0}},
			domain.KindCounter:      {{Label: "countA", Value: 0}, {Label: "countB", Value: 0}},
		},
		Events: []domain.EventDef{pressed("countA"), pressed("countB")},
	}))

	gpio.SetInput(pin, false)
	report := ctrl.Tick(ctx)
	assert.Equal(t, []string{"countA", "countB"}, report.Fired, "both rules see the same press")

	report = ctrl.Tick(ctx)
	assert.Empty(t, report.Fired, "a held button is not a new press")

	gpio.SetInput(pin, true)
	ctrl.Tick(ctx)
	gpio.SetInput(pin, false)

	// Reading the feed between passes must not consume the press.
	assert.Equal(t, domain.StateReleased, ctrl.Feed()[domain.KindDigitalInput]["button"].AsString())
	report = ctrl.Tick(ctx)
	assert.Equal(t, []string{"countA", "countB"}, report.Fired)
	assert.Equal(t, int64(2), countOf(t, ctrl, "countA"))
	assert.Equal(t, int64(2), countOf(t, ctrl, "countB"))
}

func TestController_Run(t *testing.T) {
	store := memory.NewStore()
	sink := memory.NewSink()
	require.NoError(t, store.Save(context.Background(), refillDefinition()))

	ctrl, err := tendril.New(
		tendril.WithStore(store),
		tendril.WithSnapshotSink(sink),
		tendril.WithTickPeriod(5*time.Millisecond),
		tendril.WithSyncPeriod(10*time.Millisecond),
		tendril.WithFeedPeriod(10*time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	require.Eventually(t, func() bool {
		feed, _ := sink.Feed()
		v, ok := feed[domain.KindCounter]["pours"]
		return ok && v.AsInt() == 5
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Len(t, sink.Events(), 1, "initial snapshot is published")
}

func TestController_Options(t *testing.T) {
	_, err := tendril.New(tendril.WithTickPeriod(0))
	assert.Error(t, err)

	_, err = tendril.New(tendril.WithLocker(nil, "", time.Second))
	assert.NoError(t, err, "a nil locker is ignored")
}
