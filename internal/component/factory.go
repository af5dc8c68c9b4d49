package component

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
)

// Deps are the drivers and shared handles injected into every constructor.
// A nil driver is only an error for the kinds that need it.
type Deps struct {
	GPIO   ports.GPIO
	ADC    ports.ADC
	Video  *Player
	Audio  *Player
	Clock  ports.Clock
	Logger *slog.Logger
	// OnError is told about driver failures caught inside components.
	OnError func(label string, err error)
}

// Constructor builds one component from its label and VALUE literal.
type Constructor func(label string, config any, deps Deps) (domain.Component, error)

// Factory maps kinds to constructors.
type Factory struct {
	deps  Deps
	ctors map[domain.Kind]Constructor
}

// NewFactory returns a factory with every built-in kind registered.
func NewFactory(deps Deps) *Factory {
	f := &Factory{deps: deps, ctors: make(map[domain.Kind]Constructor)}
	f.Register(domain.KindCounter, NewCounter)
	f.Register(domain.KindTimer, NewTimer)
	f.Register(domain.KindDigitalInput, NewDigitalInput)
	f.Register(domain.KindDigitalOutput, NewDigitalOutput)
	f.Register(domain.KindPWMOutput, NewPWMOutput)
	f.Register(domain.KindAnalogInput, NewAnalogInput)
	f.Register(domain.KindVideoPlayer, NewVideoPlayer)
	f.Register(domain.KindAudioPlayer, NewAudioPlayer)
	return f
}

// Register adds or replaces the constructor of kind.
func (f *Factory) Register(kind domain.Kind, ctor Constructor) {
	f.ctors[kind] = ctor
}

// Deps returns the dependencies handed to constructors.
func (f *Factory) Deps() Deps { return f.deps }

// Create builds a component of kind.
func (f *Factory) Create(kind domain.Kind, label string, config any) (domain.Component, error) {
	ctor, ok := f.ctors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownKind, kind)
	}
	if label == "" {
		return nil, fmt.Errorf("%w: %s component without a label", domain.ErrInvalidConfig, kind)
	}
	return ctor(label, config, f.deps)
}

// Kinds lists the registered kinds in sorted order.
func (f *Factory) Kinds() []domain.Kind {
	kinds := make([]domain.Kind, 0, len(f.ctors))
	for k := range f.ctors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
