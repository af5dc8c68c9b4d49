package component

import (
	"fmt"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
)

// AnalogChannels is the number of ADC channels wired to the board.
const AnalogChannels = 4

// AnalogInput samples one channel of the shared 10-bit ADC.
// Comparisons are made as floats so thresholds may carry a fraction.
type AnalogInput struct {
	base
	adc     ports.ADC
	channel int
}

func NewAnalogInput(label string, config any, deps Deps) (domain.Component, error) {
	if deps.ADC == nil {
		return nil, fmt.Errorf("%w: analog input %s: no ADC driver", domain.ErrInvalidConfig, label)
	}
	ch, err := configInt(label, config)
	if err != nil {
		return nil, err
	}
	if ch < 0 || ch >= AnalogChannels {
		return nil, fmt.Errorf("%w: analog input %s: channel %d out of range 0..%d", domain.ErrInvalidConfig, label, ch, AnalogChannels-1)
	}
	a := &AnalogInput{
		base:    newBase(label, domain.KindAnalogInput, domain.TypeFloat, config, numericCaps, deps),
		adc:     deps.ADC,
		channel: ch,
	}
	a.value = domain.IntValue(0)
	return a, nil
}

// Sample reads the channel once. A failed read keeps the previous sample.
func (a *AnalogInput) Sample() {
	sample, err := a.adc.Read(a.channel)
	if err != nil {
		_ = a.ioFailed("read", err)
		return
	}
	a.value = domain.IntValue(int64(sample))
}

func (a *AnalogInput) Value() domain.Value { return a.value }

func (a *AnalogInput) Evaluate(p domain.Predicate, arg domain.Value) (bool, error) {
	if !a.caps.HasPredicate(p) {
		return false, a.unknownPredicate(p)
	}
	want, err := coerceArg(arg, domain.TypeFloat)
	if err != nil {
		return false, err
	}
	return compare(p, domain.FloatValue(a.value.AsFloat()), want)
}

// Perform accepts set_value and ignores it: the converter decides the value.
func (a *AnalogInput) Perform(act domain.Action, _ domain.Value) error {
	if act == domain.ActionSetValue {
		return nil
	}
	return a.unknownAction(act)
}
