package component

import (
	"fmt"
	"strings"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
)

// Board pin tables, BCM numbering. Inputs are indexed from 0, outputs from 1
// to match the silkscreen.
var (
	InputPins  = []int{7, 8, 25, 24, 16, 18}
	OutputPins = []int{26, 13, 19, 12, 6, 5, 11, 9, 10, 22}
)

// PWMFrequency is the software PWM frequency of every PWM output.
const PWMFrequency = 200

var (
	digitalInputCaps  = domain.BaseCapabilities.Extend([]domain.Predicate{domain.PredicateGetState}, nil)
	digitalOutputCaps = domain.BaseCapabilities.Extend(
		[]domain.Predicate{domain.PredicateGetState},
		[]domain.Action{domain.ActionSetState, domain.ActionToggle},
	)
	pwmCaps = numericCaps.Extend(nil, []domain.Action{domain.ActionStart, domain.ActionStop})
)

// DigitalInput tracks an opto-isolated input through the edge states
// PRESSED, HELD_DOWN, RELEASED and HELD_UP.
type DigitalInput struct {
	base
	gpio ports.GPIO
	pin  int
}

// NewDigitalInput sets up the board input at the configured index with the
// internal pull-up enabled.
func NewDigitalInput(label string, config any, deps Deps) (domain.Component, error) {
	if deps.GPIO == nil {
		return nil, fmt.Errorf("%w: digital input %s: no GPIO driver", domain.ErrInvalidConfig, label)
	}
	idx, err := configInt(label, config)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(InputPins) {
		return nil, fmt.Errorf("%w: digital input %s: index %d out of range 0..%d", domain.ErrInvalidConfig, label, idx, len(InputPins)-1)
	}
	d := &DigitalInput{
		base: newBase(label, domain.KindDigitalInput, domain.TypeString, config, digitalInputCaps, deps),
		gpio: deps.GPIO,
		pin:  InputPins[idx],
	}
	if err := d.gpio.SetupInput(d.pin, true); err != nil {
		return nil, fmt.Errorf("%w: setup pin %d: %v", domain.ErrPhysicalIO, d.pin, err)
	}
	d.value = domain.StringValue(domain.StateHeldUp)
	return d, nil
}

// Sample reads the pin and advances the edge state. The input is active low.
func (d *DigitalInput) Sample() {
	high, err := d.gpio.Read(d.pin)
	if err != nil {
		_ = d.ioFailed("read", err)
		return
	}
	d.value = domain.StringValue(nextEdge(d.value.AsString(), !high))
}

func nextEdge(prev string, active bool) string {
	wasDown := prev == domain.StatePressed || prev == domain.StateHeldDown
	switch {
	case active && wasDown:
		return domain.StateHeldDown
	case active:
		return domain.StatePressed
	case wasDown:
		return domain.StateReleased
	default:
		return domain.StateHeldUp
	}
}

func (d *DigitalInput) Value() domain.Value { return d.value }

func (d *DigitalInput) Evaluate(p domain.Predicate, arg domain.Value) (bool, error) {
	switch p {
	case domain.PredicateEqualTo, domain.PredicateGetState:
		want, err := d.ParseState(arg.AsString())
		if err != nil {
			return false, err
		}
		return d.value.AsString() == want, nil
	}
	return false, d.unknownPredicate(p)
}

// Perform accepts set_value and ignores it: the pin decides the state.
func (d *DigitalInput) Perform(a domain.Action, _ domain.Value) error {
	if a == domain.ActionSetValue {
		return nil
	}
	return d.unknownAction(a)
}

func (d *DigitalInput) ParseState(name string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	switch s {
	case domain.StatePressed, domain.StateReleased, domain.StateHeldDown, domain.StateHeldUp:
		return s, nil
	}
	return "", fmt.Errorf("%w: input state %q", domain.ErrTypeCoercion, name)
}

// DigitalOutput drives a solid state relay HIGH or LOW.
type DigitalOutput struct {
	base
	gpio ports.GPIO
	pin  int
}

// NewDigitalOutput sets up the board output at the configured number (1..10),
// initially LOW.
func NewDigitalOutput(label string, config any, deps Deps) (domain.Component, error) {
	pin, err := outputPin(label, config, deps)
	if err != nil {
		return nil, err
	}
	o := &DigitalOutput{
		base: newBase(label, domain.KindDigitalOutput, domain.TypeString, config, digitalOutputCaps, deps),
		gpio: deps.GPIO,
		pin:  pin,
	}
	if err := o.gpio.SetupOutput(pin, false); err != nil {
		return nil, fmt.Errorf("%w: setup pin %d: %v", domain.ErrPhysicalIO, pin, err)
	}
	o.value = domain.StringValue(domain.StateLow)
	return o, nil
}

func outputPin(label string, config any, deps Deps) (int, error) {
	if deps.GPIO == nil {
		return 0, fmt.Errorf("%w: output %s: no GPIO driver", domain.ErrInvalidConfig, label)
	}
	n, err := configInt(label, config)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > len(OutputPins) {
		return 0, fmt.Errorf("%w: output %s: number %d out of range 1..%d", domain.ErrInvalidConfig, label, n, len(OutputPins))
	}
	return OutputPins[n-1], nil
}

func (o *DigitalOutput) Value() domain.Value { return o.value }

func (o *DigitalOutput) Evaluate(p domain.Predicate, arg domain.Value) (bool, error) {
	switch p {
	case domain.PredicateEqualTo, domain.PredicateGetState:
		want, err := o.ParseState(arg.AsString())
		if err != nil {
			return false, err
		}
		return o.value.AsString() == want, nil
	}
	return false, o.unknownPredicate(p)
}

func (o *DigitalOutput) Perform(a domain.Action, arg domain.Value) error {
	switch a {
	case domain.ActionSetValue, domain.ActionSetState:
		want, err := o.ParseState(arg.AsString())
		if err != nil {
			return err
		}
		return o.write(want)
	case domain.ActionToggle:
		_, err := o.Toggle()
		return err
	}
	return o.unknownAction(a)
}

// Toggle flips the output and returns the resulting state.
func (o *DigitalOutput) Toggle() (string, error) {
	next := domain.StateHigh
	if o.value.AsString() == domain.StateHigh {
		next = domain.StateLow
	}
	if err := o.write(next); err != nil {
		return o.value.AsString(), err
	}
	return next, nil
}

// write drives the pin first; the value only changes when the write succeeds.
func (o *DigitalOutput) write(state string) error {
	if err := o.gpio.Write(o.pin, state == domain.StateHigh); err != nil {
		return o.ioFailed("write", err)
	}
	o.value = domain.StringValue(state)
	return nil
}

func (o *DigitalOutput) ParseState(name string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	switch s {
	case domain.StateHigh, domain.StateLow:
		return s, nil
	case "ON", "1":
		return domain.StateHigh, nil
	case "OFF", "0":
		return domain.StateLow, nil
	}
	return "", fmt.Errorf("%w: output state %q", domain.ErrTypeCoercion, name)
}

// PWMOutput is a software PWM signal on a board output. Its value is the
// duty cycle in percent.
type PWMOutput struct {
	base
	channel ports.PWMChannel
	running bool
}

// NewPWMOutput attaches a 200 Hz PWM channel to the configured board output.
// The channel is idle until started.
func NewPWMOutput(label string, config any, deps Deps) (domain.Component, error) {
	pin, err := outputPin(label, config, deps)
	if err != nil {
		return nil, err
	}
	if err := deps.GPIO.SetupOutput(pin, false); err != nil {
		return nil, fmt.Errorf("%w: setup pin %d: %v", domain.ErrPhysicalIO, pin, err)
	}
	ch, err := deps.GPIO.PWM(pin, PWMFrequency)
	if err != nil {
		return nil, fmt.Errorf("%w: pwm on pin %d: %v", domain.ErrPhysicalIO, pin, err)
	}
	p := &PWMOutput{
		base:    newBase(label, domain.KindPWMOutput, domain.TypeInt, config, pwmCaps, deps),
		channel: ch,
	}
	p.value = domain.IntValue(0)
	return p, nil
}

// Running reports whether the signal has been started.
func (p *PWMOutput) Running() bool { return p.running }

func (p *PWMOutput) Value() domain.Value { return p.value }

func (p *PWMOutput) Evaluate(pred domain.Predicate, arg domain.Value) (bool, error) {
	if !p.caps.HasPredicate(pred) {
		return false, p.unknownPredicate(pred)
	}
	return compare(pred, p.value, arg)
}

func (p *PWMOutput) Perform(a domain.Action, arg domain.Value) error {
	switch a {
	case domain.ActionSetValue:
		duty, err := dutyCycle(arg)
		if err != nil {
			return err
		}
		if err := p.channel.ChangeDutyCycle(float64(duty)); err != nil {
			return p.ioFailed("change duty cycle", err)
		}
		p.value = domain.IntValue(duty)
		return nil
	case domain.ActionStart:
		duty := p.value.AsInt()
		if !arg.IsNone() {
			d, err := dutyCycle(arg)
			if err != nil {
				return err
			}
			duty = d
		}
		if err := p.channel.Start(float64(duty)); err != nil {
			return p.ioFailed("start", err)
		}
		p.value = domain.IntValue(duty)
		p.running = true
		return nil
	case domain.ActionStop:
		if err := p.channel.Stop(); err != nil {
			return p.ioFailed("stop", err)
		}
		p.running = false
		return nil
	}
	return p.unknownAction(a)
}

func dutyCycle(arg domain.Value) (int64, error) {
	v, err := coerceArg(arg, domain.TypeInt)
	if err != nil {
		return 0, err
	}
	if d := v.AsInt(); d < 0 || d > 100 {
		return 0, fmt.Errorf("%w: duty cycle %d outside 0..100", domain.ErrTypeCoercion, d)
	}
	return v.AsInt(), nil
}
