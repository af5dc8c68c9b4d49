// Package sim provides in-memory drivers for running without hardware and
// for tests. Inputs are set by the caller; outputs are recorded.
package sim

import (
	"fmt"
	"sync"

	"github.com/aretw0/tendril/pkg/ports"
)

// GPIO is a simulated pin bank. Unconfigured input pins read high, which is
// the idle level of a pulled-up input.
type GPIO struct {
	mu      sync.Mutex
	inputs  map[int]bool
	outputs map[int]bool
	pwm     map[int]*PWMChannel
	fail    map[int]error
}

var _ ports.GPIO = (*GPIO)(nil)

func NewGPIO() *GPIO {
	return &GPIO{
		inputs:  make(map[int]bool),
		outputs: make(map[int]bool),
		pwm:     make(map[int]*PWMChannel),
		fail:    make(map[int]error),
	}
}

func (g *GPIO) SetupInput(pin int, pullUp bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inputs[pin] = pullUp
	return nil
}

func (g *GPIO) SetupOutput(pin int, high bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.outputs[pin] = high
	return nil
}

func (g *GPIO) Read(pin int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail[pin]; err != nil {
		return false, err
	}
	level, ok := g.inputs[pin]
	if !ok {
		return false, fmt.Errorf("pin %d is not an input", pin)
	}
	return level, nil
}

func (g *GPIO) Write(pin int, high bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail[pin]; err != nil {
		return err
	}
	if _, ok := g.outputs[pin]; !ok {
		return fmt.Errorf("pin %d is not an output", pin)
	}
	g.outputs[pin] = high
	return nil
}

func (g *GPIO) PWM(pin int, frequencyHz float64) (ports.PWMChannel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := &PWMChannel{Frequency: frequencyHz}
	g.pwm[pin] = ch
	return ch, nil
}

// SetInput drives an input pin to a level (true = high).
func (g *GPIO) SetInput(pin int, high bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inputs[pin] = high
}

// Output returns the level last written to an output pin.
func (g *GPIO) Output(pin int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outputs[pin]
}

// Channel returns the PWM channel attached to pin, if any.
func (g *GPIO) Channel(pin int) *PWMChannel {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pwm[pin]
}

// Fail makes every read and write on pin return err. A nil err clears it.
func (g *GPIO) Fail(pin int, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.fail, pin)
		return
	}
	g.fail[pin] = err
}

// PWMChannel records the duty cycle of a simulated PWM signal.
type PWMChannel struct {
	mu        sync.Mutex
	Frequency float64
	duty      float64
	running   bool
}

func (c *PWMChannel) Start(dutyCycle float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duty, c.running = dutyCycle, true
	return nil
}

func (c *PWMChannel) ChangeDutyCycle(dutyCycle float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duty = dutyCycle
	return nil
}

func (c *PWMChannel) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// State returns the duty cycle and whether the signal runs.
func (c *PWMChannel) State() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duty, c.running
}

// ADC is a simulated converter with settable samples.
type ADC struct {
	mu      sync.Mutex
	samples map[int]int
	err     error
}

var _ ports.ADC = (*ADC)(nil)

func NewADC() *ADC {
	return &ADC{samples: make(map[int]int)}
}

func (a *ADC) Read(channel int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return 0, a.err
	}
	return a.samples[channel], nil
}

// Set stores the next sample of channel.
func (a *ADC) Set(channel, sample int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.samples[channel] = sample
}

// Fail makes every read return err. A nil err clears it.
func (a *ADC) Fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

// Media is a simulated playback backend. Playback lasts until Stop or Finish.
type Media struct {
	mu      sync.Mutex
	source  string
	playing bool
	plays   []string
	stops   int
}

var _ ports.MediaBackend = (*Media)(nil)

func NewMedia() *Media { return &Media{} }

func (m *Media) Play(source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source, m.playing = source, true
	m.plays = append(m.plays, source)
	return nil
}

func (m *Media) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.stops++
	return nil
}

func (m *Media) IsPlaying() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing, nil
}

func (m *Media) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// Finish ends the current track as if it reached its end.
func (m *Media) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
}

// Plays returns every source passed to Play, in order.
func (m *Media) Plays() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.plays...)
}

// Stops counts calls to Stop.
func (m *Media) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}
