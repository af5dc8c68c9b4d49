package domain

// Kind is the type tag of a component. It selects the constructor used at
// load time and the value type rule literals are coerced to.
type Kind string

// Built-in component kinds, as written in the COMPONENTS section of a definition.
const (
	KindCounter       Kind = "COUNTER"
	KindTimer         Kind = "TIMER"
	KindDigitalInput  Kind = "DIGITAL_INPUT"
	KindDigitalOutput Kind = "DIGITAL_OUTPUT"
	KindPWMOutput     Kind = "PWM_OUTPUT"
	KindAnalogInput   Kind = "ANALOG_INPUT"
	KindVideoPlayer   Kind = "SIMPLE_VIDEO_PLAYER"
	KindAudioPlayer   Kind = "SIMPLE_AUDIO_PLAYER"
)

// Enumerated states of the state-valued kinds.
const (
	StateHigh = "HIGH"
	StateLow  = "LOW"

	StatePressed  = "PRESSED"
	StateReleased = "RELEASED"
	StateHeldDown = "HELD_DOWN"
	StateHeldUp   = "HELD_UP"

	TimerStopped = "STOPPED"
	TimerPaused  = "PAUSED"
	TimerRunning = "RUNNING"
)
