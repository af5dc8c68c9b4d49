package ports

// GPIO drives digital pins. Pin numbers are BCM numbers.
type GPIO interface {
	// SetupInput configures pin as an input, optionally with the internal pull-up.
	SetupInput(pin int, pullUp bool) error
	// SetupOutput configures pin as an output driven to the given initial level.
	SetupOutput(pin int, high bool) error
	// Read returns the current level of an input pin (true = high).
	Read(pin int) (bool, error)
	// Write drives an output pin.
	Write(pin int, high bool) error
	// PWM attaches a software PWM channel to an output pin.
	PWM(pin int, frequencyHz float64) (PWMChannel, error)
}

// PWMChannel is a software PWM signal on one pin.
type PWMChannel interface {
	Start(dutyCycle float64) error
	ChangeDutyCycle(dutyCycle float64) error
	Stop() error
}

// ADC samples an analog-to-digital converter shared by every analog input.
type ADC interface {
	// Read returns the raw sample of channel.
	Read(channel int) (int, error)
}

// MediaBackend is the single playback resource behind a media player kind.
type MediaBackend interface {
	// Play starts source from the beginning, replacing whatever was playing.
	Play(source string) error
	// Stop halts playback.
	Stop() error
	// IsPlaying reports whether something is still playing.
	IsPlaying() (bool, error)
	// Source returns the last source given to Play.
	Source() string
}
