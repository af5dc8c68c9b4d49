package component

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tendril/internal/logging"
	"github.com/aretw0/tendril/pkg/domain"
	"github.com/aretw0/tendril/pkg/ports"
)

// Command cooldowns of the shared players.
const (
	VideoCooldown = time.Second
	AudioCooldown = 500 * time.Millisecond
)

// Player is the single playback resource shared by every component of one
// media kind. Commands issued inside the cooldown window after the previous
// accepted command are dropped.
type Player struct {
	mu       sync.Mutex
	backend  ports.MediaBackend
	clock    ports.Clock
	cooldown time.Duration
	until    time.Time
	owner    string
	logger   *slog.Logger
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithPlayerClock sets the clock used for the cooldown window.
func WithPlayerClock(c ports.Clock) PlayerOption {
	return func(p *Player) { p.clock = c }
}

// WithPlayerLogger sets the player logger.
func WithPlayerLogger(l *slog.Logger) PlayerOption {
	return func(p *Player) { p.logger = l }
}

// NewPlayer wraps backend with a cooldown.
func NewPlayer(backend ports.MediaBackend, cooldown time.Duration, opts ...PlayerOption) *Player {
	p := &Player{
		backend:  backend,
		cooldown: cooldown,
		clock:    ports.SystemClock{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Owner returns the label of the component that last started playback.
func (p *Player) Owner() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.owner
}

func (p *Player) ready() bool { return p.clock.Now().After(p.until) }

func (p *Player) arm() { p.until = p.clock.Now().Add(p.cooldown) }

// PlayIfIdle starts track unless something is playing. A backend that cannot
// report its status is treated as idle. It reports whether the command was
// accepted.
func (p *Player) PlayIfIdle(owner, track string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	playing, err := p.backend.IsPlaying()
	if err != nil {
		p.logger.Debug("Player status unavailable", "err", err)
		playing = false
	}
	if playing || !p.ready() {
		return false, nil
	}
	return p.start(owner, track)
}

// Play (re)starts track, replacing whatever is playing.
func (p *Player) Play(owner, track string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready() {
		return false, nil
	}
	return p.start(owner, track)
}

func (p *Player) start(owner, track string) (bool, error) {
	if err := p.backend.Play(track); err != nil {
		return false, fmt.Errorf("%w: play %s: %v", domain.ErrPhysicalIO, track, err)
	}
	p.owner = owner
	p.arm()
	return true, nil
}

// StopSource halts playback only if track is the current source.
func (p *Player) StopSource(track string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready() || p.backend.Source() != track {
		return false, nil
	}
	return p.stop()
}

// StopOwned halts playback only if owner started it.
func (p *Player) StopOwned(owner string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready() || p.owner != owner {
		return false, nil
	}
	return p.stop()
}

func (p *Player) stop() (bool, error) {
	if err := p.backend.Stop(); err != nil {
		return false, fmt.Errorf("%w: stop: %v", domain.ErrPhysicalIO, err)
	}
	p.arm()
	return true, nil
}

var mediaCaps = domain.BaseCapabilities.Extend(nil, []domain.Action{domain.ActionPlay, domain.ActionStop})

// MediaPlayer plays one track on the shared player of its kind.
type MediaPlayer struct {
	base
	player *Player
}

// NewVideoPlayer creates a video component on deps.Video. Play is ignored
// while anything plays and stop only affects this component's own track.
func NewVideoPlayer(label string, config any, deps Deps) (domain.Component, error) {
	return newMediaPlayer(label, config, domain.KindVideoPlayer, deps.Video, deps)
}

// NewAudioPlayer creates an audio component on deps.Audio. Any component may
// start a track but only the one that started it may stop it.
func NewAudioPlayer(label string, config any, deps Deps) (domain.Component, error) {
	return newMediaPlayer(label, config, domain.KindAudioPlayer, deps.Audio, deps)
}

func newMediaPlayer(label string, config any, kind domain.Kind, player *Player, deps Deps) (domain.Component, error) {
	if player == nil {
		return nil, fmt.Errorf("%w: %s %s: no media player", domain.ErrInvalidConfig, kind, label)
	}
	track, ok := config.(string)
	if !ok || track == "" {
		return nil, fmt.Errorf("%w: %s %s: track must be a non-empty string", domain.ErrInvalidConfig, kind, label)
	}
	m := &MediaPlayer{
		base:   newBase(label, kind, domain.TypeString, config, mediaCaps, deps),
		player: player,
	}
	m.value = domain.StringValue(track)
	return m, nil
}

// Track returns the media source of the component.
func (m *MediaPlayer) Track() string { return m.value.AsString() }

func (m *MediaPlayer) Value() domain.Value { return m.value }

func (m *MediaPlayer) Evaluate(p domain.Predicate, arg domain.Value) (bool, error) {
	if p != domain.PredicateEqualTo {
		return false, m.unknownPredicate(p)
	}
	return domain.Equal(m.value, arg), nil
}

func (m *MediaPlayer) Perform(a domain.Action, arg domain.Value) error {
	var (
		accepted bool
		err      error
	)
	switch a {
	case domain.ActionSetValue:
		if arg.AsString() == "" {
			return fmt.Errorf("%w: empty track", domain.ErrTypeCoercion)
		}
		m.value = domain.StringValue(arg.AsString())
		return nil
	case domain.ActionPlay:
		if m.kind == domain.KindVideoPlayer {
			accepted, err = m.player.PlayIfIdle(m.label, m.Track())
		} else {
			accepted, err = m.player.Play(m.label, m.Track())
		}
	case domain.ActionStop:
		if m.kind == domain.KindVideoPlayer {
			accepted, err = m.player.StopSource(m.Track())
		} else {
			accepted, err = m.player.StopOwned(m.label)
		}
	default:
		return m.unknownAction(a)
	}
	if err != nil {
		m.logger.Warn("Media command failed", "action", a.String(), "err", err)
		if m.onErr != nil {
			m.onErr(m.label, err)
		}
		return fmt.Errorf("%s: %w", m.label, err)
	}
	if !accepted {
		m.logger.Debug("Media command dropped", "action", a.String())
	}
	return nil
}
