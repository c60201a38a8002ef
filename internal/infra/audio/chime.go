// Package audio implements the new-order chime behind the platform's
// user-gesture gate: the chime starts locked and plays nothing until the
// first qualifying merchant interaction unlocks it.
package audio

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	primaryToneHz   = 880.0     // A5
	secondaryToneHz = 1174.66   // D6
	toneDuration    = 150 * time.Millisecond
	secondaryDelay  = 150 * time.Millisecond
)

// Player is the underlying sound device. It is constructed lazily, only
// after the chime has been unlocked, and may report itself suspended after
// inactivity, in which case it is resumed before playing.
type Player interface {
	Suspended() bool
	Resume() error
	PlayTone(freq float64, d time.Duration) error
	Close() error
}

// Chime is a two-state machine: locked -> unlocked. While locked, every
// request is a no-op and no player is ever constructed. The enabled toggle
// is merchant-controlled and independent of the lock state; disabling never
// fails even if the player was never created.
type Chime struct {
	mu        sync.Mutex
	unlocked  bool
	enabled   bool
	player    Player
	newPlayer func() (Player, error)
	logger    *logrus.Entry
}

func NewChime(newPlayer func() (Player, error), enabled bool, logger *logrus.Entry) *Chime {
	return &Chime{
		newPlayer: newPlayer,
		enabled:   enabled,
		logger:    logger,
	}
}

// Unlock transitions to the unlocked state. Only the first call has any
// effect; the player itself is still created lazily on the first chime.
func (c *Chime) Unlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unlocked {
		return
	}
	c.unlocked = true
	c.logger.Debug("chime unlocked by merchant interaction")
}

func (c *Chime) Unlocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unlocked
}

func (c *Chime) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

func (c *Chime) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Chime plays the two-tone pattern: a primary tone, then a secondary tone
// starting 150ms later, so the sound carries over kitchen noise without
// reading as a single transient UI blip. Every failure degrades to silence.
func (c *Chime) Chime() {
	c.mu.Lock()
	if !c.unlocked || !c.enabled {
		c.mu.Unlock()
		return
	}
	if c.player == nil {
		p, err := c.newPlayer()
		if err != nil {
			c.mu.Unlock()
			c.logger.WithError(err).Debug("audio player unavailable, chime skipped")
			return
		}
		c.player = p
	}
	p := c.player
	c.mu.Unlock()

	if p.Suspended() {
		if err := p.Resume(); err != nil {
			c.logger.WithError(err).Debug("audio player resume failed, chime skipped")
			return
		}
	}
	if err := p.PlayTone(primaryToneHz, toneDuration); err != nil {
		c.logger.WithError(err).Debug("primary tone failed")
		return
	}
	time.Sleep(secondaryDelay)
	if err := p.PlayTone(secondaryToneHz, toneDuration); err != nil {
		c.logger.WithError(err).Debug("secondary tone failed")
	}
}

// Close releases the player if one was ever created.
func (c *Chime) Close() {
	c.mu.Lock()
	p := c.player
	c.player = nil
	c.mu.Unlock()
	if p != nil {
		_ = p.Close()
	}
}
