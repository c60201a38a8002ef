package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"
)

const (
	sampleRate = 44100
	amplitude  = 0.6 // headroom against clipping
)

// TonePlayer synthesizes 16-bit mono PCM sine frames into a writable sink,
// typically an OSS-style audio device or a pipe into a playback process.
// A failed write marks the player suspended; Resume reopens the sink.
type TonePlayer struct {
	mu        sync.Mutex
	sink      io.WriteCloser
	open      func() (io.WriteCloser, error)
	suspended bool
}

// NewTonePlayer opens the sink eagerly so an unusable device surfaces at
// construction time rather than on the first chime.
func NewTonePlayer(open func() (io.WriteCloser, error)) (*TonePlayer, error) {
	sink, err := open()
	if err != nil {
		return nil, fmt.Errorf("open audio sink: %w", err)
	}
	return &TonePlayer{sink: sink, open: open}, nil
}

// DeviceSink returns an opener for a writable device path.
func DeviceSink(path string) func() (io.WriteCloser, error) {
	return func() (io.WriteCloser, error) {
		return os.OpenFile(path, os.O_WRONLY, 0)
	}
}

func (p *TonePlayer) Suspended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suspended
}

// Resume reopens the sink after a suspension.
func (p *TonePlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.suspended {
		return nil
	}
	if p.sink != nil {
		_ = p.sink.Close()
	}
	sink, err := p.open()
	if err != nil {
		return fmt.Errorf("reopen audio sink: %w", err)
	}
	p.sink = sink
	p.suspended = false
	return nil
}

// PlayTone writes a sine wave of the given frequency and duration.
func (p *TonePlayer) PlayTone(freq float64, d time.Duration) error {
	samples := int(float64(sampleRate) * d.Seconds())
	buf := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v*amplitude*math.MaxInt16)))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.sink.Write(buf); err != nil {
		p.suspended = true
		return fmt.Errorf("write tone: %w", err)
	}
	return nil
}

func (p *TonePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sink == nil {
		return nil
	}
	err := p.sink.Close()
	p.sink = nil
	return err
}
