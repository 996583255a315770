// Package chime plays short alert tones through the system audio
// device. Tones are synthesized in-process, so no audio assets ship
// with the binary.
package chime

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/visioncook/internal/domain"
	"github.com/hammamikhairi/visioncook/internal/logger"
)

const (
	sampleRate   = 24000
	channelCount = 1
)

// Chime owns the audio context and maps broadcast events to tones:
// a countdown reaching zero rings three beeps, an item turning cooked
// rings a rising two-tone, a step hint gives a single short ping.
type Chime struct {
	ctx *oto.Context
	log *logger.Logger

	mu      sync.Mutex
	playing sync.WaitGroup
}

// New creates a chime. Initializes the system audio context; returns
// an error if the audio device is unavailable.
func New(log *logger.Logger) (*Chime, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("chime initialized (rate=%d, channels=%d)", sampleRate, channelCount)
	return &Chime{ctx: ctx, log: log}, nil
}

// Apply inspects one broadcast event and rings the matching tone, if
// any. Non-blocking; playback happens on its own goroutine.
func (c *Chime) Apply(ev domain.Event) {
	switch ev.Kind {
	case domain.EventTimerTick:
		if ev.Recipe != nil && ev.Recipe.RemainingSeconds == 0 {
			c.log.Info("countdown hit zero, ringing")
			c.ring(880, 880, 880)
		}
	case domain.EventStateChange:
		if ev.Item != nil && ev.Item.NewState == domain.ItemCooked {
			c.log.Info("item %d cooked, ringing", ev.Item.ItemID)
			c.ring(660, 990)
		}
	case domain.EventStepHint:
		c.ring(760)
	}
}

// Wait blocks until all in-flight tones finish. Call before exiting
// so the last alert isn't cut off.
func (c *Chime) Wait() {
	c.playing.Wait()
}

// ring plays the given tone frequencies in sequence, asynchronously.
func (c *Chime) ring(freqs ...float64) {
	c.playing.Add(1)
	go func() {
		defer c.playing.Done()

		// Serialize playback so overlapping alerts don't stack into noise.
		c.mu.Lock()
		defer c.mu.Unlock()

		for i, f := range freqs {
			if i > 0 {
				time.Sleep(60 * time.Millisecond)
			}
			c.play(tone(f, 180*time.Millisecond))
		}
	}()
}

// play blocks until the PCM finishes.
func (c *Chime) play(pcm []byte) {
	player := c.ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	if err := player.Close(); err != nil {
		c.log.Warn("closing tone player: %v", err)
	}
}

// tone synthesizes a sine wave as 16-bit little-endian mono PCM, with
// a short linear fade at both ends to avoid clicks.
func tone(freq float64, d time.Duration) []byte {
	samples := int(float64(sampleRate) * d.Seconds())
	fade := sampleRate / 100 // 10ms
	if fade*2 > samples {
		fade = samples / 2
	}

	buf := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)

		gain := 1.0
		if i < fade {
			gain = float64(i) / float64(fade)
		} else if samples-i < fade {
			gain = float64(samples-i) / float64(fade)
		}

		sample := int16(v * gain * 0.4 * math.MaxInt16)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(sample))
	}
	return buf
}
