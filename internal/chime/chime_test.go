package chime

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestToneShape(t *testing.T) {
	pcm := tone(880, 180*time.Millisecond)

	wantSamples := int(float64(sampleRate) * 0.18)
	if len(pcm) != wantSamples*2 {
		t.Fatalf("expected %d bytes, got %d", wantSamples*2, len(pcm))
	}

	// Fade-in means the first sample is silent.
	if first := int16(binary.LittleEndian.Uint16(pcm[:2])); first != 0 {
		t.Fatalf("expected silent first sample, got %d", first)
	}

	// Peak amplitude stays within the 0.4 gain envelope.
	peak := int16(0)
	for i := 0; i < len(pcm); i += 2 {
		s := int16(binary.LittleEndian.Uint16(pcm[i : i+2]))
		if s > peak {
			peak = s
		}
	}
	if peak == 0 {
		t.Fatal("tone is silent")
	}
	if limit := int16(13435); peak > limit { // 0.41 * MaxInt16
		t.Fatalf("peak %d exceeds gain envelope %d", peak, limit)
	}
}

func TestToneShortDuration(t *testing.T) {
	// Durations shorter than two fade windows must not panic.
	pcm := tone(440, time.Millisecond)
	if len(pcm) == 0 {
		t.Fatal("expected some samples")
	}
}
