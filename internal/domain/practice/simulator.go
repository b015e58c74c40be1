package practice

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
)

// Default vocal range used to normalize Hz into pitch units.
const (
	DefaultMinHz = 100.0
	DefaultMaxHz = 400.0

	// Synthetic voices sing between baseHz and baseHz+spreadHz.
	baseHz   = 200.0
	spreadHz = 100.0
	// Duration jitter is uniform in ±durationJitter/2 seconds.
	durationJitter = 2.0
)

// SimOption configures a Simulator.
type SimOption func(*Simulator)

// WithVocalRange sets the Hz range mapped onto [0,100].
func WithVocalRange(minHz, maxHz float64) SimOption {
	return func(s *Simulator) {
		s.minHz, s.maxHz = minHz, maxHz
	}
}

// Simulator produces synthetic attempts. Nothing here listens to audio: the
// pitch samples are random draws, one per spoken word.
type Simulator struct {
	rng   *rand.Rand
	minHz float64
	maxHz float64
}

// NewSimulator returns a simulator whose output is fully determined by seed.
func NewSimulator(seed uint64, opts ...SimOption) (*Simulator, error) {
	s := &Simulator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		minHz: DefaultMinHz,
		maxHz: DefaultMaxHz,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !(s.maxHz > s.minHz) || s.minHz < 0 || math.IsInf(s.maxHz, 0) {
		return nil, fmt.Errorf("%w: %g-%g Hz", ErrInvalidRange, s.minHz, s.maxHz)
	}
	return s, nil
}

// Normalize maps hz onto [0,100] over the vocal range, clamping outside it.
func (s *Simulator) Normalize(hz float64) float64 {
	v := (hz - s.minHz) / (s.maxHz - s.minHz) * 100
	return math.Max(0, math.Min(100, v))
}

// SpokenWords returns the words of a sentence, falling back to its text.
func SpokenWords(sentence model.Sentence) []string {
	if len(sentence.Words) == 0 {
		return strings.Fields(sentence.Text)
	}
	words := make([]string, len(sentence.Words))
	for i, w := range sentence.Words {
		words[i] = w.Text
	}
	return words
}

// Live maps a series in Hz onto the [0,100] units the visualizer draws.
func (s *Simulator) Live(hz []float64) []float64 {
	out := make([]float64, len(hz))
	for i, v := range hz {
		out[i] = s.Normalize(v)
	}
	return out
}

// Attempt fabricates a sung attempt at sentence. UserPitchData is in Hz,
// the unit the scoring backend expects.
func (s *Simulator) Attempt(songID string, sentence model.Sentence) model.AttemptPayload {
	words := SpokenWords(sentence)
	pitch := make([]float64, len(words))
	for i := range pitch {
		pitch[i] = baseHz + s.rng.Float64()*spreadHz
	}
	duration := sentence.Duration + (s.rng.Float64()-0.5)*durationJitter
	return model.AttemptPayload{
		SongID:        songID,
		SentenceID:    sentence.ID,
		UserPitchData: pitch,
		UserDuration:  math.Max(0, duration),
		SpokenWords:   words,
	}
}

// Frames expands a pitch series into the live frames a client would send
// while singing: frame n carries the first n samples and has seq n. An
// empty series yields a single empty frame.
func Frames(sessionID string, userPitch []float64) []model.Frame {
	if len(userPitch) == 0 {
		return []model.Frame{{SessionID: sessionID, Seq: 1, UserPitch: []float64{}}}
	}
	frames := make([]model.Frame, len(userPitch))
	for i := range userPitch {
		frames[i] = model.Frame{
			SessionID: sessionID,
			Seq:       uint64(i + 1),
			UserPitch: append([]float64(nil), userPitch[:i+1]...),
		}
	}
	return frames
}
