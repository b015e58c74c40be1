// Package practice drives a learner through the sentences of a song and
// produces synthetic attempts for them.
package practice

import (
	"fmt"
	"sync"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
)

// Mode is the step a practice session is in.
type Mode string

// Practice modes. A sentence cycles listen → sing → result and then either
// retries (listen) or moves on; complete follows the last sentence.
const (
	ModeListen   Mode = "listen"
	ModeSing     Mode = "sing"
	ModeResult   Mode = "result"
	ModeComplete Mode = "complete"
)

// Progress is how far through the song the learner is.
type Progress struct {
	Index   int     `json:"index"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	SongID     string               `json:"song_id"`
	Index      int                  `json:"index"`
	Total      int                  `json:"total"`
	Mode       Mode                 `json:"mode"`
	Recording  bool                 `json:"recording"`
	Attempts   int                  `json:"attempts"`
	LastResult *model.AttemptResult `json:"last_result,omitempty"`
}

// Session is the practice state machine for one song. It is safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	songID    string
	sentences []model.Sentence
	index     int
	mode      Mode
	recording bool
	attempts  int
	last      *model.AttemptResult
}

// NewSession returns an empty session in listen mode.
func NewSession() *Session {
	return &Session{mode: ModeListen}
}

func transitionError(from, to Mode) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Load starts songID from its first sentence.
func (s *Session) Load(songID string, sentences []model.Sentence) error {
	if len(sentences) == 0 {
		return fmt.Errorf("load %q: %w", songID, ErrNoSentences)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.songID = songID
	s.sentences = append([]model.Sentence(nil), sentences...)
	s.index = 0
	s.mode = ModeListen
	s.recording = false
	s.attempts = 0
	s.last = nil
	return nil
}

// Current returns the sentence being practiced.
func (s *Session) Current() (model.Sentence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case len(s.sentences) == 0:
		return model.Sentence{}, ErrNotLoaded
	case s.mode == ModeComplete:
		return model.Sentence{}, ErrComplete
	}
	return s.sentences[s.index], nil
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// StartRecording moves from listen to sing.
func (s *Session) StartRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sentences) == 0 {
		return ErrNotLoaded
	}
	if s.mode != ModeListen {
		return transitionError(s.mode, ModeSing)
	}
	s.mode = ModeSing
	s.recording = true
	return nil
}

// StopRecording ends capture while staying in sing mode.
func (s *Session) StopRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeSing || !s.recording {
		return fmt.Errorf("%w: not recording", ErrInvalidTransition)
	}
	s.recording = false
	return nil
}

// RecordResult stores the scored attempt and shows it.
func (s *Session) RecordResult(res model.AttemptResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeSing {
		return transitionError(s.mode, ModeResult)
	}
	s.recording = false
	s.mode = ModeResult
	s.attempts++
	r := res
	s.last = &r
	return nil
}

// Retry returns to listen for another attempt at the same sentence.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != ModeResult {
		return transitionError(s.mode, ModeListen)
	}
	s.mode = ModeListen
	return nil
}

// GoToNext advances to the next sentence, or completes the song after the
// last one. Attempt count and last result are reset.
func (s *Session) GoToNext() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sentences) == 0 {
		return ErrNotLoaded
	}
	if s.mode == ModeSing || s.mode == ModeComplete {
		return transitionError(s.mode, ModeListen)
	}
	if s.index+1 >= len(s.sentences) {
		s.mode = ModeComplete
		return nil
	}
	s.index++
	s.mode = ModeListen
	s.attempts = 0
	s.last = nil
	return nil
}

// Reset clears the loaded song.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.songID = ""
	s.sentences = nil
	s.index = 0
	s.mode = ModeListen
	s.recording = false
	s.attempts = 0
	s.last = nil
}

// Progress reports the current sentence position.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Progress{Index: s.index, Total: len(s.sentences)}
	if p.Total > 0 {
		p.Percent = float64(s.index) / float64(p.Total) * 100
	}
	return p
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		SongID:    s.songID,
		Index:     s.index,
		Total:     len(s.sentences),
		Mode:      s.mode,
		Recording: s.recording,
		Attempts:  s.attempts,
	}
	if s.last != nil {
		r := *s.last
		snap.LastResult = &r
	}
	return snap
}
