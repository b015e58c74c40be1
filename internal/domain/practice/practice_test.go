package practice

import (
	"errors"
	"testing"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sentences(n int) []model.Sentence {
	out := make([]model.Sentence, n)
	for i := range out {
		out[i] = model.Sentence{ID: string(rune('a' + i)), Index: i, Text: "hello there friend", Duration: 3}
	}
	return out
}

func TestSessionModes(t *testing.T) {
	Convey("Given an empty session", t, func() {
		s := NewSession()
		So(s.Mode(), ShouldEqual, ModeListen)

		Convey("Nothing can be practiced before loading", func() {
			_, err := s.Current()
			So(err, ShouldEqual, ErrNotLoaded)
			So(s.StartRecording(), ShouldEqual, ErrNotLoaded)
			So(s.GoToNext(), ShouldEqual, ErrNotLoaded)
			So(s.Progress().Percent, ShouldEqual, 0)
		})

		Convey("Loading an empty song fails", func() {
			So(errors.Is(s.Load("song", nil), ErrNoSentences), ShouldBeTrue)
		})

		Convey("When a two-sentence song is loaded", func() {
			So(s.Load("song-1", sentences(2)), ShouldBeNil)
			cur, err := s.Current()
			So(err, ShouldBeNil)
			So(cur.ID, ShouldEqual, "a")

			Convey("A full attempt cycle counts attempts", func() {
				So(s.StartRecording(), ShouldBeNil)
				So(s.Snapshot().Recording, ShouldBeTrue)
				So(s.StopRecording(), ShouldBeNil)
				So(s.RecordResult(model.AttemptResult{Passed: false}), ShouldBeNil)
				So(s.Mode(), ShouldEqual, ModeResult)
				So(s.Snapshot().Attempts, ShouldEqual, 1)

				So(s.Retry(), ShouldBeNil)
				So(s.StartRecording(), ShouldBeNil)
				So(s.RecordResult(model.AttemptResult{Passed: true, XPEarned: 10}), ShouldBeNil)
				snap := s.Snapshot()
				So(snap.Attempts, ShouldEqual, 2)
				So(snap.Recording, ShouldBeFalse)
				So(snap.LastResult.XPEarned, ShouldEqual, 10)

				Convey("Going to the next sentence resets attempts", func() {
					So(s.GoToNext(), ShouldBeNil)
					snap := s.Snapshot()
					So(snap.Index, ShouldEqual, 1)
					So(snap.Mode, ShouldEqual, ModeListen)
					So(snap.Attempts, ShouldEqual, 0)
					So(snap.LastResult, ShouldBeNil)
					So(s.Progress(), ShouldResemble, Progress{Index: 1, Total: 2, Percent: 50})

					Convey("And the last sentence completes the song", func() {
						So(s.GoToNext(), ShouldBeNil)
						So(s.Mode(), ShouldEqual, ModeComplete)
						_, err := s.Current()
						So(err, ShouldEqual, ErrComplete)
						So(errors.Is(s.GoToNext(), ErrInvalidTransition), ShouldBeTrue)
						So(errors.Is(s.StartRecording(), ErrInvalidTransition), ShouldBeTrue)
					})
				})
			})

			Convey("Out-of-order transitions are rejected", func() {
				So(errors.Is(s.RecordResult(model.AttemptResult{}), ErrInvalidTransition), ShouldBeTrue)
				So(errors.Is(s.Retry(), ErrInvalidTransition), ShouldBeTrue)
				So(errors.Is(s.StopRecording(), ErrInvalidTransition), ShouldBeTrue)
				So(s.StartRecording(), ShouldBeNil)
				So(errors.Is(s.StartRecording(), ErrInvalidTransition), ShouldBeTrue)
				So(errors.Is(s.GoToNext(), ErrInvalidTransition), ShouldBeTrue)
			})

			Convey("Skipping from listen is allowed", func() {
				So(s.GoToNext(), ShouldBeNil)
				So(s.Progress().Index, ShouldEqual, 1)
			})

			Convey("Reset clears everything", func() {
				So(s.StartRecording(), ShouldBeNil)
				s.Reset()
				snap := s.Snapshot()
				So(snap, ShouldResemble, Snapshot{Mode: ModeListen})
				_, err := s.Current()
				So(err, ShouldEqual, ErrNotLoaded)
			})

			Convey("The snapshot result is a copy", func() {
				So(s.StartRecording(), ShouldBeNil)
				So(s.RecordResult(model.AttemptResult{XPEarned: 5}), ShouldBeNil)
				snap := s.Snapshot()
				snap.LastResult.XPEarned = 99
				So(s.Snapshot().LastResult.XPEarned, ShouldEqual, 5)
			})
		})
	})
}

func TestSimulator(t *testing.T) {
	Convey("Given a seeded simulator", t, func() {
		sim, err := NewSimulator(42)
		So(err, ShouldBeNil)
		sentence := model.Sentence{
			ID:       "s1",
			Duration: 4,
			Words:    []model.Word{{Text: "let"}, {Text: "it"}, {Text: "be"}},
		}

		Convey("An attempt has one sample per word inside the sung band", func() {
			a := sim.Attempt("song", sentence)
			So(a.SongID, ShouldEqual, "song")
			So(a.SentenceID, ShouldEqual, "s1")
			So(a.SpokenWords, ShouldResemble, []string{"let", "it", "be"})
			So(len(a.UserPitchData), ShouldEqual, 3)
			for _, v := range a.UserPitchData {
				So(v, ShouldBeBetweenOrEqual, 200, 300)
			}
			So(a.UserDuration, ShouldBeBetweenOrEqual, 3, 5)

			Convey("And its live series is normalized over the vocal range", func() {
				live := sim.Live(a.UserPitchData)
				So(len(live), ShouldEqual, 3)
				for i, v := range live {
					So(v, ShouldBeBetweenOrEqual, 100.0/3, 200.0/3)
					So(v, ShouldAlmostEqual, (a.UserPitchData[i]-100)/3, 1e-9)
				}
			})
		})

		Convey("The same seed reproduces the same attempt", func() {
			other, err := NewSimulator(42)
			So(err, ShouldBeNil)
			So(other.Attempt("song", sentence), ShouldResemble, sim.Attempt("song", sentence))
		})

		Convey("Words fall back to the sentence text", func() {
			So(SpokenWords(model.Sentence{Text: " hey  jude "}), ShouldResemble, []string{"hey", "jude"})
		})

		Convey("Normalize clamps to the vocal range", func() {
			So(sim.Normalize(100), ShouldEqual, 0)
			So(sim.Normalize(250), ShouldEqual, 50)
			So(sim.Normalize(400), ShouldEqual, 100)
			So(sim.Normalize(50), ShouldEqual, 0)
			So(sim.Normalize(900), ShouldEqual, 100)
		})
	})

	Convey("An inverted vocal range is rejected", t, func() {
		_, err := NewSimulator(1, WithVocalRange(300, 200))
		So(errors.Is(err, ErrInvalidRange), ShouldBeTrue)
	})
}

func TestFrames(t *testing.T) {
	Convey("Frames grow one sample at a time", t, func() {
		frames := Frames("sess", []float64{10, 20, 30})
		So(len(frames), ShouldEqual, 3)
		So(frames[0].Seq, ShouldEqual, 1)
		So(frames[0].UserPitch, ShouldResemble, []float64{10})
		So(frames[2].Seq, ShouldEqual, 3)
		So(frames[2].UserPitch, ShouldResemble, []float64{10, 20, 30})
		So(frames[1].SessionID, ShouldEqual, "sess")
	})

	Convey("An empty series yields one empty frame", t, func() {
		frames := Frames("sess", nil)
		So(len(frames), ShouldEqual, 1)
		So(frames[0].Seq, ShouldEqual, 1)
		So(len(frames[0].UserPitch), ShouldEqual, 0)
	})
}
