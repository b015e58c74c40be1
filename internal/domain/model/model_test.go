package model_test

import (
	"encoding/json"
	"testing"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCEFRLevel(t *testing.T) {
	Convey("Given CEFR levels", t, func() {
		Convey("Then every listed level is valid", func() {
			for _, l := range model.Levels {
				So(l.Valid(), ShouldBeTrue)
			}
		})

		Convey("When parsing", func() {
			l, err := model.ParseLevel("B2")
			So(err, ShouldBeNil)
			So(l, ShouldEqual, model.LevelB2)

			_, err = model.ParseLevel("b2")
			So(err, ShouldNotBeNil)
			_, err = model.ParseLevel("D1")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestBackendJSON(t *testing.T) {
	Convey("Given a sentence as the backend serves it", t, func() {
		raw := `{"_id":"s1","index":2,"text":"hello world","duration":3.5,
			"pitchData":[10,40,70],"words":[{"text":"hello","startTime":0,"endTime":1,"isKeyWord":true}]}`

		var s model.Sentence
		err := json.Unmarshal([]byte(raw), &s)

		Convey("Then the backend field names decode", func() {
			So(err, ShouldBeNil)
			So(s.ID, ShouldEqual, "s1")
			So(s.Index, ShouldEqual, 2)
			So(s.PitchData, ShouldResemble, []float64{10, 40, 70})
			So(len(s.Words), ShouldEqual, 1)
			So(s.Words[0].IsKeyWord, ShouldBeTrue)
		})
	})

	Convey("Given an attempt payload", t, func() {
		b, err := json.Marshal(model.AttemptPayload{SongID: "song", SentenceID: "s1", UserDuration: 2})

		Convey("Then it encodes in camelCase", func() {
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"songId":"song"`)
			So(string(b), ShouldContainSubstring, `"sentenceId":"s1"`)
			So(string(b), ShouldContainSubstring, `"userDuration":2`)
		})
	})
}

func TestUserProgress(t *testing.T) {
	Convey("Given a progress overview with a populated song", t, func() {
		raw := `{"profile":{"level":"B1","totalXP":300,"currentStreak":4},
			"weeklyStats":{"sentencesPassed":12,"averageScore":78,"xpEarned":120},
			"songProgresses":[{"_id":"p1","songId":{"_id":"s1","title":"Let It Be","totalSentences":8},"completedSentences":[0,1,2]}]}`

		var p model.UserProgress
		err := json.Unmarshal([]byte(raw), &p)

		Convey("Then profile, weekly stats and songs decode", func() {
			So(err, ShouldBeNil)
			So(p.Profile.Level, ShouldEqual, model.LevelB1)
			So(p.WeeklyStats.SentencesPassed, ShouldEqual, 12)
			So(len(p.SongProgresses), ShouldEqual, 1)
			So(p.SongProgresses[0].Song.Title, ShouldEqual, "Let It Be")
		})

		Convey("Then song completion is rounded from sentence counts", func() {
			So(p.SongProgresses[0].PercentComplete(), ShouldEqual, 38)
			So(model.SongProgressEntry{CompletedSentences: []int{0}}.PercentComplete(), ShouldEqual, 0)
		})
	})
}
