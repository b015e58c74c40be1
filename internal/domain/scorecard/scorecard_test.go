package scorecard

import (
	"testing"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTierOf(t *testing.T) {
	Convey("Scores map to tiers at inclusive lower bounds", t, func() {
		So(TierOf(100), ShouldEqual, Perfect)
		So(TierOf(90), ShouldEqual, Perfect)
		So(TierOf(89.9), ShouldEqual, Great)
		So(TierOf(80), ShouldEqual, Great)
		So(TierOf(79.9), ShouldEqual, Good)
		So(TierOf(60), ShouldEqual, Good)
		So(TierOf(59.9), ShouldEqual, NeedsWork)
		So(TierOf(0), ShouldEqual, NeedsWork)
	})

	Convey("Tiers carry palette tokens", t, func() {
		So(Perfect.Color(), ShouldEqual, "scorePerfect")
		So(Great.Color(), ShouldEqual, "scoreGreat")
		So(Good.Color(), ShouldEqual, "scoreGood")
		So(NeedsWork.Color(), ShouldEqual, "scoreNeedsWork")
		So(Tier(9).Color(), ShouldEqual, "scoreNeedsWork")
		So(Tier(9).String(), ShouldEqual, "Tier(9)")
	})
}

func TestEmoji(t *testing.T) {
	Convey("Emoji tiers differ from colour tiers at the top", t, func() {
		So(Emoji(95), ShouldEqual, "🌟")
		So(Emoji(94), ShouldEqual, "⭐")
		So(Emoji(90), ShouldEqual, "⭐")
		So(Emoji(85), ShouldEqual, "👍")
		So(Emoji(60), ShouldEqual, "💪")
		So(Emoji(10), ShouldEqual, "🔄")
	})
}

func TestBuild(t *testing.T) {
	Convey("Given a passed attempt with XP", t, func() {
		res := model.AttemptResult{
			Scores:   model.ScoreBreakdown{Pitch: 92, Duration: 70, Pronunciation: 55, Overall: 81},
			Passed:   true,
			Feedback: []string{"Great rhythm!"},
			XPEarned: 15,
		}
		c := Build(res, 2)

		So(c.Label, ShouldEqual, "PASSED!")
		So(c.Emoji, ShouldEqual, "👍")
		So(c.Color, ShouldEqual, "scoreGreat")
		So(c.XPBadge, ShouldEqual, "+15 XP")
		So(c.Attempt, ShouldEqual, 2)
		So(len(c.Rows), ShouldEqual, 3)
		So(c.Rows[0].Label, ShouldEqual, "Pitch")
		So(c.Rows[0].Tier, ShouldEqual, Perfect)
		So(c.Rows[1].Label, ShouldEqual, "Timing")
		So(c.Rows[1].Value, ShouldEqual, 70)
		So(c.Rows[2].Color, ShouldEqual, "scoreNeedsWork")

		Convey("The card text shows every part", func() {
			txt := c.Text()
			So(txt, ShouldContainSubstring, "81% PASSED!")
			So(txt, ShouldContainSubstring, "+15 XP")
			So(txt, ShouldContainSubstring, "Great rhythm!")
			So(txt, ShouldContainSubstring, "Attempt #2")
		})

		Convey("Feedback is copied", func() {
			res.Feedback[0] = "changed"
			So(c.Feedback[0], ShouldEqual, "Great rhythm!")
		})
	})

	Convey("A failed attempt without XP has no badge", t, func() {
		c := Build(model.AttemptResult{Scores: model.ScoreBreakdown{Overall: 40}}, 1)
		So(c.Label, ShouldEqual, "TRY AGAIN")
		So(c.XPBadge, ShouldBeEmpty)
		So(c.Text(), ShouldNotContainSubstring, "XP")
		So(c.Words, ShouldBeEmpty)
		So(c.Text(), ShouldNotContainSubstring, "Needs practice")
	})

	Convey("Given word verdicts and words to practise", t, func() {
		res := model.AttemptResult{
			Scores: model.ScoreBreakdown{Overall: 65},
			WordScores: []model.WordScore{
				{Word: "let", Correct: true, SpokenAs: "let", Score: 95},
				{Word: "it", Correct: false, SpokenAs: "at", Score: 40},
				{Word: "be", Correct: false, Score: 20},
			},
			NeedsPractice: []string{"it", "be"},
		}
		c := Build(res, 3)

		Convey("Every word gets a row coloured by its verdict", func() {
			So(c.Words, ShouldResemble, []WordRow{
				{Word: "let", Correct: true, Score: 95, Color: "success"},
				{Word: "it", Correct: false, SpokenAs: "at", Score: 40, Color: "error"},
				{Word: "be", Correct: false, Score: 20, Color: "error"},
			})
			So(c.NeedsPractice, ShouldResemble, []string{"it", "be"})
		})

		Convey("The text marks missed words and what was heard", func() {
			txt := c.Text()
			So(txt, ShouldContainSubstring, `let 95%  *it*->"at" 40%  *be* 20%`)
			So(txt, ShouldContainSubstring, "Needs practice: it, be")
			So(txt, ShouldContainSubstring, "Attempt #3")
		})

		Convey("Words to practise are copied", func() {
			res.NeedsPractice[0] = "changed"
			So(c.NeedsPractice[0], ShouldEqual, "it")
		})
	})
}
