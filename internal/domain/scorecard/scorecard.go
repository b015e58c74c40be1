// Package scorecard turns backend-computed attempt scores into the tiers,
// colours and labels a learner sees after singing a sentence.
package scorecard

import (
	"fmt"
	"strings"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
)

// Tier is the band a score falls in.
type Tier int

const (
	NeedsWork Tier = iota
	Good
	Great
	Perfect
)

// Tier lower bounds, inclusive.
const (
	PerfectScore = 90.0
	GreatScore   = 80.0
	GoodScore    = 60.0
)

var tierNames = [...]string{
	NeedsWork: "needs_work",
	Good:      "good",
	Great:     "great",
	Perfect:   "perfect",
}

var tierColors = [...]string{
	NeedsWork: "scoreNeedsWork",
	Good:      "scoreGood",
	Great:     "scoreGreat",
	Perfect:   "scorePerfect",
}

func (t Tier) String() string {
	if t < NeedsWork || t > Perfect {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// Color returns the palette token for the tier.
func (t Tier) Color() string {
	if t < NeedsWork || t > Perfect {
		return tierColors[NeedsWork]
	}
	return tierColors[t]
}

// TierOf maps a score in [0,100] to its tier.
func TierOf(score float64) Tier {
	switch {
	case score >= PerfectScore:
		return Perfect
	case score >= GreatScore:
		return Great
	case score >= GoodScore:
		return Good
	default:
		return NeedsWork
	}
}

// Emoji returns the reaction shown next to an overall score.
func Emoji(score float64) string {
	switch {
	case score >= 95:
		return "🌟"
	case score >= 90:
		return "⭐"
	case score >= 80:
		return "👍"
	case score >= 60:
		return "💪"
	default:
		return "🔄"
	}
}

// Row is one line of the score breakdown.
type Row struct {
	Icon  string  `json:"icon"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Tier  Tier    `json:"-"`
	Color string  `json:"color"`
}

// WordRow is the verdict on one spoken word.
type WordRow struct {
	Word     string  `json:"word"`
	Correct  bool    `json:"correct"`
	SpokenAs string  `json:"spoken_as,omitempty"`
	Score    float64 `json:"score"`
	Color    string  `json:"color"`
}

// Card is the presentation of one attempt result.
type Card struct {
	Overall       float64   `json:"overall"`
	Emoji         string    `json:"emoji"`
	Color         string    `json:"color"`
	Label         string    `json:"label"`
	Rows          []Row     `json:"rows"`
	Words         []WordRow `json:"words"`
	XPBadge       string    `json:"xp_badge,omitempty"`
	Feedback      []string  `json:"feedback"`
	NeedsPractice []string  `json:"needs_practice,omitempty"`
	Attempt       int       `json:"attempt"`
}

func row(icon, label string, v float64) Row {
	t := TierOf(v)
	return Row{Icon: icon, Label: label, Value: v, Tier: t, Color: t.Color()}
}

// Build lays out the card for result as the attempt-th try.
func Build(result model.AttemptResult, attempt int) Card {
	s := result.Scores
	c := Card{
		Overall: s.Overall,
		Emoji:   Emoji(s.Overall),
		Color:   TierOf(s.Overall).Color(),
		Label:   "TRY AGAIN",
		Rows: []Row{
			row("🎵", "Pitch", s.Pitch),
			row("⏱️", "Timing", s.Duration),
			row("🗣️", "Pronunciation", s.Pronunciation),
		},
		Words:         make([]WordRow, len(result.WordScores)),
		Feedback:      append([]string(nil), result.Feedback...),
		NeedsPractice: append([]string(nil), result.NeedsPractice...),
		Attempt:       attempt,
	}
	for i, w := range result.WordScores {
		c.Words[i] = WordRow{Word: w.Word, Correct: w.Correct, Score: w.Score, Color: "error"}
		if w.Correct {
			c.Words[i].Color = "success"
		} else {
			c.Words[i].SpokenAs = w.SpokenAs
		}
	}
	if result.Passed {
		c.Label = "PASSED!"
	}
	if result.XPEarned > 0 {
		c.XPBadge = fmt.Sprintf("+%d XP", result.XPEarned)
	}
	return c
}

// barWidth is the number of cells a 100% row fills in Text.
const barWidth = 20

// Text renders the card for a terminal.
func (c Card) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %.0f%% %s\n", c.Emoji, c.Overall, c.Label)
	for _, r := range c.Rows {
		filled := int(r.Value / 100 * barWidth)
		filled = max(0, min(barWidth, filled))
		fmt.Fprintf(&b, "  %-14s [%s%s] %3.0f%%\n", r.Label,
			strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), r.Value)
	}
	if len(c.Words) > 0 {
		cells := make([]string, len(c.Words))
		for i, w := range c.Words {
			cells[i] = w.cell()
		}
		fmt.Fprintf(&b, "  %s\n", strings.Join(cells, "  "))
	}
	if c.XPBadge != "" {
		fmt.Fprintf(&b, "  %s\n", c.XPBadge)
	}
	for _, f := range c.Feedback {
		fmt.Fprintf(&b, "  - %s\n", f)
	}
	if len(c.NeedsPractice) > 0 {
		fmt.Fprintf(&b, "  Needs practice: %s\n", strings.Join(c.NeedsPractice, ", "))
	}
	fmt.Fprintf(&b, "  Attempt #%d\n", c.Attempt)
	return b.String()
}

// cell renders a word as "be 88%", or "*it*->\"at\" 40%" when missed.
func (w WordRow) cell() string {
	if w.Correct {
		return fmt.Sprintf("%s %.0f%%", w.Word, w.Score)
	}
	if w.SpokenAs != "" {
		return fmt.Sprintf("*%s*->%q %.0f%%", w.Word, w.SpokenAs, w.Score)
	}
	return fmt.Sprintf("*%s* %.0f%%", w.Word, w.Score)
}
