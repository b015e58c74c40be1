package practicesim

import (
	"strings"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
)

// DemoSongs is the catalog used when running offline.
func DemoSongs() []model.Song {
	return []model.Song{
		{
			ID:     "demo-twinkle",
			Title:  "Twinkle Twinkle Little Star",
			Artist: "Traditional",
			Level:  model.LevelA1,
			Genre:  "children",
			Sentences: []model.Sentence{
				demoSentence("demo-twinkle-0", 0, "Twinkle twinkle little star", 3.2,
					[]float64{40, 40, 60, 60, 67, 67, 60}),
				demoSentence("demo-twinkle-1", 1, "How I wonder what you are", 3.4,
					[]float64{53, 53, 47, 47, 43, 43, 40}),
				demoSentence("demo-twinkle-2", 2, "Up above the world so high", 3.1,
					[]float64{60, 60, 53, 53, 47, 47, 43}),
			},
		},
		{
			ID:     "demo-row",
			Title:  "Row Row Row Your Boat",
			Artist: "Traditional",
			Level:  model.LevelA1,
			Genre:  "children",
			Sentences: []model.Sentence{
				demoSentence("demo-row-0", 0, "Row row row your boat", 2.8,
					[]float64{30, 30, 30, 36, 42}),
				demoSentence("demo-row-1", 1, "Gently down the stream", 2.6,
					[]float64{42, 36, 42, 47, 53}),
			},
		},
	}
}

func demoSentence(id string, idx int, text string, dur float64, pitch []float64) model.Sentence {
	return model.Sentence{
		ID:        id,
		Index:     idx,
		Order:     idx,
		Text:      text,
		Duration:  dur,
		PitchData: pitch,
		Words:     wordsOf(text, dur),
	}
}

// wordsOf spreads the words of text evenly over dur seconds.
func wordsOf(text string, dur float64) []model.Word {
	fields := strings.Fields(text)
	words := make([]model.Word, len(fields))
	step := dur / float64(max(1, len(fields)))
	for i, f := range fields {
		words[i] = model.Word{
			Text:      f,
			StartTime: float64(i) * step,
			EndTime:   float64(i+1) * step,
		}
	}
	return words
}
