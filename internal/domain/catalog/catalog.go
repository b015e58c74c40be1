// Package catalog finds songs by loosely typed names.
package catalog

import (
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/lmduc2309/english-music-app/internal/domain/model"
)

// DefaultThreshold is the minimum Jaro-Winkler similarity for a match.
const DefaultThreshold = 0.8

// Match is a song and how closely it matched the query.
type Match struct {
	Song  model.Song
	Score float64
}

// Find returns the song best matching query, trying the title alone and
// "artist title". An exact title match (ignoring case) wins outright.
func Find(songs []model.Song, query string) (Match, bool) {
	return FindWithThreshold(songs, query, DefaultThreshold)
}

// FindWithThreshold is Find with a custom similarity threshold.
func FindWithThreshold(songs []model.Song, query string, threshold float64) (Match, bool) {
	q := normalize(query)
	if q == "" {
		return Match{}, false
	}

	var best Match
	found := false
	for _, s := range songs {
		title := normalize(s.Title)
		if title == q {
			return Match{Song: s, Score: 1}, true
		}
		score := matchr.JaroWinkler(q, title, false)
		if artist := normalize(s.Artist); artist != "" {
			if v := matchr.JaroWinkler(q, artist+" "+title, false); v > score {
				score = v
			}
		}
		if score >= threshold && score > best.Score {
			best = Match{Song: s, Score: score}
			found = true
		}
	}
	return best, found
}

// ByLevel returns the songs at level, preserving order.
func ByLevel(songs []model.Song, level model.CEFRLevel) []model.Song {
	var out []model.Song
	for _, s := range songs {
		if s.Level == level {
			out = append(out, s)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
