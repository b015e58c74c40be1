package model

import (
	"fmt"
	"math"
	"time"
)

// CEFRLevel is a language proficiency level, A1 (beginner) to C2.
type CEFRLevel string

// CEFR levels.
const (
	LevelA1 CEFRLevel = "A1"
	LevelA2 CEFRLevel = "A2"
	LevelB1 CEFRLevel = "B1"
	LevelB2 CEFRLevel = "B2"
	LevelC1 CEFRLevel = "C1"
	LevelC2 CEFRLevel = "C2"
)

// Levels lists all levels from easiest to hardest.
var Levels = []CEFRLevel{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// Valid reports whether l is a known level.
func (l CEFRLevel) Valid() bool {
	for _, v := range Levels {
		if v == l {
			return true
		}
	}
	return false
}

// ParseLevel validates s as a CEFR level.
func ParseLevel(s string) (CEFRLevel, error) {
	l := CEFRLevel(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown CEFR level %q", s)
	}
	return l, nil
}

// User is a learner profile as served by the learning backend.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	Username           string     `json:"username"`
	DisplayName        string     `json:"displayName"`
	Avatar             string     `json:"avatar,omitempty"`
	CurrentLevel       CEFRLevel  `json:"currentLevel"`
	TotalXP            int        `json:"totalXP"`
	CurrentStreak      int        `json:"currentStreak"`
	LongestStreak      int        `json:"longestStreak"`
	SongsCompleted     int        `json:"songsCompleted"`
	SentencesPracticed int        `json:"sentencesPracticed"`
	AverageScore       float64    `json:"averageScore"`
	PreferredGenres    []string   `json:"preferredGenres,omitempty"`
	DailyGoal          int        `json:"dailyGoal"`
	LastPracticeDate   *time.Time `json:"lastPracticeDate,omitempty"`
}

// Word is one timed word of a sentence.
type Word struct {
	Text       string  `json:"text"`
	Phonetic   string  `json:"phonetic"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	IsKeyWord  bool    `json:"isKeyWord"`
	Definition string  `json:"definition,omitempty"`
}

// Sentence is a line of a song the learner sings. PitchData is the
// reference contour in normalized units.
type Sentence struct {
	ID         string    `json:"_id"`
	Index      int       `json:"index"`
	Order      int       `json:"order"`
	Text       string    `json:"text"`
	Phonetic   string    `json:"phonetic,omitempty"`
	StartTime  float64   `json:"startTime"`
	EndTime    float64   `json:"endTime"`
	Duration   float64   `json:"duration"`
	PitchData  []float64 `json:"pitchData"`
	Difficulty CEFRLevel `json:"difficulty,omitempty"`
	Words      []Word    `json:"words"`
}

// Song is a catalog entry.
type Song struct {
	ID             string     `json:"_id"`
	Title          string     `json:"title"`
	Artist         string     `json:"artist"`
	YoutubeID      string     `json:"youtubeId"`
	ThumbnailURL   string     `json:"thumbnailUrl,omitempty"`
	Level          CEFRLevel  `json:"level"`
	Genre          string     `json:"genre"`
	BPM            float64    `json:"bpm"`
	Duration       float64    `json:"duration"`
	TotalSentences int        `json:"totalSentences"`
	PlayCount      int        `json:"playCount"`
	AverageScore   float64    `json:"averageScore"`
	Sentences      []Sentence `json:"sentences,omitempty"`
}

// SongProgress is a learner's progress through one song.
type SongProgress struct {
	SongID             string     `json:"songId"`
	CompletedSentences int        `json:"completedSentences"`
	TotalSentences     int        `json:"totalSentences"`
	BestScore          float64    `json:"bestScore"`
	LastPracticed      *time.Time `json:"lastPracticed,omitempty"`
	Completed          bool       `json:"completed"`
	PercentComplete    float64    `json:"percentComplete"`
}

// ScoreBreakdown holds backend-computed scores, each in [0,100].
type ScoreBreakdown struct {
	Pitch         float64 `json:"pitch"`
	Duration      float64 `json:"duration"`
	Pronunciation float64 `json:"pronunciation"`
	Overall       float64 `json:"overall"`
}

// WordScore is the backend's verdict on one spoken word.
type WordScore struct {
	Word     string  `json:"word"`
	Correct  bool    `json:"correct"`
	SpokenAs string  `json:"spokenAs,omitempty"`
	Score    float64 `json:"score"`
}

// AttemptPayload is one sung attempt submitted for scoring.
type AttemptPayload struct {
	SongID        string    `json:"songId"`
	SentenceID    string    `json:"sentenceId"`
	UserPitchData []float64 `json:"userPitchData"`
	UserDuration  float64   `json:"userDuration"`
	SpokenWords   []string  `json:"spokenWords"`
}

// AttemptResult is the backend's response to an attempt.
type AttemptResult struct {
	Scores            ScoreBreakdown `json:"scores"`
	Passed            bool           `json:"passed"`
	Feedback          []string       `json:"feedback"`
	XPEarned          int            `json:"xpEarned"`
	WordScores        []WordScore    `json:"wordScores"`
	NeedsPractice     []string       `json:"needsPractice,omitempty"`
	CanContinue       bool           `json:"canContinue"`
	NextSentenceIndex int            `json:"nextSentenceIndex"`
	IsSongComplete    bool           `json:"isSongComplete"`
}

// Requirement is the unlock condition of an achievement.
type Requirement struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// Achievement is a badge a learner can earn.
type Achievement struct {
	ID          string      `json:"_id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Category    string      `json:"category"`
	XPReward    int         `json:"xpReward"`
	Requirement Requirement `json:"requirement"`
	Rarity      string      `json:"rarity"`
	Unlocked    bool        `json:"unlocked"`
	EarnedAt    *time.Time  `json:"earnedAt,omitempty"`
}

// LeaderboardEntry is one ranked learner.
type LeaderboardEntry struct {
	Rank          int       `json:"rank"`
	UserID        string    `json:"userId"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"displayName"`
	Avatar        string    `json:"avatar,omitempty"`
	TotalXP       int       `json:"totalXP"`
	CurrentStreak int       `json:"currentStreak"`
	CurrentLevel  CEFRLevel `json:"currentLevel"`
}

// PeriodStats sums practice over a day or a week.
type PeriodStats struct {
	SentencesPracticed int     `json:"sentencesPracticed"`
	SentencesPassed    int     `json:"sentencesPassed"`
	AverageScore       float64 `json:"averageScore"`
	XPEarned           int     `json:"xpEarned"`
}

// ProgressProfile is the learner summary on the progress overview.
type ProgressProfile struct {
	Level              CEFRLevel `json:"level"`
	TotalXP            int       `json:"totalXP"`
	CurrentStreak      int       `json:"currentStreak"`
	LongestStreak      int       `json:"longestStreak"`
	SongsCompleted     int       `json:"songsCompleted"`
	SentencesPracticed int       `json:"sentencesPracticed"`
	AverageScore       float64   `json:"averageScore"`
}

// SongProgressEntry is one song on the progress overview. The backend
// populates Song in place of the song id and lists completed sentence
// indexes.
type SongProgressEntry struct {
	ID                 string     `json:"_id"`
	Song               Song       `json:"songId"`
	CompletedSentences []int      `json:"completedSentences"`
	BestScore          float64    `json:"bestScore"`
	Completed          bool       `json:"completed"`
	LastPracticed      *time.Time `json:"lastPracticed,omitempty"`
}

// PercentComplete is the share of the song's sentences completed, rounded.
func (e SongProgressEntry) PercentComplete() int {
	if e.Song.TotalSentences <= 0 {
		return 0
	}
	return int(math.Round(float64(len(e.CompletedSentences)) / float64(e.Song.TotalSentences) * 100))
}

// UserProgress is the learner's progress overview.
type UserProgress struct {
	Profile        ProgressProfile     `json:"profile"`
	WeeklyStats    PeriodStats         `json:"weeklyStats"`
	SongProgresses []SongProgressEntry `json:"songProgresses"`
}

// Rank is the learner's own position on the leaderboards.
type Rank struct {
	GlobalRank   int       `json:"globalRank"`
	LevelRank    int       `json:"levelRank"`
	TotalXP      int       `json:"totalXP"`
	CurrentLevel CEFRLevel `json:"currentLevel,omitempty"`
}

// LevelCount is the number of catalog songs at one level.
type LevelCount struct {
	Level CEFRLevel `json:"level"`
	Count int       `json:"count"`
}

// PracticeRecord is one stored attempt from the practice history.
type PracticeRecord struct {
	ID          string         `json:"_id"`
	SongID      string         `json:"songId"`
	SentenceID  string         `json:"sentenceId"`
	Scores      ScoreBreakdown `json:"scores"`
	Passed      bool           `json:"passed"`
	XPEarned    int            `json:"xpEarned"`
	SpokenWords []string       `json:"spokenWords,omitempty"`
	CreatedAt   *time.Time     `json:"createdAt,omitempty"`
}
