package practicesim

import (
	"time"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
	"github.com/lmduc2309/english-music-app/internal/domain/scorecard"
)

// Config holds configuration for a simulated practice run.
type Config struct {
	BaseURL   string          // Base URL of the pitch feedback service
	APIURL    string          // Base URL of the learning backend
	Email     string          // Backend login; empty skips login
	Password  string          // Backend password
	Song      string          // Song title to look up (fuzzy)
	Level     model.CEFRLevel // Only pick songs at this level; empty for any
	Sentences int             // Sentences to practice, 0 for all
	Retries   int             // Extra attempts at a sentence that was not passed
	DailyGoal int             // Daily goal to set on the profile; 0 leaves it
	Workers   int             // Concurrent frame submitters
	Timeout   time.Duration   // HTTP request timeout
	Seed      uint64          // Seed for synthetic attempts
	Offline   bool            // Use the built-in demo song and skip the backend
	LogFile   string          // Log file for run output
	Verbose   bool            // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	SentencesPracticed int
	AttemptsSung       int
	Retries            int
	FramesSubmitted    int
	FramesAccepted     int
	FramesDuplicate    int
	FramesFailed       int
	LatestVerified     int
	StreamFrames       int
	AttemptsScored     int
	Cards              []scorecard.Card

	// Filled from the backend after the song, when one is used.
	AchievementsEarned int
	SongPercent        float64
	GlobalRank         int
	LevelRank          int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
