package practicesim

import "time"

// Polling of the latest rendered frame.
const (
	LatestPollInterval = 20 * time.Millisecond
	LatestPollTimeout  = 5 * time.Second
)

// StreamReadTimeout bounds the wait for the first streamed frame.
const StreamReadTimeout = 3 * time.Second

// PercentageMultiplier converts ratios to percentages.
const PercentageMultiplier = 100

// leaderboardTop is how many leaderboard entries a run logs.
const leaderboardTop = 5
