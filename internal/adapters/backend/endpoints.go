package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
	"github.com/lmduc2309/english-music-app/pkg/logger"
)

// Registration is the body of a sign-up.
type Registration struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type authResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, r Registration) (model.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, r, &resp); err != nil {
		return model.User{}, err
	}
	return resp.User, c.storeToken(ctx, resp.Token)
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return model.User{}, err
	}
	if err := c.storeToken(ctx, resp.Token); err != nil {
		return model.User{}, err
	}
	c.log.Info(ctx, "logged in", logger.String("username", resp.User.Username))
	return resp.User, nil
}

func (c *Client) storeToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token in auth response", ErrRequest)
	}
	return c.tokens.Set(ctx, TokenKey, token)
}

// Profile returns the signed-in user.
func (c *Client) Profile(ctx context.Context) (model.User, error) {
	var resp struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &resp)
	return resp.User, err
}

// ProfileUpdate is a partial profile edit. Zero fields are left unchanged.
type ProfileUpdate struct {
	DisplayName     string   `json:"displayName,omitempty"`
	Avatar          string   `json:"avatar,omitempty"`
	PreferredGenres []string `json:"preferredGenres,omitempty"`
	DailyGoal       int      `json:"dailyGoal,omitempty"`
}

// UpdateProfile edits the signed-in user and returns the result.
func (c *Client) UpdateProfile(ctx context.Context, u ProfileUpdate) (model.User, error) {
	var resp struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPatch, "/auth/profile", nil, u, &resp)
	return resp.User, err
}

// Logout forgets the stored token.
func (c *Client) Logout(ctx context.Context) error {
	return c.tokens.Delete(ctx, TokenKey)
}

// SongFilter narrows ListSongs. Zero fields are omitted.
type SongFilter struct {
	Level  model.CEFRLevel
	Genre  string
	Search string
	Page   int
}

func (f SongFilter) query() url.Values {
	q := url.Values{}
	if f.Level != "" {
		q.Set("level", string(f.Level))
	}
	if f.Genre != "" {
		q.Set("genre", f.Genre)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	return q
}

// ListSongs returns catalog songs matching f.
func (c *Client) ListSongs(ctx context.Context, f SongFilter) ([]model.Song, error) {
	var resp struct {
		Songs []model.Song `json:"songs"`
	}
	err := c.do(ctx, http.MethodGet, "/songs", f.query(), nil, &resp)
	return resp.Songs, err
}

// GetSong returns one song.
func (c *Client) GetSong(ctx context.Context, id string) (model.Song, error) {
	var resp struct {
		Song model.Song `json:"song"`
	}
	err := c.do(ctx, http.MethodGet, "/songs/"+url.PathEscape(id), nil, nil, &resp)
	return resp.Song, err
}

// Sentences returns the sentences of a song in order.
func (c *Client) Sentences(ctx context.Context, songID string) ([]model.Sentence, error) {
	var resp struct {
		Sentences []model.Sentence `json:"sentences"`
	}
	err := c.do(ctx, http.MethodGet, "/songs/"+url.PathEscape(songID)+"/sentences", nil, nil, &resp)
	return resp.Sentences, err
}

// Levels returns how many catalog songs there are per level.
func (c *Client) Levels(ctx context.Context) ([]model.LevelCount, error) {
	var resp struct {
		Levels []model.LevelCount `json:"levels"`
	}
	err := c.do(ctx, http.MethodGet, "/songs/levels", nil, nil, &resp)
	return resp.Levels, err
}

// SubmitAttempt sends an attempt for scoring.
func (c *Client) SubmitAttempt(ctx context.Context, p model.AttemptPayload) (model.AttemptResult, error) {
	var res model.AttemptResult
	err := c.do(ctx, http.MethodPost, "/practice/attempt", nil, p, &res)
	return res, err
}

// HistoryFilter narrows History. Zero fields are omitted.
type HistoryFilter struct {
	SongID string
	Page   int
}

// History returns stored attempts, newest first.
func (c *Client) History(ctx context.Context, f HistoryFilter) ([]model.PracticeRecord, error) {
	q := pageQuery(f.Page)
	if f.SongID != "" {
		if q == nil {
			q = url.Values{}
		}
		q.Set("songId", f.SongID)
	}
	var resp struct {
		Attempts []model.PracticeRecord `json:"attempts"`
	}
	err := c.do(ctx, http.MethodGet, "/practice/history", q, nil, &resp)
	return resp.Attempts, err
}

// DailyStats returns today's practice totals.
func (c *Client) DailyStats(ctx context.Context) (model.PeriodStats, error) {
	var stats model.PeriodStats
	err := c.do(ctx, http.MethodGet, "/practice/daily-stats", nil, nil, &stats)
	return stats, err
}

// UserProgress returns the learner's progress overview.
func (c *Client) UserProgress(ctx context.Context) (model.UserProgress, error) {
	var p model.UserProgress
	err := c.do(ctx, http.MethodGet, "/progress", nil, nil, &p)
	return p, err
}

// SongProgress returns the learner's progress in one song.
func (c *Client) SongProgress(ctx context.Context, songID string) (model.SongProgress, error) {
	var resp struct {
		Progress model.SongProgress `json:"progress"`
	}
	err := c.do(ctx, http.MethodGet, "/progress/song/"+url.PathEscape(songID), nil, nil, &resp)
	return resp.Progress, err
}

type leaderboardResponse struct {
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
}

// Global returns a page of the global leaderboard. Page 0 means the first.
func (c *Client) Global(ctx context.Context, page int) ([]model.LeaderboardEntry, error) {
	var resp leaderboardResponse
	err := c.do(ctx, http.MethodGet, "/leaderboard", pageQuery(page), nil, &resp)
	return resp.Leaderboard, err
}

// ByLevel returns the leaderboard of one CEFR level.
func (c *Client) ByLevel(ctx context.Context, level model.CEFRLevel) ([]model.LeaderboardEntry, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: unknown level %q", ErrRequest, level)
	}
	var resp leaderboardResponse
	err := c.do(ctx, http.MethodGet, "/leaderboard/level/"+string(level), nil, nil, &resp)
	return resp.Leaderboard, err
}

// MyRank returns the learner's global and level rank.
func (c *Client) MyRank(ctx context.Context) (model.Rank, error) {
	var r model.Rank
	err := c.do(ctx, http.MethodGet, "/leaderboard/me", nil, nil, &r)
	return r, err
}

// Achievements returns every achievement with the learner's unlock state.
func (c *Client) Achievements(ctx context.Context) ([]model.Achievement, error) {
	var resp struct {
		Achievements []model.Achievement `json:"achievements"`
	}
	err := c.do(ctx, http.MethodGet, "/achievements", nil, nil, &resp)
	return resp.Achievements, err
}

// MyAchievements returns the achievements the learner has earned.
func (c *Client) MyAchievements(ctx context.Context) ([]model.Achievement, error) {
	var resp struct {
		Achievements []model.Achievement `json:"achievements"`
	}
	err := c.do(ctx, http.MethodGet, "/achievements/mine", nil, nil, &resp)
	return resp.Achievements, err
}

// CheckAchievements asks the backend to evaluate unlocks and returns the
// newly earned ones.
func (c *Client) CheckAchievements(ctx context.Context) ([]model.Achievement, error) {
	var resp struct {
		NewlyEarned []model.Achievement `json:"newlyEarned"`
	}
	err := c.do(ctx, http.MethodPost, "/achievements/check", nil, nil, &resp)
	return resp.NewlyEarned, err
}
