// Package practicesim sings through a song against the pitch feedback
// service with synthetic attempts. Live frames of each attempt are posted
// concurrently and out of order, and the run checks that the newest frame
// is the one the service ends up showing.
package practicesim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lmduc2309/english-music-app/internal/adapters/backend"
	"github.com/lmduc2309/english-music-app/internal/domain/catalog"
	"github.com/lmduc2309/english-music-app/internal/domain/model"
	"github.com/lmduc2309/english-music-app/internal/domain/practice"
	"github.com/lmduc2309/english-music-app/internal/domain/scorecard"
	"github.com/lmduc2309/english-music-app/internal/domain/types"
	"github.com/lmduc2309/english-music-app/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Error constants.
var (
	ErrNoSong = errors.New("no song to practice")
)

// runner carries the state of one Run.
type runner struct {
	cfg     *Config
	svc     *serviceClient
	api     *backend.Client
	sim     *practice.Simulator
	shuffle *rand.Rand
	log     logger.Logger

	mu    sync.Mutex
	stats *Stats
}

// Run executes a complete simulated practice of one song and returns the
// run statistics.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	sim, err := practice.NewSimulator(cfg.Seed)
	if err != nil {
		return Stats{}, err
	}
	r := &runner{
		cfg:     cfg,
		svc:     newServiceClient(cfg.BaseURL, cfg.Timeout),
		sim:     sim,
		shuffle: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1)),
		log:     logger.Named("practice-sim"),
		stats:   &Stats{StartTime: time.Now()},
	}
	if !cfg.Offline {
		r.api = backend.New(backend.WithBaseURL(cfg.APIURL), backend.WithTimeout(cfg.Timeout))
	}

	r.log.Info(ctx, "starting practice simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("apiURL", cfg.APIURL),
		logger.String("song", cfg.Song),
		logger.String("level", string(cfg.Level)),
		logger.Int("workers", cfg.Workers),
		logger.Uint64("seed", cfg.Seed),
		logger.Bool("offline", cfg.Offline))

	// Step 1: Check service health
	if err := r.svc.health(ctx); err != nil {
		return *r.stats, fmt.Errorf("service health check failed: %w", err)
	}
	r.log.Info(ctx, "service is healthy")

	// Step 2: Load the song
	song, err := r.loadSong(ctx)
	if err != nil {
		return *r.stats, fmt.Errorf("song loading failed: %w", err)
	}
	sentences := song.Sentences
	if r.cfg.Sentences > 0 && r.cfg.Sentences < len(sentences) {
		sentences = sentences[:r.cfg.Sentences]
	}
	session := practice.NewSession()
	if err := session.Load(song.ID, sentences); err != nil {
		return *r.stats, err
	}
	r.log.Info(ctx, "practicing song",
		logger.String("title", song.Title),
		logger.String("artist", song.Artist),
		logger.Int("sentences", len(sentences)))

	// Step 3: Sing every sentence, retrying the ones not passed
	for session.Mode() != practice.ModeComplete {
		if err := r.practiceSentence(ctx, song.ID, session); err != nil {
			return *r.stats, fmt.Errorf("sentence %d: %w", session.Progress().Index, err)
		}
		if snap := session.Snapshot(); retryable(snap, r.cfg.Retries) {
			r.log.Info(ctx, "retrying sentence",
				logger.Int("index", snap.Index),
				logger.Int("attempts", snap.Attempts))
			r.addStats(func(s *Stats) { s.Retries++ })
			if err := session.Retry(); err != nil {
				return *r.stats, err
			}
			continue
		}
		r.addStats(func(s *Stats) { s.SentencesPracticed++ })
		if err := session.GoToNext(); err != nil {
			return *r.stats, err
		}
	}

	// Step 4: Report where the learner stands
	if r.api != nil {
		r.summarize(ctx, song)
	}

	// Final statistics
	r.stats.EndTime = time.Now()
	r.stats.Duration = r.stats.EndTime.Sub(r.stats.StartTime)
	r.displayFinalStats(ctx)

	if r.stats.LatestVerified != r.stats.AttemptsSung {
		return *r.stats, fmt.Errorf("latest frame verified for %d of %d attempts",
			r.stats.LatestVerified, r.stats.AttemptsSung)
	}
	r.log.Info(ctx, "practice simulation completed successfully")
	return *r.stats, nil
}

// retryable reports whether the sentence just scored should be sung again.
func retryable(snap practice.Snapshot, retries int) bool {
	return snap.LastResult != nil && !snap.LastResult.Passed && snap.Attempts <= retries
}

// loadSong finds the song to practice in the demo catalog or the backend.
func (r *runner) loadSong(ctx context.Context) (model.Song, error) {
	if r.cfg.Offline {
		return pickSong(DemoSongs(), r.cfg.Song, r.cfg.Level)
	}

	if r.cfg.Email != "" {
		if _, err := r.api.Login(ctx, r.cfg.Email, r.cfg.Password); err != nil {
			return model.Song{}, fmt.Errorf("login: %w", err)
		}
		if r.cfg.DailyGoal > 0 {
			u, err := r.api.UpdateProfile(ctx, backend.ProfileUpdate{DailyGoal: r.cfg.DailyGoal})
			if err != nil {
				return model.Song{}, fmt.Errorf("update profile: %w", err)
			}
			r.log.Info(ctx, "daily goal set", logger.Int("dailyGoal", u.DailyGoal))
		}
	}
	if r.cfg.Level != "" {
		if err := r.checkLevel(ctx); err != nil {
			return model.Song{}, err
		}
	}
	songs, err := r.api.ListSongs(ctx, backend.SongFilter{Level: r.cfg.Level})
	if err != nil {
		return model.Song{}, err
	}
	song, err := pickSong(songs, r.cfg.Song, r.cfg.Level)
	if err != nil {
		return model.Song{}, err
	}
	if song.Sentences, err = r.api.Sentences(ctx, song.ID); err != nil {
		return model.Song{}, err
	}
	return song, nil
}

// checkLevel fails early when the catalog has no songs at the wanted level.
func (r *runner) checkLevel(ctx context.Context) error {
	levels, err := r.api.Levels(ctx)
	if err != nil {
		return fmt.Errorf("list levels: %w", err)
	}
	for _, l := range levels {
		if l.Level == r.cfg.Level && l.Count > 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: no songs at level %s", ErrNoSong, r.cfg.Level)
}

// pickSong returns the best match for query among the songs at level, or
// the first of them when query is empty. An empty level allows any.
func pickSong(songs []model.Song, query string, level model.CEFRLevel) (model.Song, error) {
	if level != "" {
		songs = catalog.ByLevel(songs, level)
	}
	if len(songs) == 0 {
		return model.Song{}, ErrNoSong
	}
	if query == "" {
		return songs[0], nil
	}
	m, ok := catalog.Find(songs, query)
	if !ok {
		return model.Song{}, fmt.Errorf("%w: nothing matches %q", ErrNoSong, query)
	}
	return m.Song, nil
}

// practiceSentence runs one listen → sing → result cycle.
func (r *runner) practiceSentence(ctx context.Context, songID string, session *practice.Session) error {
	sentence, err := session.Current()
	if err != nil {
		return err
	}
	if err := session.StartRecording(); err != nil {
		return err
	}

	created, err := r.svc.createSession(ctx, songID, sentence)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.svc.closeSession(context.WithoutCancel(ctx), created.SessionID); err != nil {
			r.log.Warn(ctx, "failed to close session", logger.String("session", created.SessionID), logger.Error(err))
		}
	}()

	stream, err := r.svc.openStream(ctx, created.SessionID)
	if err != nil {
		r.log.Warn(ctx, "stream unavailable", logger.Error(err))
	} else {
		defer stream.close()
	}

	attempt := r.sim.Attempt(songID, sentence)
	if err := session.StopRecording(); err != nil {
		return err
	}

	frames := practice.Frames(created.SessionID, r.sim.Live(attempt.UserPitchData))
	for i := range frames {
		frames[i].FrameID = uuid.NewString()
	}
	if err := r.submitFrames(ctx, frames); err != nil {
		return err
	}

	last := frames[len(frames)-1].Seq
	view, err := r.svc.waitForSeq(ctx, created.SessionID, last)
	if err != nil {
		r.log.Warn(ctx, "latest frame check failed", logger.Error(err))
	} else {
		r.addStats(func(s *Stats) { s.LatestVerified++ })
	}
	if stream != nil {
		if _, err := stream.next(ctx); err != nil {
			r.log.Warn(ctx, "no frame on stream", logger.Error(err))
		} else {
			r.addStats(func(s *Stats) { s.StreamFrames++ })
		}
	}

	r.log.Info(ctx, "sentence sung",
		logger.String("text", sentence.Text),
		logger.String("bars", BarRow(view)),
		logger.Float64("matchRatio", view.Summary.MatchRatio),
		logger.Uint64("seq", view.Seq))

	result, err := r.score(ctx, attempt, view, session.Snapshot().Attempts+1)
	if err != nil {
		return err
	}
	if err := session.RecordResult(result); err != nil {
		return err
	}
	r.addStats(func(s *Stats) { s.AttemptsSung++ })
	return nil
}

// submitFrames posts frames concurrently in shuffled order.
func (r *runner) submitFrames(ctx context.Context, frames []model.Frame) error {
	order := r.shuffle.Perm(len(frames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.cfg.Workers))
	for _, i := range order {
		f := frames[i]
		g.Go(func() error {
			outcome := r.svc.submitFrame(gctx, f)
			r.addStats(func(s *Stats) {
				s.FramesSubmitted++
				switch outcome {
				case outcomeAccepted:
					s.FramesAccepted++
				case outcomeDuplicate:
					s.FramesDuplicate++
				default:
					s.FramesFailed++
				}
			})
			return gctx.Err()
		})
	}
	return g.Wait()
}

// score submits the attempt to the backend and prints its score card.
// Offline runs have no scorer and record an unscored pass.
func (r *runner) score(ctx context.Context, attempt model.AttemptPayload, view types.FrameView, attemptNo int) (model.AttemptResult, error) {
	if r.api == nil {
		return model.AttemptResult{Passed: true, CanContinue: true}, nil
	}
	res, err := r.api.SubmitAttempt(ctx, attempt)
	if err != nil {
		return model.AttemptResult{}, fmt.Errorf("submit attempt: %w", err)
	}
	card := scorecard.Build(res, attemptNo)
	r.addStats(func(s *Stats) {
		s.AttemptsScored++
		s.Cards = append(s.Cards, card)
	})
	r.log.Info(ctx, "attempt scored\n"+card.Text(),
		logger.Float64("overall", res.Scores.Overall),
		logger.Int("liveGoodBars", view.Summary.Good))
	return res, nil
}

// summarize logs the learner's standing after the song. Every lookup is
// best effort: a failure is logged and the run still succeeds.
func (r *runner) summarize(ctx context.Context, song model.Song) {
	if earned, err := r.api.CheckAchievements(ctx); err != nil {
		r.log.Warn(ctx, "achievement check failed", logger.Error(err))
	} else {
		r.addStats(func(s *Stats) { s.AchievementsEarned = len(earned) })
		for _, a := range earned {
			r.log.Info(ctx, "achievement unlocked",
				logger.String("name", a.Name),
				logger.String("rarity", a.Rarity),
				logger.Int("xpReward", a.XPReward))
		}
	}
	mine, errMine := r.api.MyAchievements(ctx)
	all, errAll := r.api.Achievements(ctx)
	if err := errors.Join(errMine, errAll); err != nil {
		r.log.Warn(ctx, "achievement listing failed", logger.Error(err))
	} else {
		r.log.Info(ctx, "achievements", logger.Int("earned", len(mine)), logger.Int("total", len(all)))
	}

	if p, err := r.api.SongProgress(ctx, song.ID); err != nil {
		r.log.Warn(ctx, "song progress unavailable", logger.Error(err))
	} else {
		r.addStats(func(s *Stats) { s.SongPercent = p.PercentComplete })
		r.log.Info(ctx, "song progress",
			logger.String("title", song.Title),
			logger.Float64("percentComplete", p.PercentComplete),
			logger.Float64("bestScore", p.BestScore),
			logger.Bool("completed", p.Completed))
	}
	if history, err := r.api.History(ctx, backend.HistoryFilter{SongID: song.ID}); err != nil {
		r.log.Warn(ctx, "practice history unavailable", logger.Error(err))
	} else {
		r.log.Info(ctx, "practice history", logger.Int("attempts", len(history)))
	}
	if d, err := r.api.DailyStats(ctx); err != nil {
		r.log.Warn(ctx, "daily stats unavailable", logger.Error(err))
	} else {
		r.log.Info(ctx, "today",
			logger.Int("sentencesPassed", d.SentencesPassed),
			logger.Float64("averageScore", d.AverageScore),
			logger.Int("xpEarned", d.XPEarned))
	}
	if p, err := r.api.UserProgress(ctx); err != nil {
		r.log.Warn(ctx, "progress overview unavailable", logger.Error(err))
	} else {
		r.log.Info(ctx, "this week",
			logger.String("level", string(p.Profile.Level)),
			logger.Int("totalXP", p.Profile.TotalXP),
			logger.Int("streak", p.Profile.CurrentStreak),
			logger.Int("sentencesPassed", p.WeeklyStats.SentencesPassed),
			logger.Int("songsInProgress", len(p.SongProgresses)))
		for _, sp := range p.SongProgresses {
			r.log.Debug(ctx, "song in progress",
				logger.String("title", sp.Song.Title),
				logger.Int("percentComplete", sp.PercentComplete()))
		}
	}

	if rank, err := r.api.MyRank(ctx); err != nil {
		r.log.Warn(ctx, "rank unavailable", logger.Error(err))
	} else {
		r.addStats(func(s *Stats) {
			s.GlobalRank = rank.GlobalRank
			s.LevelRank = rank.LevelRank
		})
		r.log.Info(ctx, "rank",
			logger.Int("global", rank.GlobalRank),
			logger.Int("level", rank.LevelRank),
			logger.Int("totalXP", rank.TotalXP))
	}
	board, err := r.leaderboard(ctx)
	if err != nil {
		r.log.Warn(ctx, "leaderboard unavailable", logger.Error(err))
		return
	}
	for _, e := range board[:min(len(board), leaderboardTop)] {
		r.log.Info(ctx, "leaderboard",
			logger.Int("rank", e.Rank),
			logger.String("username", e.Username),
			logger.Int("totalXP", e.TotalXP))
	}
}

// leaderboard returns the level board when a level is set, else the global one.
func (r *runner) leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	if r.cfg.Level != "" {
		return r.api.ByLevel(ctx, r.cfg.Level)
	}
	return r.api.Global(ctx, 0)
}

func (r *runner) addStats(fn func(*Stats)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.stats)
}

// displayFinalStats logs the final run statistics.
func (r *runner) displayFinalStats(ctx context.Context) {
	s := r.stats
	var successRate float64
	if s.FramesSubmitted > 0 {
		successRate = float64(s.FramesAccepted) / float64(s.FramesSubmitted) * PercentageMultiplier
	}
	r.log.Info(ctx, "final statistics",
		logger.Int("sentencesPracticed", s.SentencesPracticed),
		logger.Int("attemptsSung", s.AttemptsSung),
		logger.Int("retries", s.Retries),
		logger.Int("framesSubmitted", s.FramesSubmitted),
		logger.Int("framesAccepted", s.FramesAccepted),
		logger.Int("framesDuplicate", s.FramesDuplicate),
		logger.Int("framesFailed", s.FramesFailed),
		logger.Int("latestVerified", s.LatestVerified),
		logger.Int("streamFrames", s.StreamFrames),
		logger.Int("attemptsScored", s.AttemptsScored),
		logger.Duration("duration", s.Duration),
		logger.Float64("successRate", successRate))
}
