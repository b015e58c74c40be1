package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/lmduc2309/english-music-app/internal/adapters/backend"
	"github.com/lmduc2309/english-music-app/internal/domain/model"
	"github.com/lmduc2309/english-music-app/internal/practicesim"
)

// Default configuration constants.
const (
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the pitch feedback service")
		apiURL    = flag.String("api", backend.DefaultBaseURL, "Base URL of the learning backend")
		email     = flag.String("email", "", "Backend account email")
		password  = flag.String("password", "", "Backend account password")
		song      = flag.String("song", "", "Song title to practice (default: first song)")
		level     = flag.String("level", "", "Only practice songs at this CEFR level (A1-C2)")
		sentences = flag.Int("sentences", 0, "Number of sentences to practice, 0 for all")
		retries   = flag.Int("retries", 0, "Extra attempts at a sentence that was not passed")
		dailyGoal = flag.Int("daily-goal", 0, "Daily goal to set on the profile, 0 to leave it")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent frame submitters")
		timeout   = flag.Duration("timeout", backend.DefaultTimeout, "HTTP request timeout")
		seed      = flag.Uint64("seed", 1, "Seed for synthetic attempts")
		offline   = flag.Bool("offline", false, "Use the built-in demo song and skip the backend")
		logFile   = flag.String("log", "", "Log file (default: practice_sim_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable debug logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		practicesim.ShowHelp()
		return
	}

	if err := practicesim.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	var cefr model.CEFRLevel
	if *level != "" {
		l, err := model.ParseLevel(*level)
		if err != nil {
			os.Stderr.WriteString("Invalid -level: " + err.Error() + "\n")
			os.Exit(1)
		}
		cefr = l
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &practicesim.Config{
		BaseURL:   *baseURL,
		APIURL:    *apiURL,
		Email:     *email,
		Password:  *password,
		Song:      *song,
		Level:     cefr,
		Sentences: *sentences,
		Retries:   *retries,
		DailyGoal: *dailyGoal,
		Workers:   *workers,
		Timeout:   *timeout,
		Seed:      *seed,
		Offline:   *offline,
		LogFile:   *logFile,
		Verbose:   *verbose,
	}

	if _, err := practicesim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Practice run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
