package practicesim

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lmduc2309/english-music-app/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log output to both the console and a file. If logFile
// is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "practice_sim_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return err
		}
	}
	return nil
}

// ShowHelp prints usage information for the practice simulator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Practice Simulator
==================

Sings through a song against the pitch feedback service with synthetic
attempts, checking that the newest live frame always wins.

Usage:
  go run ./cmd/practice-sim [options]

Options:
  -url string
        Base URL of the pitch feedback service (default "http://localhost:9080")
  -api string
        Base URL of the learning backend (default "http://localhost:3000/api")
  -email string
        Backend account email (optional)
  -password string
        Backend account password
  -song string
        Song title to practice, matched loosely (default: first song)
  -level string
        Only practice songs at this CEFR level, A1 to C2 (default: any)
  -sentences int
        Number of sentences to practice, 0 for all (default 0)
  -retries int
        Extra attempts at a sentence that was not passed (default 0)
  -daily-goal int
        Daily goal to set on the profile, 0 to leave it (default 0)
  -workers int
        Concurrent frame submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 15s)
  -seed uint
        Seed for synthetic attempts (default 1)
  -offline
        Use the built-in demo song and skip the backend
  -log string
        Log file (default: practice_sim_TIMESTAMP.log)
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Practice the demo song against a local service
  go run ./cmd/practice-sim -offline

  # Practice a backend song with scoring
  go run ./cmd/practice-sim -email me@example.com -password secret -song "let it be"
`)
}
