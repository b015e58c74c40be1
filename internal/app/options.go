package service

import (
	"time"

	"github.com/lmduc2309/english-music-app/internal/domain/pitch"
	"github.com/lmduc2309/english-music-app/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of render workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of frames waiting to be rendered.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many frame ids are remembered for idempotency.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVisualizerOptions sets the display defaults used when a request does
// not override them.
func WithVisualizerOptions(opts ...pitch.Option) Option {
	return func(s *Service) {
		s.visualizerOpts = append(s.visualizerOpts, opts...)
	}
}

// WithSessionTTL sets how long an idle session is kept. Zero keeps sessions
// until they are closed.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithMaxBarCount caps the bar count a request may ask for.
func WithMaxBarCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBarCount = n
		}
	}
}

// WithMaxSamples caps the length of a submitted pitch series.
func WithMaxSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSamples = n
		}
	}
}
