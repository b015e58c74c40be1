// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	framequeue "github.com/lmduc2309/english-music-app/internal/adapters/mq/queue"
	workerpool "github.com/lmduc2309/english-music-app/internal/adapters/mq/worker"
	"github.com/lmduc2309/english-music-app/internal/adapters/repository"
	"github.com/lmduc2309/english-music-app/internal/domain/dedupe"
	"github.com/lmduc2309/english-music-app/internal/domain/model"
	"github.com/lmduc2309/english-music-app/internal/domain/pitch"
	"github.com/lmduc2309/english-music-app/internal/domain/types"
	"github.com/lmduc2309/english-music-app/pkg/logger"
	"github.com/lmduc2309/english-music-app/pkg/metrics"
)

// Default service limits.
const (
	DefaultMaxBarCount = 200
	DefaultMaxSamples  = 4096

	defaultQueueSize  = 10000
	defaultDedupeSize = 50000
	sweepDivisor      = 4
)

// Request and result shapes shared with the HTTP layer.
type (
	VisualizeRequest = types.VisualizeRequest
	SessionRequest   = types.SessionRequest
	SubmitResult     = types.SubmitResult
)

// components are the stateful parts created by Start.
type components struct {
	store      *repository.MemoryStore
	deduper    dedupe.Deduper
	frameQueue *framequeue.InMemoryQueue
	workerPool *workerpool.Pool
}

// Service renders pitch feedback, statelessly or for live sessions.
type Service struct {
	mu sync.RWMutex

	// Core components, nil until Start
	parts      *components
	visualizer *pitch.Visualizer

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	maxBarCount    int
	maxSamples     int
	sessionTTL     time.Duration
	visualizerOpts []pitch.Option

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		maxBarCount: DefaultMaxBarCount,
		maxSamples:  DefaultMaxSamples,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.visualizer = pitch.NewVisualizer(s.visualizerOpts...)
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting pitch feedback service...")

	storeOpts := []repository.Option{repository.WithSessionTTL(s.sessionTTL)}
	if s.sessionTTL > 0 {
		storeOpts = append(storeOpts, repository.WithSweepInterval(s.sessionTTL/sweepDivisor))
	}
	c := &components{
		store:      repository.NewMemoryStore(ctx, storeOpts...),
		deduper:    dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize)),
		frameQueue: framequeue.NewInMemoryQueue(framequeue.WithCapacity(s.queueSize)),
	}
	c.workerPool = workerpool.NewPool(s.workerCount, c.frameQueue, &frameRenderer{svc: s, store: c.store}, c.store)
	c.workerPool.Start(ctx)

	s.parts = c
	s.started = true
	s.logger.Info(ctx, "pitch feedback service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("barCount", s.visualizer.BarCount()),
		logger.Duration("sessionTTL", s.sessionTTL),
	)
	return nil
}

// Stop drains queued frames and shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping pitch feedback service...")

	if err := s.parts.workerPool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	if err := s.parts.store.Close(); err != nil {
		s.logger.Error(ctx, "store close failed", logger.Error(err))
	}

	s.parts = nil
	s.started = false
	s.logger.Info(ctx, "pitch feedback service stopped")
}

// Visualize renders one frame without touching any session state.
func (s *Service) Visualize(_ context.Context, req VisualizeRequest) (types.FrameView, error) {
	v, err := s.visualizerFor(req.BarCount, req.Height)
	if err != nil {
		return types.FrameView{}, err
	}
	if err := s.validateSeries("user_pitch", req.UserPitch); err != nil {
		return types.FrameView{}, err
	}
	if err := s.validateSeries("reference_pitch", req.ReferencePitch); err != nil {
		return types.FrameView{}, err
	}

	f, err := s.render(v, req.UserPitch, req.ReferencePitch)
	if err != nil {
		return types.FrameView{}, err
	}
	metrics.RecordVisualize()
	return types.NewFrameView(f), nil
}

// CreateSession opens a live session for one reference contour.
func (s *Service) CreateSession(ctx context.Context, req SessionRequest) (model.Session, error) {
	c, err := s.active()
	if err != nil {
		return model.Session{}, err
	}
	v, err := s.visualizerFor(req.BarCount, req.Height)
	if err != nil {
		return model.Session{}, err
	}
	if err := s.validateSeries("reference_pitch", req.ReferencePitch); err != nil {
		return model.Session{}, err
	}

	sess := model.Session{
		ID:             uuid.New().String(),
		SongID:         req.SongID,
		SentenceID:     req.SentenceID,
		ReferencePitch: req.ReferencePitch,
		BarCount:       v.BarCount(),
		Height:         v.Height(),
	}
	if err := c.store.CreateSession(ctx, sess); err != nil {
		return model.Session{}, err
	}
	metrics.RecordSessionCreated()
	s.logger.Debug(ctx, "session created",
		logger.String("session", sess.ID),
		logger.String("song", sess.SongID),
		logger.Int("bars", sess.BarCount),
	)
	return c.store.Session(ctx, sess.ID)
}

// SubmitFrame queues a live frame for rendering. A frame id seen before is
// reported as a duplicate and not queued again. When the queue is full the
// id is forgotten so the client may retry.
func (s *Service) SubmitFrame(ctx context.Context, f model.Frame) (SubmitResult, error) {
	c, err := s.active()
	if err != nil {
		return SubmitResult{}, err
	}
	if err := s.validateSeries("user_pitch", f.UserPitch); err != nil {
		return SubmitResult{}, err
	}
	if _, err := c.store.Session(ctx, f.SessionID); err != nil {
		return SubmitResult{}, err
	}

	if f.FrameID == "" {
		f.FrameID = f.SessionID + ":" + strconv.FormatUint(f.Seq, 10)
	}
	res := SubmitResult{FrameID: f.FrameID}

	if c.deduper.SeenAndRecord(ctx, f.FrameID) {
		metrics.RecordFrameDuplicate()
		s.logger.Debug(ctx, "duplicate frame detected, skipping", logger.String("frameID", f.FrameID))
		res.Duplicate = true
		return res, nil
	}

	f.UserPitch = append([]float64(nil), f.UserPitch...)
	if f.ReceivedAt.IsZero() {
		f.ReceivedAt = time.Now()
	}
	if !c.frameQueue.Enqueue(ctx, f) {
		c.deduper.Unrecord(ctx, f.FrameID)
		return SubmitResult{}, fmt.Errorf("submit frame %s: %w", f.FrameID, ErrBackpressure)
	}
	metrics.RecordFrameReceived()
	return res, nil
}

// LatestFrame returns the newest rendered frame of a session.
func (s *Service) LatestFrame(ctx context.Context, sessionID string) (types.FrameView, error) {
	c, err := s.active()
	if err != nil {
		return types.FrameView{}, err
	}
	rf, err := c.store.Latest(ctx, sessionID)
	if err != nil {
		return types.FrameView{}, err
	}
	return types.NewSessionFrameView(rf), nil
}

// Subscribe streams rendered frames of a session until cancel is called or
// the session goes away.
func (s *Service) Subscribe(ctx context.Context, sessionID string) (<-chan model.RenderedFrame, func(), error) {
	c, err := s.active()
	if err != nil {
		return nil, nil, err
	}
	return c.store.Subscribe(ctx, sessionID)
}

// CloseSession removes a session and ends its streams.
func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	c, err := s.active()
	if err != nil {
		return err
	}
	return c.store.Delete(ctx, sessionID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"barCount":    s.visualizer.BarCount(),
		"height":      s.visualizer.Height(),
		"maxBarCount": s.maxBarCount,
		"maxSamples":  s.maxSamples,
	}
	if s.started {
		stats["queueLength"] = s.parts.frameQueue.Len(ctx)
		stats["sessions"] = s.parts.store.Count(ctx)
		stats["dedupeEntries"] = s.parts.deduper.Size()
	}
	return stats
}

func (s *Service) active() (*components, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.parts, nil
}

// visualizerFor applies per-request overrides to the default visualizer.
func (s *Service) visualizerFor(barCount int, height float64) (*pitch.Visualizer, error) {
	if barCount < 0 || barCount > s.maxBarCount {
		return nil, fmt.Errorf("bar_count must be between 1 and %d: %w", s.maxBarCount, ErrInvalidInput)
	}
	if height < 0 || math.IsNaN(height) || math.IsInf(height, 0) {
		return nil, fmt.Errorf("height must be positive: %w", ErrInvalidInput)
	}
	if barCount == 0 && height == 0 {
		return s.visualizer, nil
	}
	return s.visualizer.With(pitch.WithBarCount(barCount), pitch.WithHeight(height)), nil
}

func (s *Service) validateSeries(name string, series []float64) error {
	if len(series) > s.maxSamples {
		return fmt.Errorf("%s has %d samples, limit is %d: %w", name, len(series), s.maxSamples, ErrInvalidInput)
	}
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s[%d] is not a finite number: %w", name, i, ErrInvalidInput)
		}
	}
	return nil
}

// render runs the visualizer and records render metrics.
func (s *Service) render(v *pitch.Visualizer, user, reference []float64) (pitch.Frame, error) {
	start := time.Now()
	f, err := v.Render(user, reference)
	if err != nil {
		return pitch.Frame{}, err
	}
	metrics.RecordRenderLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordBars(pitch.Good.String(), f.Summary.Good)
	metrics.RecordBars(pitch.Warning.String(), f.Summary.Warning)
	metrics.RecordBars(pitch.Poor.String(), f.Summary.Poor)
	metrics.RecordBars(pitch.Neutral.String(), f.Summary.Neutral)
	return f, nil
}

// frameRenderer adapts the service to worker.Renderer.
type frameRenderer struct {
	svc   *Service
	store *repository.MemoryStore
}

func (r *frameRenderer) Render(ctx context.Context, f model.Frame) (model.RenderedFrame, error) {
	sess, err := r.store.Session(ctx, f.SessionID)
	if err != nil {
		return model.RenderedFrame{}, err
	}
	v := r.svc.visualizer.With(pitch.WithBarCount(sess.BarCount), pitch.WithHeight(sess.Height))
	frame, err := r.svc.render(v, f.UserPitch, sess.ReferencePitch)
	if err != nil {
		return model.RenderedFrame{}, err
	}
	return model.RenderedFrame{
		SessionID:  f.SessionID,
		Seq:        f.Seq,
		FrameID:    f.FrameID,
		Frame:      frame,
		RenderedAt: time.Now(),
	}, nil
}
