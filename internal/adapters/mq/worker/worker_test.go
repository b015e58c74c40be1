package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/lmduc2309/english-music-app/internal/adapters/mq/queue"
	worker "github.com/lmduc2309/english-music-app/internal/adapters/mq/worker"
	model "github.com/lmduc2309/english-music-app/internal/domain/model"
	logging "github.com/lmduc2309/english-music-app/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	frames chan queue.Frame
	once   sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{frames: make(chan queue.Frame, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Frame {
	return mq.frames
}

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.frames) })
	return nil
}

type mockRenderer struct {
	mu     sync.Mutex
	errors map[string]error
}

func newMockRenderer() *mockRenderer {
	return &mockRenderer{errors: make(map[string]error)}
}

func (mr *mockRenderer) Render(ctx context.Context, f model.Frame) (model.RenderedFrame, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if err, ok := mr.errors[f.SessionID]; ok {
		return model.RenderedFrame{}, err
	}
	return model.RenderedFrame{SessionID: f.SessionID, Seq: f.Seq, FrameID: f.FrameID}, nil
}

func (mr *mockRenderer) setError(session string, err error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.errors[session] = err
}

type mockPublisher struct {
	mu        sync.Mutex
	latest    map[string]uint64
	published int
	stale     int
	err       error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{latest: make(map[string]uint64)}
}

func (mp *mockPublisher) Publish(ctx context.Context, f model.RenderedFrame) (bool, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if mp.err != nil {
		return false, mp.err
	}
	if cur, ok := mp.latest[f.SessionID]; ok && f.Seq <= cur {
		mp.stale++
		return false, nil
	}
	mp.latest[f.SessionID] = f.Seq
	mp.published++
	return true, nil
}

func (mp *mockPublisher) seq(session string) (uint64, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	s, ok := mp.latest[session]
	return s, ok
}

func (mp *mockPublisher) counts() (int, int) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.published, mp.stale
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a new InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		renderer := newMockRenderer()
		publisher := newMockPublisher()

		convey.Convey("When creating workers", func() {
			w1 := worker.NewInMemoryWorker(q, renderer, publisher)
			w2 := worker.NewInMemoryWorker(q, renderer, publisher, worker.WithName("render-1"))

			convey.So(w1, convey.ShouldNotBeNil)
			convey.So(w2, convey.ShouldNotBeNil)
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewInMemoryWorker(q, renderer, publisher)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			convey.Convey("And frames are queued", func() {
				q.frames <- model.Frame{FrameID: "f1", SessionID: "s1", Seq: 1}
				q.frames <- model.Frame{FrameID: "f2", SessionID: "s1", Seq: 2}

				convey.Convey("Then they are rendered and published", func() {
					convey.So(waitFor(func() bool {
						s, _ := publisher.seq("s1")
						return s == 2
					}), convey.ShouldBeTrue)
				})
			})

			convey.Convey("And a stale frame follows a newer one", func() {
				q.frames <- model.Frame{FrameID: "f5", SessionID: "s1", Seq: 5}
				q.frames <- model.Frame{FrameID: "f3", SessionID: "s1", Seq: 3}

				convey.Convey("Then the newer frame stays published", func() {
					convey.So(waitFor(func() bool {
						_, stale := publisher.counts()
						return stale == 1
					}), convey.ShouldBeTrue)
					s, _ := publisher.seq("s1")
					convey.So(s, convey.ShouldEqual, 5)
				})
			})

			convey.Convey("And rendering fails", func() {
				renderer.setError("bad", errors.New("render error"))
				q.frames <- model.Frame{FrameID: "b1", SessionID: "bad", Seq: 1}
				q.frames <- model.Frame{FrameID: "g1", SessionID: "good", Seq: 1}

				convey.Convey("Then the worker keeps going", func() {
					convey.So(waitFor(func() bool {
						_, ok := publisher.seq("good")
						return ok
					}), convey.ShouldBeTrue)
					_, ok := publisher.seq("bad")
					convey.So(ok, convey.ShouldBeFalse)
				})
			})

			convey.Convey("And shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
				defer shutdownCancel()

				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(errors.Is(w.Shutdown(shutdownCtx), worker.ErrStopped), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the queue closes", func() {
			w := worker.NewInMemoryWorker(q, renderer, publisher)
			exited := make(chan struct{})
			go func() {
				w.Run(context.Background())
				close(exited)
			}()
			_ = q.Close()

			convey.Convey("Then the worker exits", func() {
				select {
				case <-exited:
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		publisher := newMockPublisher()
		pool := worker.NewPool(4, q, newMockRenderer(), publisher)
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When frames of several sessions are queued", func() {
			for seq := uint64(1); seq <= 20; seq++ {
				for _, s := range []string{"a", "b"} {
					convey.So(q.Enqueue(ctx, model.Frame{SessionID: s, Seq: seq}), convey.ShouldBeTrue)
				}
			}

			convey.Convey("Then shutdown drains them and every session ends on its highest frame", func() {
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
				published, stale := publisher.counts()
				convey.So(published+stale, convey.ShouldEqual, 40)
				for _, s := range []string{"a", "b"} {
					seq, _ := publisher.seq(s)
					convey.So(seq, convey.ShouldEqual, 20)
				}
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}
