package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func rendered(session string, seq uint64) model.RenderedFrame {
	return model.RenderedFrame{SessionID: session, Seq: seq}
}

func TestMemoryStoreSessions(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx)
		defer store.Close()

		So(store.Count(ctx), ShouldEqual, 0)

		Convey("When a session is created", func() {
			ref := []float64{10, 20, 30}
			err := store.CreateSession(ctx, model.Session{ID: "s1", ReferencePitch: ref, BarCount: 20})
			So(err, ShouldBeNil)
			ref[0] = 99

			Convey("Then it can be read back without aliasing the caller slice", func() {
				sess, err := store.Session(ctx, "s1")
				So(err, ShouldBeNil)
				So(sess.ReferencePitch, ShouldResemble, []float64{10, 20, 30})
				So(sess.CreatedAt.IsZero(), ShouldBeFalse)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then creating it again fails", func() {
				err := store.CreateSession(ctx, model.Session{ID: "s1"})
				So(errors.Is(err, ErrSessionExists), ShouldBeTrue)
			})

			Convey("Then it has no frame yet", func() {
				_, err := store.Latest(ctx, "s1")
				So(errors.Is(err, ErrNoFrame), ShouldBeTrue)
			})

			Convey("And it is deleted", func() {
				So(store.Delete(ctx, "s1"), ShouldBeNil)

				_, err := store.Session(ctx, "s1")
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(store.Delete(ctx, "s1"), ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When reading an unknown session", func() {
			_, err := store.Session(ctx, "nope")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			_, err = store.Latest(ctx, "nope")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			_, err = store.Publish(ctx, rendered("nope", 1))
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemoryStoreLastWriterWins(t *testing.T) {
	Convey("Given a session", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx)
		defer store.Close()
		So(store.CreateSession(ctx, model.Session{ID: "s1"}), ShouldBeNil)

		Convey("When frames arrive out of order", func() {
			for _, seq := range []uint64{3, 1, 5, 4, 2} {
				_, err := store.Publish(ctx, rendered("s1", seq))
				So(err, ShouldBeNil)
			}

			Convey("Then the highest sequence number is kept", func() {
				f, err := store.Latest(ctx, "s1")
				So(err, ShouldBeNil)
				So(f.Seq, ShouldEqual, 5)
			})
		})

		Convey("When the same sequence number is published twice", func() {
			ok1, _ := store.Publish(ctx, rendered("s1", 7))
			ok2, err := store.Publish(ctx, rendered("s1", 7))

			Convey("Then the second publish is rejected as stale", func() {
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeFalse)
				So(err, ShouldBeNil)
			})
		})

		Convey("When many goroutines publish concurrently", func() {
			var wg sync.WaitGroup
			for i := 1; i <= 200; i++ {
				wg.Add(1)
				go func(seq uint64) {
					defer wg.Done()
					_, _ = store.Publish(ctx, rendered("s1", seq))
				}(uint64(i))
			}
			wg.Wait()

			Convey("Then the latest frame is the maximum", func() {
				f, err := store.Latest(ctx, "s1")
				So(err, ShouldBeNil)
				So(f.Seq, ShouldEqual, 200)
			})
		})
	})
}

func TestMemoryStoreSubscribe(t *testing.T) {
	Convey("Given a session with a subscriber", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx)
		defer store.Close()
		So(store.CreateSession(ctx, model.Session{ID: "s1"}), ShouldBeNil)

		ch, cancel, err := store.Subscribe(ctx, "s1")
		So(err, ShouldBeNil)

		Convey("When one frame is published", func() {
			_, _ = store.Publish(ctx, rendered("s1", 1))

			Convey("Then the subscriber receives it", func() {
				f := <-ch
				So(f.Seq, ShouldEqual, 1)
			})
		})

		Convey("When several frames are published before the subscriber reads", func() {
			for seq := uint64(1); seq <= 5; seq++ {
				_, _ = store.Publish(ctx, rendered("s1", seq))
			}

			Convey("Then only the newest is pending", func() {
				f := <-ch
				So(f.Seq, ShouldEqual, 5)
				So(len(ch), ShouldEqual, 0)
			})
		})

		Convey("When a stale frame is published", func() {
			_, _ = store.Publish(ctx, rendered("s1", 2))
			<-ch
			_, _ = store.Publish(ctx, rendered("s1", 1))

			Convey("Then nothing is delivered", func() {
				So(len(ch), ShouldEqual, 0)
			})
		})

		Convey("When the subscription is cancelled", func() {
			cancel()
			cancel()

			Convey("Then the channel is closed", func() {
				_, open := <-ch
				So(open, ShouldBeFalse)
			})
		})

		Convey("When the session is deleted", func() {
			So(store.Delete(ctx, "s1"), ShouldBeNil)

			Convey("Then the channel is closed and cancel is harmless", func() {
				_, open := <-ch
				So(open, ShouldBeFalse)
				So(cancel, ShouldNotPanic)
			})
		})

		Convey("When a late subscriber joins", func() {
			_, _ = store.Publish(ctx, rendered("s1", 9))
			late, lateCancel, err := store.Subscribe(ctx, "s1")
			So(err, ShouldBeNil)
			defer lateCancel()

			Convey("Then it gets the current frame immediately", func() {
				f := <-late
				So(f.Seq, ShouldEqual, 9)
			})
		})
	})

	Convey("Given an unknown session", t, func() {
		store := NewMemoryStore(context.Background())
		defer store.Close()

		_, _, err := store.Subscribe(context.Background(), "nope")
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)
	})
}

func TestMemoryStoreSweep(t *testing.T) {
	Convey("Given a store with a one minute TTL and a fake clock", t, func() {
		ctx := context.Background()
		var mu sync.Mutex
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		clock := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}
		advance := func(d time.Duration) {
			mu.Lock()
			now = now.Add(d)
			mu.Unlock()
		}

		store := NewMemoryStore(ctx, WithSessionTTL(time.Minute), WithSweepInterval(time.Hour), WithClock(clock))
		defer store.Close()

		So(store.CreateSession(ctx, model.Session{ID: "idle"}), ShouldBeNil)
		So(store.CreateSession(ctx, model.Session{ID: "busy"}), ShouldBeNil)
		ch, _, err := store.Subscribe(ctx, "idle")
		So(err, ShouldBeNil)

		Convey("When only one session keeps publishing", func() {
			advance(45 * time.Second)
			_, _ = store.Publish(ctx, rendered("busy", 1))
			advance(30 * time.Second)

			removed := store.Sweep(ctx)

			Convey("Then the idle one is removed and its subscriber closed", func() {
				So(removed, ShouldEqual, 1)
				So(store.Count(ctx), ShouldEqual, 1)
				_, err := store.Session(ctx, "busy")
				So(err, ShouldBeNil)
				_, open := <-ch
				So(open, ShouldBeFalse)
			})
		})
	})

	Convey("Given a store without TTL", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx)
		defer store.Close()
		So(store.CreateSession(ctx, model.Session{ID: "s"}), ShouldBeNil)

		So(store.Sweep(ctx), ShouldEqual, 0)
		So(store.Count(ctx), ShouldEqual, 1)
	})
}

func TestMemoryStoreClose(t *testing.T) {
	Convey("Given a closed store", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx, WithSessionTTL(time.Second), WithSweepInterval(10*time.Millisecond))
		So(store.CreateSession(ctx, model.Session{ID: "s"}), ShouldBeNil)
		ch, _, _ := store.Subscribe(ctx, "s")

		So(store.Close(), ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		Convey("Then subscribers are closed and new work is refused", func() {
			_, open := <-ch
			So(open, ShouldBeFalse)
			So(errors.Is(store.CreateSession(ctx, model.Session{ID: "t"}), ErrClosed), ShouldBeTrue)
			_, _, err := store.Subscribe(ctx, "s")
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
		})
	})
}
