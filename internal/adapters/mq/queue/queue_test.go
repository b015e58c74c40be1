package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lmduc2309/english-music-app/internal/domain/model"
)

func frame(id string, seq uint64) model.Frame {
	return model.Frame{FrameID: id, SessionID: "s1", Seq: seq, UserPitch: []float64{float64(seq)}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, frame("f1", 1)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.FrameID != "f1" || got.Seq != 1 {
		t.Errorf("expected f1/1, got %s/%d", got.FrameID, got.Seq)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Backpressure(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if q.Capacity() != 2 {
		t.Fatalf("expected capacity 2, got %d", q.Capacity())
	}
	if !q.Enqueue(ctx, frame("f1", 1)) || !q.Enqueue(ctx, frame("f2", 2)) {
		t.Fatal("expected first two enqueues to succeed")
	}
	if q.Enqueue(ctx, frame("f3", 3)) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	q2 := NewInMemoryQueue(WithCapacity(2))
	if q2.Enqueue(cancelled, frame("f4", 4)) {
		t.Error("expected enqueue to fail on a cancelled context")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	const producers = 10
	const perProducer = 100

	done := make(chan struct{}, producers)
	for i := 0; i < producers; i++ {
		go func(id int) {
			for j := 0; j < perProducer; j++ {
				f := frame(fmt.Sprintf("f%d_%d", id, j), uint64(j))
				for !q.Enqueue(ctx, f) {
					time.Sleep(time.Millisecond)
				}
			}
			done <- struct{}{}
		}(i)
	}

	consumed := make(chan string, producers*perProducer)
	for i := 0; i < 4; i++ {
		go func() {
			for f := range q.Dequeue(ctx) {
				consumed <- f.FrameID
			}
		}()
	}

	for i := 0; i < producers; i++ {
		<-done
	}

	seen := make(map[string]bool)
	timeout := time.After(5 * time.Second)
	for len(seen) < producers*perProducer {
		select {
		case id := <-consumed:
			if seen[id] {
				t.Fatalf("frame %s delivered twice", id)
			}
			seen[id] = true
		case <-timeout:
			t.Fatalf("consumed %d of %d frames", len(seen), producers*perProducer)
		}
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, frame("f1", 1)) || !q.Enqueue(ctx, frame("f2", 2)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if q.Enqueue(ctx, frame("f3", 3)) {
		t.Error("expected enqueue to fail after closing")
	}

	// Queued frames drain, then the channel closes.
	var drained []string
	ch := q.Dequeue(ctx)
	timeout := time.After(time.Second)
	for {
		select {
		case f, ok := <-ch:
			if !ok {
				if len(drained) != 2 {
					t.Errorf("expected 2 drained frames, got %v", drained)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			drained = append(drained, f.FrameID)
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}
