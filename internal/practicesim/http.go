package practicesim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/lmduc2309/english-music-app/internal/domain/model"
	"github.com/lmduc2309/english-music-app/internal/domain/types"
)

// Frame submission outcomes.
type submitOutcome int

const (
	outcomeAccepted submitOutcome = iota
	outcomeDuplicate
	outcomeFailed
)

// errNoFrame means the session has not rendered anything yet.
var errNoFrame = errors.New("no frame rendered yet")

type sessionBody struct {
	ReferencePitch []float64 `json:"reference_pitch"`
	SongID         string    `json:"song_id,omitempty"`
	SentenceID     string    `json:"sentence_id,omitempty"`
}

type sessionCreated struct {
	SessionID string  `json:"session_id"`
	BarCount  int     `json:"bar_count"`
	Height    float64 `json:"height"`
}

type frameBody struct {
	FrameID   string    `json:"frame_id"`
	Seq       uint64    `json:"seq"`
	UserPitch []float64 `json:"user_pitch"`
}

// ackResponse is the body of a frame submission response.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// serviceClient talks to the pitch feedback service.
type serviceClient struct {
	baseURL string
	http    *http.Client
}

func newServiceClient(baseURL string, timeout time.Duration) *serviceClient {
	return &serviceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *serviceClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// health checks GET /healthz.
func (c *serviceClient) health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer drain(resp)
	// Any 200 is healthy; the body is the Prometheus exposition.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

func (c *serviceClient) createSession(ctx context.Context, songID string, s model.Sentence) (sessionCreated, error) {
	resp, err := c.do(ctx, http.MethodPost, "/sessions", sessionBody{
		ReferencePitch: s.PitchData,
		SongID:         songID,
		SentenceID:     s.ID,
	})
	if err != nil {
		return sessionCreated{}, err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusCreated {
		return sessionCreated{}, fmt.Errorf("create session: status %d", resp.StatusCode)
	}
	var out sessionCreated
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return sessionCreated{}, fmt.Errorf("create session: %w", err)
	}
	return out, nil
}

func (c *serviceClient) closeSession(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/sessions/"+id, nil)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("close session: status %d", resp.StatusCode)
	}
	return nil
}

func (c *serviceClient) submitFrame(ctx context.Context, f model.Frame) submitOutcome {
	resp, err := c.do(ctx, http.MethodPost, "/sessions/"+f.SessionID+"/frames", frameBody{
		FrameID:   f.FrameID,
		Seq:       f.Seq,
		UserPitch: f.UserPitch,
	})
	if err != nil {
		return outcomeFailed
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusAccepted:
		return outcomeAccepted
	case http.StatusOK:
		var ack ackResponse
		if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil && !ack.Duplicate {
			return outcomeAccepted
		}
		return outcomeDuplicate
	default:
		return outcomeFailed
	}
}

func (c *serviceClient) latestFrame(ctx context.Context, sessionID string) (types.FrameView, error) {
	resp, err := c.do(ctx, http.MethodGet, "/sessions/"+sessionID+"/frame", nil)
	if err != nil {
		return types.FrameView{}, err
	}
	defer drain(resp)
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return types.FrameView{}, errNoFrame
	default:
		return types.FrameView{}, fmt.Errorf("latest frame: status %d", resp.StatusCode)
	}
	var v types.FrameView
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return types.FrameView{}, fmt.Errorf("latest frame: %w", err)
	}
	return v, nil
}

// waitForSeq polls the latest frame until it carries seq.
func (c *serviceClient) waitForSeq(ctx context.Context, sessionID string, seq uint64) (types.FrameView, error) {
	ctx, cancel := context.WithTimeout(ctx, LatestPollTimeout)
	defer cancel()
	ticker := time.NewTicker(LatestPollInterval)
	defer ticker.Stop()

	var last types.FrameView
	for {
		v, err := c.latestFrame(ctx, sessionID)
		switch {
		case err == nil:
			last = v
			if v.Seq == seq {
				return v, nil
			}
			if v.Seq > seq {
				return v, fmt.Errorf("latest frame has seq %d beyond %d", v.Seq, seq)
			}
		case !errors.Is(err, errNoFrame):
			return last, err
		}
		select {
		case <-ctx.Done():
			return last, fmt.Errorf("latest frame stuck at seq %d, want %d: %w", last.Seq, seq, ctx.Err())
		case <-ticker.C:
		}
	}
}

// streamURL turns the service base URL into the websocket stream URL.
func (c *serviceClient) streamURL(sessionID string) string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/sessions/" + sessionID + "/stream"
}

// frameStream is an open websocket subscription to a session.
type frameStream struct {
	conn *websocket.Conn
}

func (c *serviceClient) openStream(ctx context.Context, sessionID string) (*frameStream, error) {
	conn, _, err := websocket.Dial(ctx, c.streamURL(sessionID), nil)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	return &frameStream{conn: conn}, nil
}

// next reads one streamed frame.
func (s *frameStream) next(ctx context.Context) (types.FrameView, error) {
	ctx, cancel := context.WithTimeout(ctx, StreamReadTimeout)
	defer cancel()
	var v types.FrameView
	err := wsjson.Read(ctx, s.conn, &v)
	return v, err
}

func (s *frameStream) close() {
	_ = s.conn.Close(websocket.StatusNormalClosure, "done")
}
