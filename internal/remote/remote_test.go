package remote

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Garsondee/spacecoco/internal/sim"
)

func startHandler(t *testing.T) (*Handler, *sim.Sampler, string) {
	t.Helper()
	sampler := sim.NewSampler(sim.DirRight)
	h := NewHandler(sampler, HandlerConfig{Logger: log.New(io.Discard, "", 0)})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, sampler, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDecode_RejectsBadFrames(t *testing.T) {
	if _, err := Decode([]byte{0xc1}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for garbage, got %v", err)
	}
	bad, _ := msgpack.Marshal(&Intent{Dir: "sideways"})
	if _, err := Decode(bad); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for an unknown direction, got %v", err)
	}
	nan, _ := msgpack.Marshal(&Intent{X: math.NaN()})
	if _, err := Decode(nan); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for NaN, got %v", err)
	}
	ok, _ := Encode(Intent{Dir: "up", Accel: 0.5, Shake: true})
	in, err := Decode(ok)
	if err != nil || in.Dir != "up" || in.Accel != 0.5 || !in.Shake {
		t.Fatalf("expected a clean decode, got %+v err=%v", in, err)
	}
}

func TestApply_FeedsSampler(t *testing.T) {
	s := sim.NewSampler(sim.DirRight)
	Apply(s, Intent{Dir: "up", X: 3, Y: 0, Accel: 2, Shake: true, Restart: true})
	if d := s.NextTurn(); d != sim.DirUp {
		t.Fatalf("expected a queued up turn, got %s", d)
	}
	if a := s.AccelerationMagnitude(); a != 1 {
		t.Fatalf("expected acceleration clamped to 1, got %f", a)
	}
	f := s.Sample()
	if !f.Shake || !f.Restart {
		t.Fatalf("expected shake and restart edges, got %+v", f)
	}
}

func TestHandler_AppliesIntents(t *testing.T) {
	h, sampler, url := startHandler(t)
	c, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if err := c.Send(Intent{Dir: "down"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := c.Send(Intent{Pause: true}); err != nil {
		t.Fatalf("send: %v", err)
	}
	waitFor(t, "two intents", func() bool { return h.Applied() == 2 })

	if d := sampler.NextTurn(); d != sim.DirDown {
		t.Fatalf("expected down, got %s", d)
	}
	if !sampler.PauseRequested() {
		t.Fatal("expected the pause edge")
	}
	if h.Connections() != 1 {
		t.Fatalf("expected one connection, got %d", h.Connections())
	}
}

func TestHandler_SurvivesBadFrames(t *testing.T) {
	h, sampler, url := startHandler(t)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"d":"up"}`))
	_ = conn.WriteMessage(websocket.BinaryMessage, []byte{0xc1, 0x00})
	good, _ := Encode(Intent{Dir: "left"})
	_ = conn.WriteMessage(websocket.BinaryMessage, good)

	waitFor(t, "the good intent", func() bool { return h.Applied() == 1 })
	if h.Rejected() != 2 {
		t.Fatalf("expected 2 rejected frames, got %d", h.Rejected())
	}
	// Left is the reverse of the initial heading and is refused by the sampler.
	if d := sampler.NextTurn(); d != sim.DirNone {
		t.Fatalf("expected the reverse turn to be dropped, got %s", d)
	}
}

func TestClient_CloseDisconnects(t *testing.T) {
	h, _, url := startHandler(t)
	c, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitFor(t, "the connection", func() bool { return h.Connections() == 1 })
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	waitFor(t, "the disconnect", func() bool { return h.Connections() == 0 })
}

func TestServe_StopsWithContext(t *testing.T) {
	h := NewHandler(sim.NewSampler(sim.DirRight), HandlerConfig{Logger: log.New(io.Discard, "", 0)})
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- Serve(ctx, "127.0.0.1:0", h) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("expected a clean shutdown, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("expected Serve to return after cancel")
	}
}
