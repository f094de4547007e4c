package hiscores

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

const sampleBody = `{"name":"Z o i n k z","skills":[{"id":0,"name":"Overall","rank":1,"level":2277,"xp":4600000000},{"id":1,"name":"Attack","rank":"12","level":99,"xp":200000000}],"activities":[{"id":5,"name":"Zulrah","rank":-1,"score":412}]}`

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(ClientConfig{BaseURL: srv.URL + "/", Logger: zap.NewNop()})
}

func TestClientFetch_Success(t *testing.T) {
	var gotPlayer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPlayer = r.URL.Query().Get("player")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	snap, err := newTestClient(srv).Fetch(context.Background(), "Z o i n k z")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotPlayer != "Z o i n k z" {
		t.Errorf("player query = %q", gotPlayer)
	}
	if len(snap.Skills) != 2 || snap.Skills[1].Rank != 12 {
		t.Errorf("skills = %+v", snap.Skills)
	}
	if len(snap.Activities) != 1 || snap.Activities[0].Score != 412 {
		t.Errorf("activities = %+v", snap.Activities)
	}
}

func TestClientFetch_StatusKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"server error", http.StatusBadGateway, ErrTransport},
		{"rate limited", http.StatusTooManyRequests, ErrTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			snap, err := newTestClient(srv).Fetch(context.Background(), "nobody")
			if snap != nil {
				t.Error("expected nil snapshot")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if IsCanceled(err) {
				t.Error("status failure must not look like cancellation")
			}
		})
	}
}

func TestClientFetch_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Fetch(context.Background(), "p")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestClientFetch_Canceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	snap, err := newTestClient(srv).Fetch(ctx, "p")
	if snap != nil {
		t.Error("canceled fetch must not return a snapshot")
	}
	if !errors.Is(err, ErrCanceled) {
		t.Errorf("err = %v, want ErrCanceled", err)
	}
}

func TestClientFetch_DeadlineIsTransport(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv).Fetch(ctx, "p")
	if !errors.Is(err, ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
	if IsCanceled(err) {
		t.Error("deadline should not be reported as cancellation")
	}
}

func TestOutcomeLabel(t *testing.T) {
	tests := map[string]error{
		"success":   nil,
		"canceled":  ErrCanceled,
		"not_found": ErrNotFound,
		"malformed": ErrMalformed,
		"transport": errors.New("boom"),
	}
	for want, err := range tests {
		if got := outcomeLabel(err); got != want {
			t.Errorf("outcomeLabel(%v) = %q, want %q", err, got, want)
		}
	}
}
