package diagnostics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nix-installer/nix-installer-core/internal/logging"
)

func TestSendWithEmptyEndpointNeverDialsNetwork(t *testing.T) {
	var hit atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit.Store(true)
	}))
	defer srv.Close()

	s := NewSender("", time.Second, logging.NewNop())
	s.Send(context.Background(), Event{Version: "0.1.0", Action: ActionInstall, Status: StatusSuccess})

	assert.False(t, hit.Load(), "an empty endpoint must never produce a network call")
}

func TestSendPostsOnlyAllowListedFields(t *testing.T) {
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		received <- ev
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSender(srv.URL, time.Second, logging.NewNop())
	s.Send(context.Background(), Event{
		Version:            "0.1.0",
		Planner:            "linux",
		ConfiguredSettings: []string{"diagnostic_endpoint"},
		Action:             ActionInstall,
		Status:             StatusSuccess,
	})

	select {
	case ev := <-received:
		assert.Equal(t, "0.1.0", ev.Version)
		assert.Equal(t, "linux", ev.Planner)
		assert.Equal(t, []string{"diagnostic_endpoint"}, ev.ConfiguredSettings)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the diagnostic event")
	}
}

func TestSendSwallowsUnreachableEndpoint(t *testing.T) {
	s := NewSender("http://127.0.0.1:1", 200*time.Millisecond, logging.NewNop())
	assert.NotPanics(t, func() {
		s.Send(context.Background(), Event{Version: "0.1.0"})
	}, "a failed POST must never propagate as an error or panic")
}

func TestSendOnNilSenderIsNoOp(t *testing.T) {
	var s *Sender
	assert.NotPanics(t, func() {
		s.Send(context.Background(), Event{Version: "0.1.0"})
	})
}
