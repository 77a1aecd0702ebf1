package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func dialTestHub(t *testing.T, url string, ident Identity) *WSSocket {
	t.Helper()
	s, err := Dial(context.Background(), url, ident)
	if err != nil {
		t.Fatalf("dial %s: %v", ident.UserID, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestHubRoutesGMAndOthers(t *testing.T) {
	srv := httptest.NewServer(NewHub())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	gm := dialTestHub(t, url, Identity{UserID: "gm", IsGM: true})
	player := dialTestHub(t, url, Identity{UserID: "p1"})

	gmGot := make(chan json.RawMessage, 1)
	gm.Register(ActionUpdateItem, func(_ context.Context, raw json.RawMessage) error {
		gmGot <- raw
		return nil
	})
	playerGot := make(chan ScenePayload, 1)
	gmEcho := make(chan struct{}, 1)
	player.Register(ActionRefreshBoard, func(_ context.Context, raw json.RawMessage) error {
		var p ScenePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		playerGot <- p
		return nil
	})
	gm.Register(ActionRefreshBoard, func(context.Context, json.RawMessage) error {
		gmEcho <- struct{}{}
		return nil
	})

	// Let both joins land at the hub before routing anything.
	time.Sleep(100 * time.Millisecond)

	if err := player.ExecuteAsGM(context.Background(), ActionUpdateItem, ScenePayload{Scene: "s1"}); err != nil {
		t.Fatalf("ExecuteAsGM: %v", err)
	}
	select {
	case raw := <-gmGot:
		var p ScenePayload
		if err := json.Unmarshal(raw, &p); err != nil || p.Scene != "s1" {
			t.Fatalf("GM payload = %s", raw)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("GM never received the mutation")
	}

	if err := gm.ExecuteForOthers(context.Background(), ActionRefreshBoard, ScenePayload{Scene: "s1"}); err != nil {
		t.Fatalf("ExecuteForOthers: %v", err)
	}
	select {
	case p := <-playerGot:
		if p.Scene != "s1" {
			t.Fatalf("player got scene %q", p.Scene)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("player never received the broadcast")
	}
	select {
	case <-gmEcho:
		t.Fatalf("sender received its own broadcast")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestHubAuthenticateClampsJoin(t *testing.T) {
	hub := NewHub()
	hub.Authenticate = func(r *http.Request) (Identity, error) {
		switch r.Header.Get("Authorization") {
		case "Bearer gm-token":
			return Identity{UserID: "gm", IsGM: true}, nil
		case "Bearer player-token":
			return Identity{UserID: "alice"}, nil
		}
		return Identity{}, fmt.Errorf("unknown token")
	}
	srv := httptest.NewServer(hub)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	if _, err := Dial(context.Background(), url, Identity{UserID: "nobody"}); err == nil {
		t.Fatalf("dial without token succeeded")
	}

	gm, err := DialWith(context.Background(), url, Identity{UserID: "gm", IsGM: true}, DialOptions{Token: "gm-token"})
	if err != nil {
		t.Fatalf("dial gm: %v", err)
	}
	defer gm.Close()
	// Joins claiming more than the token grants get clamped, so this
	// peer must not become the authoritative target.
	player, err := DialWith(context.Background(), url, Identity{UserID: "mallory", IsGM: true}, DialOptions{Token: "player-token"})
	if err != nil {
		t.Fatalf("dial player: %v", err)
	}
	defer player.Close()

	gmGot := make(chan struct{}, 1)
	gm.Register(ActionClearBoard, func(context.Context, json.RawMessage) error {
		gmGot <- struct{}{}
		return nil
	})
	playerGot := make(chan struct{}, 1)
	player.Register(ActionClearBoard, func(context.Context, json.RawMessage) error {
		playerGot <- struct{}{}
		return nil
	})

	time.Sleep(100 * time.Millisecond)

	if err := player.ExecuteAsGM(context.Background(), ActionClearBoard, ScenePayload{Scene: "s1"}); err != nil {
		t.Fatalf("ExecuteAsGM: %v", err)
	}
	select {
	case <-gmGot:
	case <-playerGot:
		t.Fatalf("stripped peer still routed as GM")
	case <-time.After(2 * time.Second):
		t.Fatalf("GM never received the mutation")
	}
}

func TestClosedSocketReportsUnavailable(t *testing.T) {
	srv := httptest.NewServer(NewHub())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	s := dialTestHub(t, url, Identity{UserID: "p1"})
	s.Close()

	err := s.ExecuteAsGM(context.Background(), ActionClearBoard, ScenePayload{Scene: "s1"})
	if !errors.Is(err, ErrTransportUnavailable) {
		t.Fatalf("err = %v, want ErrTransportUnavailable", err)
	}
}
