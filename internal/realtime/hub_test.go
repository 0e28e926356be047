package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
	"github.com/desinetwork/classifieds/pkg/helpers"
)

type singleUserRepo struct {
	user entity.User
}

func (r *singleUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if id != r.user.ID {
		return nil, repository.ErrNotFound
	}
	u := r.user
	return &u, nil
}

func (r *singleUserRepo) Create(context.Context, *entity.User) error { return nil }
func (r *singleUserRepo) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *singleUserRepo) ListAll(context.Context) ([]entity.User, error) { return nil, nil }
func (r *singleUserRepo) SetVerificationOTP(context.Context, string, string, time.Time) error {
	return nil
}
func (r *singleUserRepo) ConsumeVerificationOTP(context.Context, string, time.Time) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *singleUserRepo) GetByVerificationOTP(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *singleUserRepo) SetResetOTP(context.Context, string, string, time.Time) error { return nil }
func (r *singleUserRepo) ConsumeResetOTP(context.Context, string, string, time.Time) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *singleUserRepo) UpdateRole(context.Context, string, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *singleUserRepo) CountAll(context.Context) (int, error) { return 1, nil }

func newTestServer(t *testing.T) (*Hub, *helpers.JWTManager, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	hub := NewHub(logger)
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	repo := &singleUserRepo{user: entity.User{ID: "u1", Email: "a@example.com"}}
	h := NewHandler(hub, jwt, repo, logger, nil)

	r := gin.New()
	r.GET("/ws", h.Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, jwt, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub, _, srv := newTestServer(t)

	c1 := dial(t, wsURL(srv))
	c2 := dial(t, wsURL(srv))

	// Let both readPumps register before broadcasting.
	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 2
	})

	hub.ClassifiedsChanged()

	for _, conn := range []*websocket.Conn{c1, c2} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var payload struct {
			Event string `json:"event"`
		}
		if err := json.Unmarshal(msg, &payload); err != nil {
			t.Fatalf("unmarshal %q: %v", msg, err)
		}
		if payload.Event != string(EventClassifiedsChanged) {
			t.Fatalf("got event %q, want %q", payload.Event, EventClassifiedsChanged)
		}
	}
}

func TestAuthenticatedConnectionCap(t *testing.T) {
	hub, jwt, srv := newTestServer(t)

	token, _, err := jwt.Generate("u1")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	url := wsURL(srv) + "?token=" + token

	for i := 0; i < MaxConnectionsPerUser; i++ {
		dial(t, url)
	}
	waitFor(t, func() bool { return hub.ConnectionCount("u1") == MaxConnectionsPerUser })

	// The sixth upgrade succeeds but is closed immediately with a policy
	// violation; its first read reports the close.
	extra := dial(t, url)
	_ = extra.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = extra.ReadMessage()
	if err == nil {
		t.Fatal("over-cap connection should be closed by the server")
	}
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Code != websocket.ClosePolicyViolation {
		t.Fatalf("close code %d, want %d", closeErr.Code, websocket.ClosePolicyViolation)
	}

	if n := hub.ConnectionCount("u1"); n != MaxConnectionsPerUser {
		t.Fatalf("connection count %d, want %d", n, MaxConnectionsPerUser)
	}
}

func TestInvalidTokenRejectedBeforeUpgrade(t *testing.T) {
	_, _, srv := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token=garbage", nil)
	if err == nil {
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
	_ = resp.Body.Close()
}

func TestTokenForUnknownUserRejected(t *testing.T) {
	_, jwt, srv := newTestServer(t)

	token, _, err := jwt.Generate("ghost")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+token, nil)
	if err == nil {
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
	_ = resp.Body.Close()
}

func TestInboundMessagesAreDiscarded(t *testing.T) {
	hub, _, srv := newTestServer(t)

	conn := dial(t, wsURL(srv))
	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	})

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"spoofed"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The spoofed frame must not come back as a broadcast; only a real
	// broadcast shows up.
	hub.AdminChanged()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(msg), string(EventAdminChanged)) {
		t.Fatalf("got %q, want the admin:changed broadcast", msg)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
