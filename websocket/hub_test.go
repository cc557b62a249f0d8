package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/middleware"
	"github.com/Mukhsinh/manajemenresiko-sub007/websocket"
)

func readEvent(t *testing.T, conn *gws.Conn) websocket.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev websocket.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestHubDeliversToOwnOrganization(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub(zap.NewNop())
	go hub.Run(ctx)

	orgA, orgB := primitive.NewObjectID(), primitive.NewObjectID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		org := orgA
		if r.URL.Query().Get("org") == "b" {
			org = orgB
		}
		id := middleware.Identity{UserID: primitive.NewObjectID(), OrgID: org, Role: "viewer"}
		hub.ServeWS(w, r.WithContext(middleware.WithIdentity(r.Context(), id)))
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	connA, _, err := gws.DefaultDialer.Dial(wsURL+"?org=a", nil)
	require.NoError(t, err)
	defer connA.Close()
	connB, _, err := gws.DefaultDialer.Dial(wsURL+"?org=b", nil)
	require.NoError(t, err)
	defer connB.Close()

	assert.Equal(t, "WELCOME", readEvent(t, connA).Type)
	assert.Equal(t, "WELCOME", readEvent(t, connB).Type)

	hub.Publish(orgA, websocket.Event{Type: "RISK_CREATED", EntityType: "risk", EntityID: "r1"})
	hub.Publish(orgB, websocket.Event{Type: "SWOT_DELETED", EntityType: "swot", EntityID: "s1"})

	evA := readEvent(t, connA)
	assert.Equal(t, "RISK_CREATED", evA.Type)
	assert.Equal(t, "r1", evA.EntityID)
	assert.False(t, evA.Timestamp.IsZero())

	evB := readEvent(t, connB)
	assert.Equal(t, "SWOT_DELETED", evB.Type)

	assert.Eventually(t, func() bool { return hub.ClientCount(orgA) == 1 }, time.Second, 10*time.Millisecond)
}

func TestServeWSRequiresIdentity(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	rec := httptest.NewRecorder()
	hub.ServeWS(rec, httptest.NewRequest(http.MethodGet, "/ws/audit", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublishWithoutRunningHubDoesNotBlock(t *testing.T) {
	hub := websocket.NewHub(zap.NewNop())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish(primitive.NewObjectID(), websocket.Event{Type: "X"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}
}
