package streamserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/cinderops/cinder/pkg/events"
	"github.com/cinderops/cinder/pkg/types"
)

func TestServerBroadcastsPublishedEvents(t *testing.T) {
	logger := hclog.NewNullLogger()
	server := New(logger)
	bus := events.New()
	server.Subscribe(bus)

	stop := make(chan struct{})
	defer close(stop)
	server.Start(stop)

	httpServer := httptest.NewServer(http.HandlerFunc(server.HandleWebSocket))
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(20 * time.Millisecond) // let the register loop pick the client up

	bus.Publish(types.Event{Type: types.EventTaskStarted, Play: "webservers", Task: "install nginx"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received types.Event
	require.NoError(t, conn.ReadJSON(&received))
	require.Equal(t, types.EventTaskStarted, received.Type)
	require.Equal(t, "install nginx", received.Task)
}
