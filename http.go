package threadpool

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Starts serving pool statistics over HTTP on the configured port. A server
// instance is returned so that it can be shut down gracefully.
func startServingStats(c *Context) *http.Server {
	c.Log.Infof("Serving pool stats to: http://localhost:%v/stats", c.Port)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%v", c.Port),
		Handler:           newStatsMux(c),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()

		// ListenAndServe always returns a non-nil error (but if started
		// successfully, it'll block for a long time).
		if err != http.ErrServerClosed {
			c.Log.Errorf("Error starting HTTP server: %v", err)
		}
	}()

	return server
}

//
// Private
//

// The frequency at which stats are pushed to clients connected over a
// websocket.
const websocketStatsPeriod = 1 * time.Second

// Part of the Gorilla websocket infrastructure that upgrades HTTP connections
// to websocket connections when we see an incoming websocket request.
var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func newStatsMux(c *Context) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", getStatsHandler(c))
	mux.HandleFunc("/websocket", getWebsocketHandler(c))
	return mux
}

func getStatsHandler(c *Context) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(c.Pool.Stats()); err != nil {
			c.Log.Errorf("Error writing stats: %v", err)
		}
	}
}

func getWebsocketHandler(c *Context) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			c.Log.Errorf("Error upgrading websocket connection: %v", err)
			return
		}

		websocketPump(c, conn)
	}
}

// Pushes a stats snapshot to the client immediately and then periodically
// until the client goes away or a write fails.
func websocketPump(c *Context, conn *websocket.Conn) {
	ticker := time.NewTicker(websocketStatsPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	// Incoming messages have to be read for control frames like close to be
	// processed. Clients aren't expected to send anything else, so any read
	// error means they're gone.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		if err := conn.WriteJSON(c.Pool.Stats()); err != nil {
			c.Log.Debugf("Error writing to websocket: %v", err)
			return
		}

		select {
		case <-clientGone:
			c.Log.Debugf("Websocket client disconnected")
			return
		case <-ticker.C:
		}
	}
}
