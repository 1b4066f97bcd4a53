package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/blockpi/backend/internal/config"
	"github.com/blockpi/backend/internal/middleware"
	"github.com/blockpi/backend/internal/sim"
	"github.com/gin-gonic/gin"
)

// TrajectoryChunkSize is the number of samples per trajectory frame.
const TrajectoryChunkSize = 500

// ParamsBuilder turns the data of a "run" message into validated parameters.
type ParamsBuilder func(data json.RawMessage) (sim.Params, error)

type trajectoryChunk struct {
	Offset  int          `json:"offset"`
	Samples []sim.Sample `json:"samples"`
}

type runSummary struct {
	CollisionCount  int      `json:"collision_count"`
	PiApproximation *float64 `json:"pi_approximation"`
	HitEventCap     bool     `json:"hit_event_cap"`
}

// HandleRunSocket runs simulations on request and streams their output.
func HandleRunSocket(cfg *config.Config, build ParamsBuilder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.WebSocketOriginAllowed(cfg, c.GetHeader("Origin")) {
			c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "WebSocket origin not allowed"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := newClient(conn)
		go client.writePump()
		go client.runPump(build)
	}
}

// runPump owns client.send and closes it when the connection ends.
func (c *Client) runPump(build ParamsBuilder) {
	defer close(c.send)
	c.prepareRead()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			logReadError(c.id, err)
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		switch msg.Type {
		case "run":
			p, err := build(msg.Data)
			if err != nil {
				c.sendError(err.Error())
				continue
			}
			c.streamRun(p)
		default:
			c.sendError("Unknown message type")
		}
	}
}

func (c *Client) streamRun(p sim.Params) {
	res, err := sim.Simulate(p)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	for off := 0; off < len(res.Trajectory); off += TrajectoryChunkSize {
		end := off + TrajectoryChunkSize
		if end > len(res.Trajectory) {
			end = len(res.Trajectory)
		}
		c.sendJSON("trajectory", trajectoryChunk{Offset: off, Samples: res.Trajectory[off:end]})
	}
	c.sendJSON("events", res.Events)

	summary := runSummary{CollisionCount: res.CollisionCount, HitEventCap: res.HitEventCap}
	if pi, ok := sim.PiApproximation(res.CollisionCount, p.M1, p.M2); ok {
		summary.PiApproximation = &pi
	}
	c.sendJSON("complete", summary)
	log.Printf("[WS] Streamed run for client %s (m1=%g m2=%g collisions=%d)", c.id, p.M1, p.M2, res.CollisionCount)
}

// HandleFeedSocket subscribes the connection to hub broadcasts.
func HandleFeedSocket(cfg *config.Config, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.WebSocketOriginAllowed(cfg, c.GetHeader("Origin")) {
			c.JSON(http.StatusForbidden, gin.H{"status": "error", "message": "WebSocket origin not allowed"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := newClient(conn)
		hub.register <- client
		go client.writePump()
		go client.feedPump(hub)
	}
}

// feedPump discards inbound frames and unregisters on disconnect.
func (c *Client) feedPump(hub *Hub) {
	defer func() {
		hub.unregister <- c
	}()
	c.prepareRead()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			logReadError(c.id, err)
			return
		}
	}
}
