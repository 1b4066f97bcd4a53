package handlers

import (
	"github.com/blockpi/backend/internal/config"
	"github.com/blockpi/backend/internal/ws"
	"github.com/gin-gonic/gin"
)

// HandleSimulationWebSocket streams simulation runs requested over the socket
func HandleSimulationWebSocket(cfg *config.Config) gin.HandlerFunc {
	return ws.HandleRunSocket(cfg, ParamsBuilder(cfg))
}

// HandleFeedWebSocket pushes saved-simulation events to the client
func HandleFeedWebSocket(cfg *config.Config) gin.HandlerFunc {
	return ws.HandleFeedSocket(cfg, ws.FeedHub)
}
