package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/blockpi/backend/internal/admin"
	"github.com/blockpi/backend/internal/cache"
	"github.com/blockpi/backend/internal/config"
	"github.com/blockpi/backend/internal/store"
	"github.com/blockpi/backend/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// AdminLogin validates username + token and issues a bearer session token
func AdminLogin(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			respondError(c, http.StatusServiceUnavailable, "Admin storage is not available")
			return
		}

		var req struct {
			Username string `json:"username" binding:"required"`
			Token    string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}

		username := strings.TrimSpace(req.Username)
		acc, err := admin.ValidateAdminCredentials(db, username, strings.TrimSpace(req.Token))
		if err != nil {
			log.Printf("[ADMIN] Login failed for %s: %v", username, err)
			admin.LogAdminAction(db, username, c.ClientIP(), c.FullPath(), "login", map[string]interface{}{"username": username}, false)
			if errors.Is(err, admin.ErrInvalidCredentials) {
				respondError(c, http.StatusUnauthorized, "Invalid credentials")
			} else {
				respondError(c, http.StatusInternalServerError, "Login failed")
			}
			return
		}

		ttl := time.Duration(cfg.SessionTimeoutMin) * time.Minute
		token, exp, err := admin.IssueToken(cfg.JWTSecret, acc.Username, acc.Roles, ttl)
		if err != nil {
			log.Printf("[ADMIN] %v", err)
			respondError(c, http.StatusInternalServerError, "Failed to create session")
			return
		}

		admin.LogAdminAction(db, acc.Username, c.ClientIP(), c.FullPath(), "login", map[string]interface{}{"username": acc.Username}, true)
		c.JSON(http.StatusOK, gin.H{
			"status":     "success",
			"token":      token,
			"expires_at": exp.UTC().Format(time.RFC3339),
			"admin":      gin.H{"username": acc.Username, "display_name": acc.DisplayName, "roles": acc.Roles},
		})
	}
}

// AdminDeleteResult removes a saved run
func AdminDeleteResult(db *sqlx.DB, st *store.Store, ch *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString("admin_username")
		id := c.Param("id")

		err := st.Delete(c.Request.Context(), id)
		admin.LogAdminAction(db, username, c.ClientIP(), c.FullPath(), "delete_result", map[string]interface{}{"id": id}, err == nil)
		if err != nil {
			storeError(c, err)
			return
		}

		if err := ws.PublishSimulationEvent(c.Request.Context(), ch.Client(), ws.SimulationEvent{
			Type:      "simulation_deleted",
			ResultID:  id,
			CreatedAt: time.Now(),
		}); err != nil {
			log.Printf("[WS] %v", err)
		}
		log.Printf("[ADMIN] %s deleted result %s", username, id)
		c.JSON(http.StatusOK, gin.H{"status": "success", "deleted": id})
	}
}

// AdminPurgeCache drops cached simulations and the experiment table
func AdminPurgeCache(db *sqlx.DB, ch *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetString("admin_username")

		removed, err := ch.Purge(c.Request.Context())
		admin.LogAdminAction(db, username, c.ClientIP(), c.FullPath(), "cache_purge", map[string]interface{}{"removed": removed}, err == nil)
		if err != nil {
			log.Printf("[ADMIN] cache purge by %s failed: %v", username, err)
			respondError(c, http.StatusInternalServerError, "Cache purge failed")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "removed": removed})
	}
}
