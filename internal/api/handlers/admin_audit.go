package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/blockpi/backend/internal/admin"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// GetAdminAuditLogs returns paginated audit log entries
func GetAdminAuditLogs(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			respondError(c, http.StatusServiceUnavailable, "Admin storage is not available")
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 {
			limit = 25
		}
		if limit > 200 {
			limit = 200
		}
		if offset < 0 {
			offset = 0
		}

		logs, err := admin.GetAdminAuditLogs(db, limit, offset)
		if err != nil {
			log.Printf("[ADMIN] Failed to fetch audit logs: %v", err)
			respondError(c, http.StatusInternalServerError, "Failed to fetch audit logs")
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "success", "logs": logs, "limit": limit, "offset": offset})
	}
}
