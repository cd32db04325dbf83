package controllers

import (
	"net/http"

	"github.com/freelance-platform/marketplace-api/store"
	"github.com/gin-gonic/gin"
)

// HealthController reports service and database status
type HealthController struct {
	store store.Store
}

// NewHealthController creates a HealthController
func NewHealthController(st store.Store) *HealthController {
	return &HealthController{store: st}
}

// HealthCheck handles GET /api/health
func (hc *HealthController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Marketplace API is running",
	})
}

// DatabaseStatus handles GET /api/database/status - checks connectivity and lists tables
func (hc *HealthController) DatabaseStatus(c *gin.Context) {
	ctx := c.Request.Context()

	if err := hc.store.Ping(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Database connection failed",
			"code":    "DATABASE_CONNECTION_ERROR",
		})
		return
	}

	tables, err := hc.store.DB(ctx).Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to query tables",
			"code":    "DATABASE_QUERY_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Database connected",
		"tables":  tables,
	})
}
