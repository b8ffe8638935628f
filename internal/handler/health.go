package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// Check reports liveness plus dependency status. Degraded dependencies
// flip the overall status but still return 200 so load balancers keep
// the instance, only alerting flags it.
func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	deps := gin.H{}

	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			deps["database"] = "down"
			status = "degraded"
		} else {
			deps["database"] = "ok"
		}
	}
	if h.rdb != nil {
		if err := h.rdb.Ping(c.Request.Context()).Err(); err != nil {
			deps["redis"] = "down"
			status = "degraded"
		} else {
			deps["redis"] = "ok"
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": status, "dependencies": deps})
}
