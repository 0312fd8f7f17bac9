package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Ring/internal/adapters/signal"
	"github.com/dkeye/Ring/internal/domain"
)

// InternalAuthMiddleware guards the service-to-service surface with a
// shared secret. An empty secret disables the surface entirely.
func InternalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" || c.GetHeader("X-Internal-Secret") != secret {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

type emitRequest struct {
	GroupID string         `json:"groupId"`
	UserID  string         `json:"userId"`
	Event   string         `json:"event" binding:"required"`
	Data    map[string]any `json:"data"`
}

// emitHandler lets the CRUD tier fan events out to a group room or a
// single user (newGroupMessage, newNotification, newPost and friends)
// without owning any transport state.
func emitHandler(hub *signal.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req emitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid event"})
			return
		}

		switch {
		case req.GroupID != "":
			sent := hub.EmitToGroup(domain.GroupRoom(req.GroupID), req.Event, req.Data, "")
			c.JSON(http.StatusOK, gin.H{"delivered": sent})
		case req.UserID != "":
			ok := hub.EmitToUser(domain.UserID(req.UserID), req.Event, req.Data)
			c.JSON(http.StatusOK, gin.H{"delivered": ok})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "groupId or userId required"})
		}
	}
}
