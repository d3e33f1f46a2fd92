package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pocketledger/backend/internal/models"
	pl_uuid "github.com/pocketledger/backend/internal/uuid"
)

type URIID struct {
	ID pl_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type QueryMonth struct {
	Month time.Time `form:"month" time_format:"2006-01" time_utc:"1" example:"2024-06"` // Year and month in YYYY-MM format
}

// currentUser returns the ID of the authenticated user. The user middleware
// guarantees that it is set for every route of the v1 group.
func currentUser(c *gin.Context) uuid.UUID {
	return c.MustGet(string(models.DBContextUser)).(uuid.UUID)
}
