package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/napryag/laundry_pickup/pkg/domain/booking/session"
	"github.com/napryag/laundry_pickup/pkg/domain/mappan"
)

func (h *handler) apiServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": h.deps.Catalog.Services})
}

type mapEvent struct {
	Event string  `json:"event" binding:"required"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// mapDrag is one finished drag, replayed in order.
type mapDrag struct {
	Events []mapEvent `json:"events" binding:"required,min=1,max=16,dive"`
}

// apiMap replays a drag into the session's map state and returns the
// resulting offset. Only the map state is written back.
func (h *handler) apiMap(c *gin.Context) {
	var req mapDrag
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	s := sessionFrom(c)
	for _, ev := range req.Events {
		if !s.Map.Apply(ev.Event, mappan.Vec{X: ev.X, Y: ev.Y}) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event"})
			return
		}
	}

	err := h.deps.Sessions.SaveMap(c.Request.Context(), s.ID, s.Map)
	if errors.Is(err, session.ErrNotFound) {
		// nothing stored yet, so there is no wizard to overwrite
		err = h.commit(c, s)
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to save map state")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"offset": s.Map.Offset, "dragging": s.Map.Dragging})
}
