package insight

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"VConnct/logger"
	"VConnct/middleware"
	"VConnct/module/insight/service"
	errs "VConnct/tools/errs"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the insight routes under /api/insights.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/:conversationId", h.Generate)
}

func (h *Handler) Generate(c *gin.Context) {
	self := middleware.CurrentUser(c)

	insight, created, err := h.svc.Generate(c.Request.Context(), self.ID, c.Param("conversationId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyConversation):
			c.JSON(http.StatusBadRequest, gin.H{"message": errs.Msg(err)})
		case errors.Is(err, service.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"message": errs.Msg(err)})
		default:
			logger.Errorf("[insight] generate failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, insight)
}
