package insights

import (
	"educare/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for insights.
type Handler struct {
	svc *Service
}

// Get handles GET /api/v1/children/:id/insights
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := httpkit.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.Get(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
