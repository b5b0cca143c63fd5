package aiflows

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"terraflow_backend/platform/httpkit"
)

type Handler struct {
	service *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes mounts the generation endpoints for agents.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ai := rg.Group("/ai")
	{
		ai.POST("/listing-description", h.ListingDescription)
		ai.POST("/cma-report", h.CMAReport)
	}
}

// RegisterPublicRoutes mounts the public-site chat assistant. The agency id
// in the path scopes captured leads to the right account.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/agencies/:id/chat", h.Chat)
}

func (h *Handler) ListingDescription(c *gin.Context) {
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	var in ListingDescriptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	out, err := h.service.GenerateListingDescription(c.Request.Context(), in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) CMAReport(c *gin.Context) {
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	var in CMAInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	out, err := h.service.GenerateCMAReport(c.Request.Context(), in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) Chat(c *gin.Context) {
	agencyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid agency id", nil)
		return
	}

	var in ChatInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	reply, err := h.service.Chat(c.Request.Context(), agencyID, in)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, reply)
}
