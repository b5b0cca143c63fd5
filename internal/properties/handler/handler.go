// Package handler exposes the properties API: the owner-facing management
// endpoints and the public listing surface.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"terraflow_backend/internal/properties/service"
	"terraflow_backend/internal/properties/transport"
	"terraflow_backend/platform/httpkit"
)

type Handler struct {
	service *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes mounts the owner-facing endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/properties")
	{
		properties.POST("", h.Create)
		properties.GET("", h.List)
		properties.GET("/:id", h.Get)
		properties.PATCH("/:id", h.Update)
		properties.POST("/:id/archive", h.Archive)
		properties.GET("/:id/share-qr", h.ShareQR)
		properties.POST("/:id/media", h.UploadMedia)
		properties.GET("/:id/media", h.ListMedia)
	}
}

// RegisterPublicRoutes mounts the unauthenticated listing surface.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/properties")
	{
		public.GET("/:id", h.GetPublic)
		public.POST("/:id/enquiries", h.Enquire)
	}
}

func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	property, err := h.service.Create(c.Request.Context(), id.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, property)
}

func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	properties, err := h.service.List(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, properties)
}

func (h *Handler) Get(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	propertyID, ok := parseID(c)
	if !ok {
		return
	}

	property, err := h.service.Get(c.Request.Context(), propertyID, id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, property)
}

func (h *Handler) Update(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	propertyID, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	property, err := h.service.Update(c.Request.Context(), propertyID, id.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, property)
}

func (h *Handler) Archive(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	propertyID, ok := parseID(c)
	if !ok {
		return
	}

	property, err := h.service.Archive(c.Request.Context(), propertyID, id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, property)
}

func (h *Handler) ShareQR(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	propertyID, ok := parseID(c)
	if !ok {
		return
	}

	png, err := h.service.ShareQR(c.Request.Context(), propertyID, id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) UploadMedia(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	propertyID, ok := parseID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file is required", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to open upload", err.Error())
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	media, err := h.service.UploadMedia(c.Request.Context(), propertyID, id.UserID(), fileHeader.Filename, contentType, file, fileHeader.Size)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, media)
}

func (h *Handler) ListMedia(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	propertyID, ok := parseID(c)
	if !ok {
		return
	}

	media, err := h.service.ListMedia(c.Request.Context(), propertyID, id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, media)
}

func (h *Handler) GetPublic(c *gin.Context) {
	propertyID, ok := parseID(c)
	if !ok {
		return
	}

	property, err := h.service.GetPublic(c.Request.Context(), propertyID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, property)
}

func (h *Handler) Enquire(c *gin.Context) {
	propertyID, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.EnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.service.Enquire(c.Request.Context(), propertyID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid property id", nil)
		return uuid.Nil, false
	}
	return propertyID, true
}
