package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/profilekeeper/internal/logger"
	"github.com/dtroode/profilekeeper/internal/model"
)

// API serves the JSON profile endpoints.
type API struct {
	service ProfileService
	logger  *logger.Logger
}

func NewAPI(service ProfileService, logger *logger.Logger) *API {
	return &API{service: service, logger: logger}
}

// List returns every profile ordered by key.
func (h *API) List(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context())
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *API) Get(c *gin.Context) {
	key := c.Param("key")

	p, err := h.service.Get(c.Request.Context(), key)
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ProfileEntry{Key: key, Profile: p})
}

// Put replaces the profile stored under the path key with the request body.
func (h *API) Put(c *gin.Context) {
	key := c.Param("key")

	var p model.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed profile: " + err.Error()})
		return
	}
	p = p.Normalize()

	if err := h.service.Save(c.Request.Context(), key, p); err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ProfileEntry{Key: key, Profile: p})
}

func (h *API) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("key")); err != nil {
		h.abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *API) abort(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("HTTP API: request failed", "path", c.Request.URL.Path, "error", err.Error())
	}
	c.AbortWithStatusJSON(status, gin.H{"error": messageFor(err)})
}
