package handlers

import (
	"context"
	"errors"
	"net/http"

	"bakery-service/internal/models"
	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DirectoryHandler struct {
	directory service.DirectoryService
	log       *zap.Logger
}

func NewDirectoryHandler(directory service.DirectoryService, log *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, log: log}
}

func (h *DirectoryHandler) Stores(c *gin.Context) {
	h.list(c, h.directory.ListStores)
}

func (h *DirectoryHandler) Factories(c *gin.Context) {
	h.list(c, h.directory.ListFactories)
}

func (h *DirectoryHandler) Store(c *gin.Context) {
	h.get(c, models.RoleStore)
}

func (h *DirectoryHandler) Factory(c *gin.Context) {
	h.get(c, models.RoleFactory)
}

// get: главный магазин тоже отдаётся по /stores/:id
func (h *DirectoryHandler) get(c *gin.Context, role models.Role) {
	id, ok := parsePathID(c, h.log)
	if !ok {
		return
	}
	a, err := h.directory.Resolve(c.Request.Context(), id, role)
	if errors.Is(err, service.ErrStoreNotFound) {
		a, err = h.directory.Resolve(c.Request.Context(), id, models.RoleMainStore)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toActors([]models.Actor{*a})[0])
}

func (h *DirectoryHandler) list(c *gin.Context, fetch func(context.Context) ([]models.Actor, error)) {
	actors, err := fetch(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toActors(actors))
}
