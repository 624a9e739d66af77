package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"bakery-service/internal/dto"
	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog service.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

func (h *CatalogHandler) List(c *gin.Context) {
	cakes, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]dto.Cake, len(cakes))
	for i := range cakes {
		out[i] = toCake(cakes[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) Quote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}
	cake, err := h.catalog.Quote(c.Request.Context(), req.CakeName, req.Weight)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toCake(*cake))
}

func (h *CatalogHandler) Add(c *gin.Context) {
	var req dto.AddCakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}
	cake, err := h.catalog.Add(c.Request.Context(), service.AddCakeInput{
		Name:       req.Name,
		Weight:     req.Weight,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toCake(*cake))
}

func (h *CatalogHandler) UpdatePrice(c *gin.Context) {
	id, ok := parsePathID(c, h.log)
	if !ok {
		return
	}
	var req dto.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}
	cake, err := h.catalog.UpdatePrice(c.Request.Context(), id, req.PriceCents)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toCake(*cake))
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := parsePathID(c, h.log)
	if !ok {
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "cake deleted"})
}

// BulkImport принимает CSV в поле формы "file"
func (h *CatalogHandler) BulkImport(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, h.log, "file is required", err)
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		badRequest(c, h.log, "please upload a CSV file", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, h.log, "cannot read file", err)
		return
	}
	defer f.Close()

	res, err := h.catalog.BulkImport(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	msg := "no new cakes added"
	if len(res.Added) > 0 {
		msg = "cakes imported"
	}
	added := res.Added
	if added == nil {
		added = []string{}
	}
	c.JSON(http.StatusCreated, dto.BulkImportResponse{Message: msg, Cakes: added, Skipped: res.Skipped})
}
