package handler

import (
	"github.com/deppfellow/sweetshop/internal/errs"
	"github.com/deppfellow/sweetshop/internal/model"
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/deppfellow/sweetshop/internal/service"
	"github.com/labstack/echo/v4"
)

type SweetHandler struct {
	Handler
	catalog *service.CatalogService
}

func NewSweetHandler(s *server.Server, catalog *service.CatalogService) *SweetHandler {
	return &SweetHandler{
		Handler: NewHandler(s),
		catalog: catalog,
	}
}

func (h *SweetHandler) ListSweets(c echo.Context, _ *ListRequest) ([]model.Map, error) {
	sweets, err := h.catalog.ListSweets(c.Request().Context())
	if err != nil {
		return nil, err
	}

	out := make([]model.Map, 0, len(sweets))
	for _, s := range sweets {
		out = append(out, s.ToMap())
	}
	return out, nil
}

func (h *SweetHandler) GetSweet(c echo.Context, req *ResourceRequest) (model.Map, error) {
	id, ok := req.ParseID()
	if !ok {
		return nil, errs.NewNotFoundError("Sweet not found", true, nil)
	}

	sweet, err := h.catalog.GetSweet(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	return sweet.ToMap(), nil
}
