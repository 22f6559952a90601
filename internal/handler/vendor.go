package handler

import (
	"github.com/deppfellow/sweetshop/internal/errs"
	"github.com/deppfellow/sweetshop/internal/model"
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/deppfellow/sweetshop/internal/service"
	"github.com/labstack/echo/v4"
)

type VendorHandler struct {
	Handler
	catalog *service.CatalogService
}

func NewVendorHandler(s *server.Server, catalog *service.CatalogService) *VendorHandler {
	return &VendorHandler{
		Handler: NewHandler(s),
		catalog: catalog,
	}
}

// ListVendors renders every vendor without its vendor_sweets.
func (h *VendorHandler) ListVendors(c echo.Context, _ *ListRequest) ([]model.Map, error) {
	vendors, err := h.catalog.ListVendors(c.Request().Context())
	if err != nil {
		return nil, err
	}

	out := make([]model.Map, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, v.ToMap(model.FieldVendorSweets))
	}
	return out, nil
}

// GetVendor renders one vendor with the sweets it lists.
func (h *VendorHandler) GetVendor(c echo.Context, req *ResourceRequest) (model.Map, error) {
	id, ok := req.ParseID()
	if !ok {
		return nil, errs.NewNotFoundError("Vendor not found", true, nil)
	}

	vendor, err := h.catalog.GetVendor(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	return vendor.ToMap(), nil
}
