package handler

import (
	"github.com/deppfellow/sweetshop/internal/errs"
	"github.com/deppfellow/sweetshop/internal/model"
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/deppfellow/sweetshop/internal/service"
	"github.com/labstack/echo/v4"
)

type VendorSweetHandler struct {
	Handler
	vendorSweets *service.VendorSweetService
}

func NewVendorSweetHandler(s *server.Server, vendorSweets *service.VendorSweetService) *VendorSweetHandler {
	return &VendorSweetHandler{
		Handler:      NewHandler(s),
		vendorSweets: vendorSweets,
	}
}

// CreateVendorSweet lists a sweet at a vendor.
//
// Absent keys were already rejected with 400 by validation; the service then
// answers 404 for a missing vendor or sweet before it looks at the price.
func (h *VendorSweetHandler) CreateVendorSweet(c echo.Context, req *CreateVendorSweetRequest) (model.Map, error) {
	vs, err := h.vendorSweets.Create(c.Request().Context(), req.Input())
	if err != nil {
		return nil, err
	}
	return vs.ToMap(), nil
}

func (h *VendorSweetHandler) DeleteVendorSweet(c echo.Context, req *ResourceRequest) error {
	id, ok := req.ParseID()
	if !ok {
		return errs.NewNotFoundError("VendorSweet not found", true, nil)
	}
	return h.vendorSweets.Delete(c.Request().Context(), id)
}
