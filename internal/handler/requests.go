package handler

import (
	"encoding/json"
	"strconv"

	"github.com/deppfellow/sweetshop/internal/service"
	"github.com/deppfellow/sweetshop/internal/validation"
	"github.com/oapi-codegen/nullable"
)

// ListRequest is the empty payload of the collection routes.
type ListRequest struct{}

func (r *ListRequest) Validate() error {
	return nil
}

// ResourceRequest addresses one row by its path id.
//
// ID binds as a string: a path that is not an integer names no row, and is
// answered like any other missing id.
type ResourceRequest struct {
	ID string `param:"id"`
}

func (r *ResourceRequest) Validate() error {
	return nil
}

// ParseID returns the numeric id and whether the path held one.
func (r *ResourceRequest) ParseID() (int64, bool) {
	id, err := strconv.ParseInt(r.ID, 10, 64)
	return id, err == nil
}

// CreateVendorSweetRequest is the body of POST /vendor_sweets.
//
// Each field tells an absent key (nil map, fails "required") apart from an
// explicit null (present, carries no value). Values stay raw so that a
// wrongly typed field is judged after the existence checks, not by Bind.
type CreateVendorSweetRequest struct {
	Price    nullable.Nullable[json.RawMessage] `json:"price" validate:"required"`
	VendorID nullable.Nullable[json.RawMessage] `json:"vendor_id" validate:"required"`
	SweetID  nullable.Nullable[json.RawMessage] `json:"sweet_id" validate:"required"`
}

func (r *CreateVendorSweetRequest) Validate() error {
	return validation.Struct(r)
}

// Input converts the request for the service; null fields become nil.
func (r *CreateVendorSweetRequest) Input() service.CreateVendorSweetInput {
	price, _ := r.Price.Get()
	return service.CreateVendorSweetInput{
		Price:    price,
		VendorID: referenceID(r.VendorID),
		SweetID:  referenceID(r.SweetID),
	}
}

// referenceID decodes a vendor or sweet id. Null and anything that is not
// an integer name no row and come back nil.
func referenceID(n nullable.Nullable[json.RawMessage]) *int64 {
	raw, err := n.Get()
	if err != nil {
		return nil
	}

	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil
	}
	return &id
}
