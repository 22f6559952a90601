// Package model defines the relational entities of the shop:
// sweets, vendors and the priced listing that links them (vendor_sweets).
//
// Entities are plain structs. Relations are loaded explicitly by the
// repository layer; a nil/empty relation simply means "not loaded".
package model

// Sweet is a confection type.
type Sweet struct {
	ID   int64
	Name string
}

// Vendor sells sweets through its listings.
type Vendor struct {
	ID   int64
	Name string

	// Listings holds the vendor's vendor_sweets rows, each with Sweet loaded.
	Listings []VendorSweet
}

// Sweets returns the sweets reached through the vendor's listings, in listing order.
// A sweet listed twice (at two prices) appears twice.
func (v Vendor) Sweets() []Sweet {
	sweets := make([]Sweet, 0, len(v.Listings))
	for _, l := range v.Listings {
		if l.Sweet != nil {
			sweets = append(sweets, *l.Sweet)
		}
	}
	return sweets
}

// VendorSweet is the priced association of one Vendor and one Sweet.
type VendorSweet struct {
	ID       int64
	Price    int
	SweetID  int64
	VendorID int64

	// Optional summaries of the linked rows.
	Sweet  *Sweet
	Vendor *Vendor
}
