package model

// Map is the transport shape of an entity: a plain key/value structure ready
// for JSON encoding.
type Map map[string]any

// Field names shared by the serializers.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldPrice        = "price"
	FieldSweetID      = "sweet_id"
	FieldVendorID     = "vendor_id"
	FieldSweet        = "sweet"
	FieldVendor       = "vendor"
	FieldVendorSweets = "vendor_sweets"
)

// ToMap renders a sweet as {id, name}.
//
// Sweets never render their listings, so nothing that embeds a sweet can
// recurse back through it.
func (s Sweet) ToMap() Map {
	return Map{
		FieldID:   s.ID,
		FieldName: s.Name,
	}
}

// ToMap renders a vendor as {id, name, vendor_sweets}.
//
// vendor_sweets lists the sweets of the vendor's listings, each rendered with
// Sweet.ToMap (the vendor is never re-included). Top-level keys named in
// exclude are dropped; list views exclude vendor_sweets.
func (v Vendor) ToMap(exclude ...string) Map {
	m := Map{
		FieldID:   v.ID,
		FieldName: v.Name,
	}
	if !excluded(exclude, FieldVendorSweets) {
		sweets := v.Sweets()
		rendered := make([]Map, 0, len(sweets))
		for _, s := range sweets {
			rendered = append(rendered, s.ToMap())
		}
		m[FieldVendorSweets] = rendered
	}
	return drop(m, exclude)
}

// ToMap renders a listing as {id, price, sweet_id, vendor_id}, plus sweet and
// vendor summaries when those relations are loaded.
//
// The nested vendor is rendered without vendor_sweets, which keeps the
// Sweet -> VendorSweet -> Vendor triangle from expanding back into itself.
func (vs VendorSweet) ToMap(exclude ...string) Map {
	m := Map{
		FieldID:       vs.ID,
		FieldPrice:    vs.Price,
		FieldSweetID:  vs.SweetID,
		FieldVendorID: vs.VendorID,
	}
	if vs.Sweet != nil && !excluded(exclude, FieldSweet) {
		m[FieldSweet] = vs.Sweet.ToMap()
	}
	if vs.Vendor != nil && !excluded(exclude, FieldVendor) {
		m[FieldVendor] = vs.Vendor.ToMap(FieldVendorSweets)
	}
	return drop(m, exclude)
}

func excluded(exclude []string, field string) bool {
	for _, e := range exclude {
		if e == field {
			return true
		}
	}
	return false
}

func drop(m Map, exclude []string) Map {
	for _, field := range exclude {
		delete(m, field)
	}
	return m
}
