package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/sweetshop/internal/config"
	"github.com/deppfellow/sweetshop/internal/database/dbtest"
	"github.com/deppfellow/sweetshop/internal/errs"
	"github.com/deppfellow/sweetshop/internal/repository"
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/deppfellow/sweetshop/internal/service"
	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr[T any](v T) *T { return &v }

func newServices(t *testing.T) (*service.Services, *repository.Repositories, *server.Server) {
	log := zerolog.Nop()
	db := dbtest.OpenSQLite(t)
	s := server.NewWithDatabase(config.Default(), &log, nil, db)
	repos := repository.NewRepositories(db)
	return service.NewServices(s, repos), repos, s
}

func httpStatus(err error) int {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

func counterValue(s *server.Server, name string) float64 {
	families, err := s.Metrics.Registry().Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}

func TestSeed(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded store", t, func() {
		services, repos, _ := newServices(t)

		result, err := services.Seed.Seed(ctx)
		So(err, ShouldBeNil)
		So(result.Vendors, ShouldEqual, 5)
		So(result.Sweets, ShouldEqual, 5)
		So(result.VendorSweets, ShouldEqual, 9)

		Convey("Seeding again replaces rather than appends", func() {
			_, err := services.Seed.Seed(ctx)
			So(err, ShouldBeNil)

			vendors, err := repos.Vendors.ListVendors(ctx)
			So(err, ShouldBeNil)
			So(vendors, ShouldHaveLength, 5)

			first, err := repos.Vendors.GetVendor(ctx, vendors[0].ID)
			So(err, ShouldBeNil)
			So(first.Name, ShouldEqual, "Insomnia Cookies")
			So(first.Listings, ShouldHaveLength, 3)
		})
	})
}

func TestVendorSweetService(t *testing.T) {
	ctx := context.Background()

	Convey("Given a vendor and a sweet", t, func() {
		services, repos, s := newServices(t)

		vendor, err := repos.Vendors.CreateVendor(ctx, "Carvel")
		So(err, ShouldBeNil)
		sweet, err := repos.Sweets.CreateSweet(ctx, "Sundae")
		So(err, ShouldBeNil)

		Convey("Create stores a valid listing", func() {
			vs, err := services.VendorSweets.Create(ctx, service.CreateVendorSweetInput{
				Price: json.RawMessage("100"), VendorID: ptr(vendor.ID), SweetID: ptr(sweet.ID),
			})
			So(err, ShouldBeNil)
			So(vs.ID, ShouldBeGreaterThan, 0)
			So(vs.Price, ShouldEqual, 100)
			So(vs.Sweet.Name, ShouldEqual, "Sundae")
			So(vs.Vendor.Name, ShouldEqual, "Carvel")
			So(counterValue(s, "sweetshop_vendor_sweets_created_total"), ShouldEqual, 1)

			Convey("and Delete removes it once", func() {
				So(services.VendorSweets.Delete(ctx, vs.ID), ShouldBeNil)

				err := services.VendorSweets.Delete(ctx, vs.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("A missing reference wins over an invalid price", func() {
			_, err := services.VendorSweets.Create(ctx, service.CreateVendorSweetInput{
				Price: json.RawMessage("-1"), VendorID: ptr(vendor.ID), SweetID: ptr(int64(9999)),
			})
			So(httpStatus(err), ShouldEqual, http.StatusNotFound)

			var httpErr *errs.HTTPError
			So(errors.As(err, &httpErr), ShouldBeTrue)
			So(httpErr.Errors, ShouldResemble, []string{service.ErrVendorOrSweetNotFound})
		})

		Convey("A null reference is not found", func() {
			_, err := services.VendorSweets.Create(ctx, service.CreateVendorSweetInput{
				Price: json.RawMessage("1"), VendorID: nil, SweetID: ptr(sweet.ID),
			})
			So(httpStatus(err), ShouldEqual, http.StatusNotFound)
		})

		Convey("A wrongly typed price still loses to a missing reference", func() {
			_, err := services.VendorSweets.Create(ctx, service.CreateVendorSweetInput{
				Price: json.RawMessage(`"abc"`), VendorID: ptr(vendor.ID), SweetID: ptr(int64(9999)),
			})
			So(httpStatus(err), ShouldEqual, http.StatusNotFound)
		})

		Convey("Invalid prices are rejected and nothing is stored", func() {
			for _, price := range []json.RawMessage{
				json.RawMessage("-1"), nil, json.RawMessage("null"),
				json.RawMessage(`"abc"`), json.RawMessage("1.5"), json.RawMessage("true"),
			} {
				_, err := services.VendorSweets.Create(ctx, service.CreateVendorSweetInput{
					Price: price, VendorID: ptr(vendor.ID), SweetID: ptr(sweet.ID),
				})
				So(httpStatus(err), ShouldEqual, http.StatusBadRequest)
			}

			got, err := repos.Vendors.GetVendor(ctx, vendor.ID)
			So(err, ShouldBeNil)
			So(got.Listings, ShouldBeEmpty)
		})
	})
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty catalog", t, func() {
		services, _, _ := newServices(t)

		Convey("Lists are empty", func() {
			vendors, err := services.Catalog.ListVendors(ctx)
			So(err, ShouldBeNil)
			So(vendors, ShouldBeEmpty)

			sweets, err := services.Catalog.ListSweets(ctx)
			So(err, ShouldBeNil)
			So(sweets, ShouldBeEmpty)
		})

		Convey("Lookups wrap ErrNotFound", func() {
			_, err := services.Catalog.GetVendor(ctx, 1)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

			_, err = services.Catalog.GetSweet(ctx, 1)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
