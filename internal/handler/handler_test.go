package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/deppfellow/sweetshop/internal/config"
	"github.com/deppfellow/sweetshop/internal/database/dbtest"
	"github.com/deppfellow/sweetshop/internal/handler"
	"github.com/deppfellow/sweetshop/internal/model"
	"github.com/deppfellow/sweetshop/internal/repository"
	"github.com/deppfellow/sweetshop/internal/router"
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/deppfellow/sweetshop/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

type api struct {
	e     *echo.Echo
	repos *repository.Repositories
	srv   *server.Server
}

func newAPI(t *testing.T) *api {
	log := zerolog.Nop()
	db := dbtest.OpenSQLite(t)
	s := server.NewWithDatabase(config.Default(), &log, nil, db)
	repos := repository.NewRepositories(db)
	services := service.NewServices(s, repos)
	return &api{
		e:     router.NewRouter(s, handler.NewHandlers(s, services)),
		repos: repos,
		srv:   s,
	}
}

func (a *api) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](rec *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(rec.Body.Bytes(), &v), ShouldBeNil)
	return v
}

type fixture struct {
	vendor, other model.Vendor
	cookie, pie   model.Sweet
	listing       model.VendorSweet
}

func seed(a *api) fixture {
	ctx := context.Background()
	var f fixture
	var err error

	f.vendor, err = a.repos.Vendors.CreateVendor(ctx, "Insomnia Cookies")
	So(err, ShouldBeNil)
	f.other, err = a.repos.Vendors.CreateVendor(ctx, "Cookies Cream")
	So(err, ShouldBeNil)
	f.cookie, err = a.repos.Sweets.CreateSweet(ctx, "Chocolate Chip Cookie")
	So(err, ShouldBeNil)
	f.pie, err = a.repos.Sweets.CreateSweet(ctx, "Pie")
	So(err, ShouldBeNil)
	f.listing, err = a.repos.VendorSweets.CreateVendorSweet(ctx, model.VendorSweet{
		Price: 200, SweetID: f.cookie.ID, VendorID: f.vendor.ID,
	})
	So(err, ShouldBeNil)
	return f
}

func path(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func TestVendorRoutes(t *testing.T) {
	Convey("Given vendors with listings", t, func() {
		a := newAPI(t)
		f := seed(a)

		Convey("GET /vendors lists summaries without vendor_sweets", func() {
			rec := a.do(http.MethodGet, "/vendors", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get(echo.HeaderContentType), ShouldStartWith, echo.MIMEApplicationJSON)

			vendors := decode[[]map[string]any](rec)
			So(vendors, ShouldHaveLength, 2)
			So(vendors[0], ShouldResemble, map[string]any{"id": float64(f.vendor.ID), "name": "Insomnia Cookies"})
			So(vendors[1], ShouldNotContainKey, "vendor_sweets")
		})

		Convey("GET /vendors/:id renders the vendor with its sweets", func() {
			rec := a.do(http.MethodGet, path("/vendors/", f.vendor.ID), "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			vendor := decode[map[string]any](rec)
			So(vendor["id"], ShouldEqual, float64(f.vendor.ID))
			So(vendor["name"], ShouldEqual, "Insomnia Cookies")
			So(vendor["vendor_sweets"], ShouldResemble, []any{
				map[string]any{"id": float64(f.cookie.ID), "name": "Chocolate Chip Cookie"},
			})

			Convey("and nothing nested refers back to vendor_sweets", func() {
				for _, item := range vendor["vendor_sweets"].([]any) {
					So(item, ShouldNotContainKey, "vendor_sweets")
					So(item, ShouldNotContainKey, "vendor")
				}
			})
		})

		Convey("A vendor with no listings has an empty vendor_sweets list", func() {
			rec := a.do(http.MethodGet, path("/vendors/", f.other.ID), "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"vendor_sweets":[]`)
		})

		Convey("Unknown vendor ids answer 404", func() {
			for _, p := range []string{"/vendors/9999", "/vendors/abc", "/vendors/-1"} {
				rec := a.do(http.MethodGet, p, "")
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decode[map[string]any](rec), ShouldResemble, map[string]any{"error": "Vendor not found"})
			}
		})
	})
}

func TestSweetRoutes(t *testing.T) {
	Convey("Given sweets", t, func() {
		a := newAPI(t)
		f := seed(a)

		Convey("GET /sweets lists every sweet", func() {
			rec := a.do(http.MethodGet, "/sweets", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode[[]map[string]any](rec), ShouldResemble, []map[string]any{
				{"id": float64(f.cookie.ID), "name": "Chocolate Chip Cookie"},
				{"id": float64(f.pie.ID), "name": "Pie"},
			})
		})

		Convey("GET /sweets/:id renders one sweet", func() {
			rec := a.do(http.MethodGet, path("/sweets/", f.pie.ID), "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode[map[string]any](rec), ShouldResemble, map[string]any{"id": float64(f.pie.ID), "name": "Pie"})
		})

		Convey("Unknown sweet ids answer 404", func() {
			rec := a.do(http.MethodGet, "/sweets/9999", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decode[map[string]any](rec), ShouldResemble, map[string]any{"error": "Sweet not found"})
		})
	})

	Convey("Given no sweets, GET /sweets is an empty array", t, func() {
		a := newAPI(t)
		rec := a.do(http.MethodGet, "/sweets", "")
		So(rec.Code, ShouldEqual, http.StatusOK)
		So(strings.TrimSpace(rec.Body.String()), ShouldEqual, "[]")
	})
}

func TestCreateVendorSweet(t *testing.T) {
	Convey("Given a vendor and sweets", t, func() {
		a := newAPI(t)
		f := seed(a)

		body := func(price, vendorID, sweetID string) string {
			var parts []string
			if price != "" {
				parts = append(parts, `"price": `+price)
			}
			if vendorID != "" {
				parts = append(parts, `"vendor_id": `+vendorID)
			}
			if sweetID != "" {
				parts = append(parts, `"sweet_id": `+sweetID)
			}
			return "{" + strings.Join(parts, ", ") + "}"
		}
		vendorID := strconv.FormatInt(f.vendor.ID, 10)
		sweetID := strconv.FormatInt(f.pie.ID, 10)

		Convey("A valid body creates the listing", func() {
			rec := a.do(http.MethodPost, "/vendor_sweets", body("100", vendorID, sweetID))
			So(rec.Code, ShouldEqual, http.StatusCreated)
			So(rec.Header().Get(echo.HeaderContentType), ShouldStartWith, echo.MIMEApplicationJSON)

			created := decode[map[string]any](rec)
			So(created["id"], ShouldNotBeNil)
			So(created["price"], ShouldEqual, float64(100))
			So(created["vendor_id"], ShouldEqual, float64(f.vendor.ID))
			So(created["sweet_id"], ShouldEqual, float64(f.pie.ID))
			So(created["sweet"], ShouldResemble, map[string]any{"id": float64(f.pie.ID), "name": "Pie"})
			So(created["vendor"], ShouldResemble, map[string]any{"id": float64(f.vendor.ID), "name": "Insomnia Cookies"})

			Convey("and the vendor now lists the sweet", func() {
				vendor := decode[map[string]any](a.do(http.MethodGet, path("/vendors/", f.vendor.ID), ""))
				So(vendor["vendor_sweets"], ShouldHaveLength, 2)
			})
		})

		Convey("A zero price is valid", func() {
			rec := a.do(http.MethodPost, "/vendor_sweets", body("0", vendorID, sweetID))
			So(rec.Code, ShouldEqual, http.StatusCreated)
		})

		Convey("A negative price answers 400", func() {
			rec := a.do(http.MethodPost, "/vendor_sweets", body("-1", vendorID, sweetID))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode[map[string]any](rec), ShouldContainKey, "errors")
		})

		Convey("A null price answers 400", func() {
			rec := a.do(http.MethodPost, "/vendor_sweets", body("null", vendorID, sweetID))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A missing field answers 400 whatever the other fields hold", func() {
			for _, b := range []string{
				body("100", "", sweetID),
				body("-1", "", "9999"),
				body("", vendorID, sweetID),
				body("100", vendorID, ""),
				"{}",
			} {
				rec := a.do(http.MethodPost, "/vendor_sweets", b)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[map[string]any](rec), ShouldContainKey, "errors")
			}
		})

		Convey("A missing vendor_id is reported by name", func() {
			rec := a.do(http.MethodPost, "/vendor_sweets", body("100", "", sweetID))
			So(decode[map[string][]string](rec)["errors"], ShouldResemble, []string{"vendor_id is required"})
		})

		Convey("A missing sweet answers 404 before the price is looked at", func() {
			for _, b := range []string{
				body("100", vendorID, "9999"),
				body("-1", vendorID, "9999"),
				body("100", "9999", sweetID),
				body("100", "null", sweetID),
			} {
				rec := a.do(http.MethodPost, "/vendor_sweets", b)
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decode[map[string][]string](rec), ShouldResemble, map[string][]string{
					"errors": {"Vendor or sweet not found"},
				})
			}
		})

		Convey("A wrongly typed price loses to a missing sweet", func() {
			for _, price := range []string{`"abc"`, "1.5"} {
				rec := a.do(http.MethodPost, "/vendor_sweets", body(price, vendorID, "9999"))
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decode[map[string][]string](rec), ShouldResemble, map[string][]string{
					"errors": {"Vendor or sweet not found"},
				})
			}
		})

		Convey("A wrongly typed price with valid references answers 400", func() {
			for _, price := range []string{`"abc"`, "1.5", `"100"`} {
				rec := a.do(http.MethodPost, "/vendor_sweets", body(price, vendorID, sweetID))
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[map[string][]string](rec), ShouldResemble, map[string][]string{
					"errors": {"price must be an integer"},
				})
			}
		})

		Convey("Ids that are not integers name no row", func() {
			for _, b := range []string{
				body("100", `"abc"`, sweetID),
				body("100", vendorID, "1.5"),
				body("100", vendorID, `{"id": 1}`),
			} {
				rec := a.do(http.MethodPost, "/vendor_sweets", b)
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			}
		})

		Convey("A price beyond 32 bits is stored as sent", func() {
			rec := a.do(http.MethodPost, "/vendor_sweets", body("3000000000", vendorID, sweetID))
			So(rec.Code, ShouldEqual, http.StatusCreated)
			So(decode[map[string]any](rec)["price"], ShouldEqual, float64(3000000000))
		})

		Convey("A body that is not an object answers 400", func() {
			rec := a.do(http.MethodPost, "/vendor_sweets", `[1, 2]`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestDeleteVendorSweet(t *testing.T) {
	Convey("Given a listing", t, func() {
		a := newAPI(t)
		f := seed(a)
		p := path("/vendor_sweets/", f.listing.ID)

		Convey("DELETE answers 204 with an empty body", func() {
			rec := a.do(http.MethodDelete, p, "")
			So(rec.Code, ShouldEqual, http.StatusNoContent)
			So(rec.Body.Len(), ShouldEqual, 0)

			Convey("the listing is gone from its vendor", func() {
				vendor := decode[map[string]any](a.do(http.MethodGet, path("/vendors/", f.vendor.ID), ""))
				So(vendor["vendor_sweets"], ShouldBeEmpty)
			})

			Convey("the vendor and sweet remain", func() {
				So(a.do(http.MethodGet, path("/vendors/", f.vendor.ID), "").Code, ShouldEqual, http.StatusOK)
				So(a.do(http.MethodGet, path("/sweets/", f.cookie.ID), "").Code, ShouldEqual, http.StatusOK)
			})

			Convey("a second DELETE answers 404", func() {
				rec := a.do(http.MethodDelete, p, "")
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decode[map[string]any](rec), ShouldResemble, map[string]any{"error": "VendorSweet not found"})
			})
		})

		Convey("Unknown and malformed ids answer 404", func() {
			for _, p := range []string{"/vendor_sweets/9999", "/vendor_sweets/x"} {
				rec := a.do(http.MethodDelete, p, "")
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decode[map[string]any](rec), ShouldResemble, map[string]any{"error": "VendorSweet not found"})
			}
		})
	})
}

func TestSystemRoutes(t *testing.T) {
	Convey("Given the API", t, func() {
		a := newAPI(t)

		Convey("GET / serves the landing page", func() {
			rec := a.do(http.MethodGet, "/", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldEqual, "<h1>Code challenge</h1>")
		})

		Convey("GET /status reports a healthy database", func() {
			rec := a.do(http.MethodGet, "/status", "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			status := decode[map[string]any](rec)
			So(status["status"], ShouldEqual, "healthy")
			So(status["checks"], ShouldContainKey, "database")
		})

		Convey("GET /status answers 503 once the database is gone", func() {
			So(a.srv.DB.Close(), ShouldBeNil)

			rec := a.do(http.MethodGet, "/status", "")
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decode[map[string]any](rec)["status"], ShouldEqual, "unhealthy")
		})

		Convey("Store failures answer 500 without detail", func() {
			So(a.srv.DB.Close(), ShouldBeNil)

			rec := a.do(http.MethodGet, "/sweets", "")
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			So(decode[map[string]any](rec), ShouldResemble, map[string]any{"error": "Internal Server Error"})
		})

		Convey("GET /metrics exposes request counters", func() {
			a.do(http.MethodGet, "/sweets", "")
			a.do(http.MethodGet, "/nowhere", "")

			rec := a.do(http.MethodGet, "/metrics", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `sweetshop_http_requests_total{method="GET",route="/sweets",status="200"} 1`)
			So(rec.Body.String(), ShouldContainSubstring, `route="unmatched",status="404"`)
		})

		Convey("Unknown routes answer a JSON 404", func() {
			rec := a.do(http.MethodGet, "/nowhere", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decode[map[string]any](rec), ShouldResemble, map[string]any{"error": "Route not found"})
		})

		Convey("The docs are served", func() {
			So(a.do(http.MethodGet, "/docs", "").Body.String(), ShouldContainSubstring, "/openapi.yaml")

			rec := a.do(http.MethodGet, "/openapi.yaml", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "/vendor_sweets/{id}:")
		})

		Convey("Every response carries a request id", func() {
			rec := a.do(http.MethodGet, "/", "")
			So(rec.Header().Get(echo.HeaderXRequestID), ShouldNotBeEmpty)
		})
	})
}
