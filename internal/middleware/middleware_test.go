package middleware_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/sweetshop/internal/config"
	"github.com/deppfellow/sweetshop/internal/errs"
	"github.com/deppfellow/sweetshop/internal/middleware"
	"github.com/deppfellow/sweetshop/internal/repository"
	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	. "github.com/smartystreets/goconvey/convey"
)

func newEcho(logs *bytes.Buffer) *echo.Echo {
	log := zerolog.New(logs)
	s := server.NewWithDatabase(config.Default(), &log, nil, nil)
	mw := middleware.NewMiddlewares(s)

	e := echo.New()
	e.HTTPErrorHandler = mw.Global.GlobalErrorHandler
	e.Use(
		middleware.RequestID(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Metrics.RecordRequests(),
		mw.Global.Recover(),
	)

	e.GET("/bad", func(c echo.Context) error {
		return errs.NewBadRequestError("", true, nil, []string{"price must not be negative"})
	})
	e.GET("/vendor", func(c echo.Context) error {
		return &repository.NotFoundError{Table: "vendors", ID: 3, Err: repository.ErrNotFound}
	})
	e.GET("/listing", func(c echo.Context) error {
		return fmt.Errorf("delete listing: %w", &repository.NotFoundError{Table: "vendor_sweets", ID: 3, Err: repository.ErrNotFound})
	})
	e.GET("/boom", func(c echo.Context) error {
		return fmt.Errorf("dial tcp 10.0.0.7:5432: connection refused")
	})
	e.GET("/panic", func(c echo.Context) error {
		panic("secret state")
	})
	e.GET("/logged", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from the service")
		return c.NoContent(http.StatusNoContent)
	})
	return e
}

func serve(e *echo.Echo, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func body(rec *httptest.ResponseRecorder) map[string]any {
	var m map[string]any
	So(json.Unmarshal(rec.Body.Bytes(), &m), ShouldBeNil)
	return m
}

func TestGlobalErrorHandler(t *testing.T) {
	Convey("Given the error handler", t, func() {
		var logs bytes.Buffer
		e := newEcho(&logs)

		Convey("HTTP errors keep their status and list body", func() {
			rec := serve(e, http.MethodGet, "/bad", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(body(rec), ShouldResemble, map[string]any{"errors": []any{"price must not be negative"}})
		})

		Convey("Missing rows name their entity", func() {
			rec := serve(e, http.MethodGet, "/vendor", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(body(rec), ShouldResemble, map[string]any{"error": "Vendor not found"})

			rec = serve(e, http.MethodGet, "/listing", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(body(rec), ShouldResemble, map[string]any{"error": "VendorSweet not found"})
		})

		Convey("Unknown routes answer Route not found", func() {
			rec := serve(e, http.MethodGet, "/missing", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(rec.Header().Get(echo.HeaderContentType), ShouldStartWith, echo.MIMEApplicationJSON)
			So(body(rec), ShouldResemble, map[string]any{"error": "Route not found"})
		})

		Convey("Wrong methods keep echo's status", func() {
			rec := serve(e, http.MethodPost, "/bad", nil)
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(body(rec), ShouldResemble, map[string]any{"error": "Method Not Allowed"})
		})

		Convey("Unrecognized errors answer a bare 500", func() {
			rec := serve(e, http.MethodGet, "/boom", nil)
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			So(body(rec), ShouldResemble, map[string]any{"error": "Internal Server Error"})
			So(rec.Body.String(), ShouldNotContainSubstring, "10.0.0.7")

			Convey("while the cause is logged", func() {
				So(logs.String(), ShouldContainSubstring, "connection refused")
			})
		})

		Convey("Panics are recovered into a 500", func() {
			rec := serve(e, http.MethodGet, "/panic", nil)
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			So(body(rec), ShouldResemble, map[string]any{"error": "Internal Server Error"})
			So(rec.Body.String(), ShouldNotContainSubstring, "secret state")
		})

		Convey("HEAD requests get the status without a body", func() {
			e.HEAD("/vendor", func(c echo.Context) error {
				return &repository.NotFoundError{Table: "vendors", ID: 3, Err: repository.ErrNotFound}
			})
			rec := serve(e, http.MethodHead, "/vendor", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(rec.Body.Len(), ShouldEqual, 0)
		})
	})
}

func TestRequestContext(t *testing.T) {
	Convey("Given a request", t, func() {
		var logs bytes.Buffer
		e := newEcho(&logs)

		Convey("Without an X-Request-ID a new one is issued", func() {
			rec := serve(e, http.MethodGet, "/logged", nil)
			So(rec.Header().Get(echo.HeaderXRequestID), ShouldHaveLength, 36)
		})

		Convey("With an X-Request-ID it is echoed back", func() {
			rec := serve(e, http.MethodGet, "/logged", http.Header{echo.HeaderXRequestID: {"req-42"}})
			So(rec.Header().Get(echo.HeaderXRequestID), ShouldEqual, "req-42")

			Convey("and the context logger carries it", func() {
				So(logs.String(), ShouldContainSubstring, `"request_id":"req-42"`)
				So(logs.String(), ShouldContainSubstring, `"path":"/logged"`)
				So(logs.String(), ShouldContainSubstring, "from the service")
			})
		})
	})
}
