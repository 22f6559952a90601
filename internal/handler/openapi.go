package handler

import (
	_ "embed"
	"net/http"

	"github.com/deppfellow/sweetshop/internal/server"
	"github.com/labstack/echo/v4"
)

// openAPISpec is the API description served at /openapi.yaml.
//
//go:embed docs/openapi.yaml
var openAPISpec []byte

// docsPage renders openAPISpec with ReDoc loaded from its CDN.
const docsPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>sweetshop API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc spec-url="/openapi.yaml"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
  </body>
</html>`

// OpenAPIHandler serves the API documentation.
type OpenAPIHandler struct {
	Handler
}

// NewOpenAPIHandler constructs an OpenAPIHandler with access to shared dependencies.
func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI serves the ReDoc page.
//
// Cache-Control is set to "no-cache" so clients do not reuse old docs.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.HTML(http.StatusOK, docsPage)
}

// ServeOpenAPISpec serves the embedded OpenAPI document.
func (h *OpenAPIHandler) ServeOpenAPISpec(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, "application/yaml; charset=utf-8", openAPISpec)
}
