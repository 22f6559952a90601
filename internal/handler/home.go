package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const homePage = "<h1>Code challenge</h1>"

// Home serves the landing page.
func Home(c echo.Context) error {
	return c.HTML(http.StatusOK, homePage)
}
