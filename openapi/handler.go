package openapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/server"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

func RegisterRoutes(cfg *config.Config, srv *server.Server) {
	doc := BuildDocument(cfg)

	srv.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, doc)
	})

	// kin-openapi types only know how to render themselves as JSON, so
	// the YAML view goes through a JSON round trip.
	srv.GET("/openapi.yaml", func(c echo.Context) error {
		raw, err := json.Marshal(doc)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render document")
		}
		var tree map[string]any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render document")
		}
		data, err := yaml.Marshal(tree)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to render document")
		}
		return c.Blob(http.StatusOK, "application/yaml", data)
	})
}

var Module = fx.Options(
	fx.Invoke(RegisterRoutes),
)
