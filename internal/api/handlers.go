package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/san-kum/corrlab/internal/chart"
	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/viz"
)

var errMissingPair = errors.New("asset_a and asset_b are required")

func (s *Server) assets(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Assets())
}

func (s *Server) correlationMatrix(c *gin.Context) {
	r, err := market.ParseRange(c.Query("range"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	m, err := s.svc.Matrix(c.Request.Context(), r)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// pairQuery reads asset_a, asset_b and range.
func pairQuery(c *gin.Context) (a, b string, r market.Range, err error) {
	a, b = c.Query("asset_a"), c.Query("asset_b")
	if a == "" || b == "" {
		return "", "", "", errMissingPair
	}
	r, err = market.ParseRange(c.Query("range"))
	return a, b, r, err
}

func (s *Server) comparison(c *gin.Context) {
	a, b, r, err := pairQuery(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	cmp, err := s.svc.Comparison(c.Request.Context(), a, b, r)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (s *Server) insights(c *gin.Context) {
	r, err := market.ParseRange(c.Query("range"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	ins, err := s.svc.Insights(c.Request.Context(), r)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ins)
}

func (s *Server) health(c *gin.Context) {
	cache := "disabled"
	if s.cache != nil {
		cache = s.cache.Ping(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": cache})
}

func (s *Server) comparisonChart(c *gin.Context) {
	a, b, r, err := pairQuery(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	cmp, err := s.svc.Comparison(c.Request.Context(), a, b, r)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var buf bytes.Buffer
	opts := chart.PNGOptions{Theme: viz.GetTheme(c.Query("theme"))}
	if err := chart.PNG(&buf, cmp, opts); err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// errorStatus maps domain errors to a status code and a client-facing
// message. ok is false for errors the client should not see.
func errorStatus(err error) (status int, msg string, ok bool) {
	var assetErr *market.AssetError
	switch {
	case errors.As(err, &assetErr) && errors.Is(err, market.ErrAssetNotFound):
		return http.StatusNotFound, fmt.Sprintf("asset %s not found", assetErr.AssetID), true
	case errors.Is(err, market.ErrAssetNotFound):
		return http.StatusNotFound, "asset not found", true
	case errors.Is(err, market.ErrNoData):
		return http.StatusNotFound, err.Error(), true
	case errors.Is(err, market.ErrInvalidRange), errors.Is(err, errMissingPair):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, chart.ErrTooFewPoints):
		return http.StatusUnprocessableEntity, "not enough overlapping data to draw a chart", true
	}
	return http.StatusInternalServerError, "internal server error", false
}

// writeError aborts with a JSON error body. Unrecognized errors are logged
// and reported as a generic 500.
func (s *Server) writeError(c *gin.Context, err error) {
	status, msg, ok := errorStatus(err)
	if !ok {
		s.logFailure(c, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) logFailure(c *gin.Context, err error) {
	s.logger.Error("request failed",
		"path", c.Request.URL.Path,
		"request_id", c.GetString(requestIDKey),
		"error", err,
	)
}
