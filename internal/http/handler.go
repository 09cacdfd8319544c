package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go.ngs.io/periant/internal/adapter/grid"
	"go.ngs.io/periant/internal/adapter/store"
	"go.ngs.io/periant/internal/config"
	"go.ngs.io/periant/internal/domain"
	"go.ngs.io/periant/internal/usecase"
)

// Services bundles what the handlers need to answer requests.
type Services struct {
	Config       *config.Config
	Locator      store.FileLocator
	Opener       store.DatasetLoader
	Processor    *usecase.Processor
	Coefficients store.CoefficientLookup // Optional.
	Log          logrus.FieldLogger
}

// Handler handles HTTP requests for run inspection.
type Handler struct {
	svc Services
}

// NewHandler creates a new HTTP handler.
func NewHandler(svc Services) *Handler {
	if svc.Log == nil {
		svc.Log = logrus.StandardLogger()
	}
	return &Handler{svc: svc}
}

// runParams are the per-request overrides of the configured run.
type runParams struct {
	step      domain.TimeStep
	yearStart int
	yearEnd   int
}

func (h *Handler) parseRun(c *gin.Context) (runParams, error) {
	cfg := h.svc.Config
	p := runParams{yearStart: cfg.YearStart, yearEnd: cfg.YearEnd}

	step, err := domain.ParseTimeStep(c.DefaultQuery("time_step", cfg.TimeStep))
	if err != nil {
		return p, err
	}
	p.step = step

	if s := c.Query("year_start"); s != "" {
		if p.yearStart, err = strconv.Atoi(s); err != nil {
			return p, fmt.Errorf("invalid year_start: %w", err)
		}
	}
	if s := c.Query("year_end"); s != "" {
		if p.yearEnd, err = strconv.Atoi(s); err != nil {
			return p, fmt.Errorf("invalid year_end: %w", err)
		}
	}
	if p.yearEnd < p.yearStart {
		return p, fmt.Errorf("%w: %d > %d", domain.ErrInvalidYearRange, p.yearStart, p.yearEnd)
	}
	return p, nil
}

func (h *Handler) dataLoader(p runParams) (*usecase.DataLoader, error) {
	conv, err := domain.DefaultConvention(p.step, h.svc.Config.InputRoot)
	if err != nil {
		return nil, err
	}
	return &usecase.DataLoader{
		Convention: conv,
		Suffix:     h.svc.Config.Suffix,
		YearStart:  p.yearStart,
		YearEnd:    p.yearEnd,
		Locator:    h.svc.Locator,
		Opener:     h.svc.Opener,
		Log:        h.svc.Log,
	}, nil
}

// GetCalendar handles GET /v1/calendar.
func (h *Handler) GetCalendar(c *gin.Context) {
	p, err := h.parseRun(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	axis, err := domain.TimeAxis(p.yearStart, p.yearEnd, p.step)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var tokens []string
	for year := p.yearStart; year <= p.yearEnd; year++ {
		yearTokens, err := domain.FileDateTokens(year, p.step)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		tokens = append(tokens, yearTokens...)
	}

	labels := make([]string, len(axis))
	for i, t := range axis {
		labels[i] = t.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"time_step": p.step,
		"frequency": p.step.Frequency(),
		"count":     len(labels),
		"time":      labels,
		"tokens":    tokens,
	})
}

// GetFiles handles GET /v1/files.
func (h *Handler) GetFiles(c *gin.Context) {
	p, err := h.parseRun(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dl, err := h.dataLoader(p)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	present, missing, err := dl.FindFiles()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"input_dir":     dl.Convention.InputDir,
		"found":         len(present),
		"missing_count": len(missing),
		"present":       nonNil(present),
		"missing":       nonNil(missing),
	})
}

// GetCoefficient handles GET /v1/coefficients/:name.
func (h *Handler) GetCoefficient(c *gin.Context) {
	if h.svc.Coefficients == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no coefficient table configured"})
		return
	}

	name := c.Param("name")
	suffix := c.DefaultQuery("suffix", h.svc.Config.CoefficientSuffix)
	coeff, ok, err := h.svc.Coefficients.Lookup(name, suffix)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no coefficients for variable %s", name)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":   coeff.Name,
		"suffix": suffix,
		"scale":  coeff.Scale,
		"min":    coeff.Min,
		"max":    coeff.Max,
		"step":   coeff.Step,
	})
}

// GetDatasetSummary handles GET /v1/datasets/summary. It runs the whole
// pipeline for the requested period and reports the result without data.
func (h *Handler) GetDatasetSummary(c *gin.Context) {
	p, err := h.parseRun(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dl, err := h.dataLoader(p)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	variables := h.svc.Config.Variables
	if s := c.Query("variables"); s != "" {
		variables = strings.Split(s, ",")
	}

	res, err := dl.Load(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ds, err := h.svc.Processor.Process(res, variables)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, usecase.Summarize(ds, len(res.Missing)))
}

// GetNearest handles GET /v1/grid/nearest.
func (h *Handler) GetNearest(c *gin.Context) {
	valuesStr := c.Query("values")
	targetStr := c.Query("target")
	if valuesStr == "" || targetStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "values and target parameters are required"})
		return
	}

	target, err := strconv.ParseFloat(targetStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid target: %v", err)})
		return
	}
	parts := strings.Split(valuesStr, ",")
	values := make([]float64, len(parts))
	for i, s := range parts {
		if values[i], err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid value %q: %v", s, err)})
			return
		}
	}

	var idx []int
	if c.Query("depth") == "true" {
		idx = grid.NearestDepthIndex(values, target)
	} else {
		idx = grid.NearestIndex(values, target)
	}

	c.JSON(http.StatusOK, gin.H{"indices": nonNilInts(idx)})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoFiles):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedTimeStep),
		errors.Is(err, domain.ErrInvalidYearRange),
		errors.Is(err, domain.ErrUnknownVariable),
		errors.Is(err, domain.ErrUnsupportedLayout):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilInts(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
