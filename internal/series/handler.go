package series

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	v1 "github.com/tempo-lab/project-tempo/internal/api/v1"
	httperr "github.com/tempo-lab/project-tempo/internal/core/errors"
	"github.com/tempo-lab/project-tempo/internal/core/i18n"
	"github.com/tempo-lab/project-tempo/internal/core/occurrence"
	"github.com/tempo-lab/project-tempo/internal/core/rrule"
	"github.com/tempo-lab/project-tempo/internal/core/storage"
)

// RegisterRoutes registers the rule editor and series routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	rules := r.Group("/v1/rrule")
	rules.GET("/presets", s.HandlePresets)
	rules.POST("/build", s.HandleBuildRule)
	rules.POST("/parse", s.HandleParseRule)
	rules.GET("/preview", s.HandlePreview)

	series := r.Group("/v1/series")
	series.POST("", s.HandleCreateSeries)
	series.GET("/:slug", s.HandleGetSeries)
	series.GET("/:slug/occurrences", s.HandleOccurrences)
	series.GET("/:slug/calendar.ics", s.HandleCalendar)
	series.POST("/:slug/materialize", s.HandleMaterialize)
	series.POST("/:slug/exclusions", s.HandleAddExclusion)
}

// HandlePresets handles GET /v1/rrule/presets
// Query parameters: tz (IANA zone used for today, default UTC), locale
func (s *Service) HandlePresets(c *gin.Context) {
	presets, err := s.Presets(c.Query("tz"), s.locale(c))
	if err != nil {
		writeError(c, err, "Failed to list presets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

// HandleBuildRule handles POST /v1/rrule/build
func (s *Service) HandleBuildRule(c *gin.Context) {
	var fields v1.RuleFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		badRequest(c, "Invalid rule fields", err)
		return
	}

	resp, err := s.BuildRule(fields, s.locale(c))
	if err != nil {
		writeError(c, err, "Failed to build rule")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleParseRule handles POST /v1/rrule/parse
func (s *Service) HandleParseRule(c *gin.Context) {
	var req v1.ParseRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	resp, err := s.ParseRule(req.RRule, s.locale(c))
	if err != nil {
		writeError(c, err, "Failed to parse rule")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandlePreview handles GET /v1/rrule/preview
// Query parameters: rrule, start, from, limit, tz, locale
// start defaults to today in tz, which defaults to UTC.
func (s *Service) HandlePreview(c *gin.Context) {
	var query struct {
		RRule string `form:"rrule" binding:"required"`
		Start string `form:"start"`
		From  string `form:"from"`
		Limit string `form:"limit"`
		TZ    string `form:"tz"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, "Invalid query parameters", err)
		return
	}

	req := PreviewRequest{RRule: query.RRule, Start: query.Start, From: query.From, Timezone: query.TZ}
	if query.Limit != "" {
		limit, err := strconv.Atoi(query.Limit)
		if err != nil {
			badRequest(c, "Invalid query parameters", err)
			return
		}
		req.Limit = limit
	}

	resp, err := s.Preview(req, s.locale(c))
	if err != nil {
		writeError(c, err, "Failed to preview rule")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCreateSeries handles POST /v1/series
func (s *Service) HandleCreateSeries(c *gin.Context) {
	var req v1.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	resp, err := s.CreateSeries(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to create series")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// HandleGetSeries handles GET /v1/series/:slug
func (s *Service) HandleGetSeries(c *gin.Context) {
	resp, err := s.GetSeries(c.Request.Context(), c.Param("slug"), s.locale(c))
	if err != nil {
		writeError(c, err, "Failed to load series")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleOccurrences handles GET /v1/series/:slug/occurrences
// Query parameters: from, to, locale
func (s *Service) HandleOccurrences(c *gin.Context) {
	resp, err := s.Occurrences(c.Request.Context(), c.Param("slug"), c.Query("from"), c.Query("to"), s.locale(c))
	if err != nil {
		writeError(c, err, "Failed to list occurrences")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleCalendar handles GET /v1/series/:slug/calendar.ics
// Query parameters: mode (instances or rule), locale
func (s *Service) HandleCalendar(c *gin.Context) {
	slug := c.Param("slug")
	body, err := s.Calendar(c.Request.Context(), slug, c.Query("mode"), s.locale(c))
	if err != nil {
		writeError(c, err, "Failed to export calendar")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+slug+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// HandleMaterialize handles POST /v1/series/:slug/materialize
func (s *Service) HandleMaterialize(c *gin.Context) {
	resp, err := s.Materialize(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err, "Failed to materialize series")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleAddExclusion handles POST /v1/series/:slug/exclusions
func (s *Service) HandleAddExclusion(c *gin.Context) {
	var req v1.ExclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	resp, err := s.AddExclusion(c.Request.Context(), c.Param("slug"), req.Date, s.locale(c))
	if err != nil {
		writeError(c, err, "Failed to exclude occurrence")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// locale resolves ?locale=, then the first Accept-Language tag, then the
// service default.
func (s *Service) locale(c *gin.Context) i18n.Locale {
	if l, ok := i18n.LookupLocale(c.Query("locale")); ok {
		return l
	}
	for _, tag := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		tag, _, _ = strings.Cut(tag, ";")
		if l, ok := i18n.LookupLocale(tag); ok {
			return l
		}
	}
	return s.defaultLocale
}

func badRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidRequestError,
		Message:   message,
		Details:   err.Error(),
	})
}

// writeError maps domain errors onto status codes and error types.
func writeError(c *gin.Context, err error, message string) {
	var (
		validationErr *rrule.ValidationError
		parseErr      *rrule.ParseError
	)

	status, errorType := http.StatusInternalServerError, httperr.HttpInternalError
	switch {
	case errors.As(err, &parseErr), errors.As(err, &validationErr):
		status, errorType = http.StatusBadRequest, httperr.HttpInvalidRRuleError
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, occurrence.ErrInvalidTimezone):
		status, errorType = http.StatusBadRequest, httperr.HttpInvalidRequestError
	case errors.Is(err, storage.ErrNotFound):
		status, errorType = http.StatusNotFound, httperr.HttpSeriesNotFoundError
	case errors.Is(err, storage.ErrDuplicate):
		status, errorType = http.StatusConflict, httperr.HttpDuplicateSeriesError
	case errors.Is(err, occurrence.ErrSeriesNotActive):
		status, errorType = http.StatusConflict, httperr.HttpSeriesNotActiveError
	}

	c.JSON(status, httperr.ErrorResponse{
		ErrorType: errorType,
		Message:   message,
		Details:   err.Error(),
	})
}
