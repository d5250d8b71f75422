package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	notificationdomain "github.com/smallbiznis/solarops/internal/notification/domain"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
)

// GroupSummary counts the plants, loggers and utility plant ids of a group.
func (s *Server) GroupSummary(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	counts, err := s.plantSvc.GroupSummary(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": id, "counts": counts})
}

// UtilityStatement aggregates one utility plant's billing rows for ?period=.
func (s *Server) UtilityStatement(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	statement, err := s.utilitySvc.Statement(c.Request.Context(), id, c.Query("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}

// GroupByName resolves a plant group from ?name= and returns it with its counts.
func (s *Server) GroupByName(c *gin.Context) {
	ctx := c.Request.Context()
	group, err := s.plantSvc.GroupByName(ctx, c.Query("name"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	counts, err := s.plantSvc.GroupSummary(ctx, group.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group.ID, "name": group.Name, "counts": counts})
}

// PlantWeather lists the GIS rows of one power plant for ?from=&to=.
func (s *Server) PlantWeather(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	from, to, err := dateRange(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows, err := s.measurementSvc.WeatherRange(c.Request.Context(), id, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"power_plant": id, "from": from, "to": to, "data": rows})
}

// LoggerGeneration sums one logger's readings for ?from=&to=. The logger is
// addressed by id or, with ?name=, by logger name.
func (s *Server) LoggerGeneration(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	var loggerID int64
	if name := c.Query("name"); name != "" {
		logger, err := s.plantSvc.LoggerByName(ctx, name)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		loggerID = logger.ID
	} else if loggerID, err = parseOptionalID(c.Query("logger")); err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.measurementSvc.GenerationTotal(ctx, loggerID, from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// MailImpact counts mail notifications per impact class.
func (s *Server) MailImpact(c *gin.Context) {
	breakdown, err := s.notificationSvc.ImpactBreakdown(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"impact": breakdown})
}

// MailsByImpact lists the newest mails of one impact class (?impact=, ?limit=).
func (s *Server) MailsByImpact(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "Enter a positive whole number."))
			return
		}
		limit = min(n, pagination.MaxPageSize)
	}

	mails, err := s.notificationSvc.ByImpact(c.Request.Context(), notificationdomain.Impact(c.Query("impact")), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": mails})
}

// dateRange reads the required ?from= and ?to= dates.
func dateRange(c *gin.Context) (record.Date, record.Date, error) {
	var bounds [2]record.Date
	for i, field := range []string{"from", "to"} {
		d, err := record.ParseDate(c.Query(field))
		if err != nil {
			return record.Date{}, record.Date{}, newValidationError(field, "invalid_date", "Enter a valid date (YYYY-MM-DD).")
		}
		bounds[i] = d
	}
	return bounds[0], bounds[1], nil
}

func parseOptionalID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, newValidationError("logger", "invalid_logger", "Pass ?logger=<id> or ?name=<logger name>.")
	}
	return id, nil
}
