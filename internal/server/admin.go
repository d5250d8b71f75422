package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	admindomain "github.com/smallbiznis/solarops/internal/admin/domain"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminIndex lists every registered entity with its row count.
func (s *Server) AdminIndex(c *gin.Context) {
	entities, err := s.adminSvc.Index(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entities})
}

// AdminList renders one page of list_display rows for an entity.
func (s *Server) AdminList(c *gin.Context) {
	page, err := parsePagination(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.adminSvc.List(c.Request.Context(), c.Param("entity"), admindomain.ListRequest{
		Pagination: page,
		Filter:     filter,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdminExport downloads every row matching the filter as an .xlsx workbook.
func (s *Server) AdminExport(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entity := c.Param("entity")
	var buf bytes.Buffer
	rows, err := s.adminSvc.Export(c.Request.Context(), entity, filter, &buf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordExport(c.Request.Context(), entity, rows)
	s.log.Info("admin export served",
		zap.String("entity", entity),
		zap.Int("rows", rows),
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entity+".xlsx"))
	c.Header("X-Row-Count", strconv.Itoa(rows))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
