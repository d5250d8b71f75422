package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/solarops/internal/record"
	"github.com/smallbiznis/solarops/internal/registry"
)

type entityLink struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// ListEntities is the browsable root of the record API.
func (s *Server) ListEntities(c *gin.Context) {
	descriptors := s.registry.All()
	out := make([]entityLink, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, entityLink{Name: d.Name, Slug: d.Slug, URL: corePrefix + "/" + d.Slug + "/"})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) descriptor(c *gin.Context) (*registry.Descriptor, bool) {
	d, err := s.registry.Lookup(c.Param("entity"))
	if err != nil {
		AbortWithError(c, err)
		return nil, false
	}
	return d, true
}

func (s *Server) ListRecords(c *gin.Context) {
	d, ok := s.descriptor(c)
	if !ok {
		return
	}
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

	items, info, err := d.Accessor.List(c.Request.Context(), page, d.QueryOptions(s.db.Dialector.Name(), filter)...)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": info})
}

func (s *Server) GetRecord(c *gin.Context) {
	d, ok := s.descriptor(c)
	if !ok {
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	m, err := d.Accessor.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) CreateRecord(c *gin.Context) {
	d, ok := s.descriptor(c)
	if !ok {
		return
	}

	m := d.Accessor.New()
	if err := c.ShouldBindJSON(m); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	m.SetRecordID(0)
	*m.Meta() = record.Audit{}

	if err := record.Validate(m); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := d.Accessor.Create(c.Request.Context(), m, actorFromContext(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// UpdateRecord serves PUT (full replacement) and PATCH (merge onto the stored row).
// Audit fields in the body are ignored.
func (s *Server) UpdateRecord(c *gin.Context) {
	d, ok := s.descriptor(c)
	if !ok {
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	existing, err := d.Accessor.Get(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	meta := *existing.Meta()

	target := existing
	if c.Request.Method == http.MethodPut {
		target = d.Accessor.New()
	}
	if err := c.ShouldBindJSON(target); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	target.SetRecordID(id)
	*target.Meta() = meta

	if err := record.Validate(target); err != nil {
		AbortWithError(c, err)
		return
	}
	if err := d.Accessor.Update(ctx, target, actorFromContext(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

func (s *Server) DeleteRecord(c *gin.Context) {
	d, ok := s.descriptor(c)
	if !ok {
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := d.Accessor.Delete(c.Request.Context(), id, actorFromContext(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
