package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/solarops/pkg/db/option"
)

// Filter is the shared list_filter plus the free-text search box.
type Filter struct {
	Search      string
	Active      *bool
	OwnerID     *int64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	UpdatedFrom *time.Time
	UpdatedTo   *time.Time
}

const likeEscape = "!"

// QueryOptions translates f for d. Every whitespace separated search term must
// match at least one search field, case-insensitively.
func (d *Descriptor) QueryOptions(dialect string, f Filter) []option.QueryOption {
	var opts []option.QueryOption
	col := func(name string) string { return d.Table + "." + name }

	if f.Active != nil {
		opts = append(opts, option.WithWhere(col("active")+" = ?", *f.Active))
	}
	if f.OwnerID != nil {
		opts = append(opts, option.WithWhere(col("owner_id")+" = ?", *f.OwnerID))
	}
	if f.CreatedFrom != nil {
		opts = append(opts, option.WithWhere(col("created_at")+" >= ?", f.CreatedFrom.UTC()))
	}
	if f.CreatedTo != nil {
		opts = append(opts, option.WithWhere(col("created_at")+" <= ?", f.CreatedTo.UTC()))
	}
	if f.UpdatedFrom != nil {
		opts = append(opts, option.WithWhere(col("updated_at")+" >= ?", f.UpdatedFrom.UTC()))
	}
	if f.UpdatedTo != nil {
		opts = append(opts, option.WithWhere(col("updated_at")+" <= ?", f.UpdatedTo.UTC()))
	}

	if len(d.SearchFields) == 0 {
		return opts
	}
	for _, term := range strings.Fields(f.Search) {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		clauses := make([]string, 0, len(d.SearchFields))
		args := make([]any, 0, len(d.SearchFields))
		for _, field := range d.SearchFields {
			clauses = append(clauses, d.searchClause(dialect, field))
			args = append(args, pattern)
		}
		opts = append(opts, option.WithWhere("("+strings.Join(clauses, " OR ")+")", args...))
	}
	return opts
}

func (d *Descriptor) searchClause(dialect, field string) string {
	relName, column, related := strings.Cut(field, "__")
	if !related {
		return fmt.Sprintf("%s LIKE ? ESCAPE '%s'", lowerText(dialect, d.Table+"."+field), likeEscape)
	}
	rel, _ := d.relation(relName)
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %s rel WHERE rel.id = %s.%s AND %s LIKE ? ESCAPE '%s')",
		rel.Table, d.Table, rel.Column, lowerText(dialect, "rel."+column), likeEscape,
	)
}

// lowerText casts expr so dates and numbers can be searched like text.
func lowerText(dialect, expr string) string {
	textType := "TEXT"
	if dialect == "mysql" {
		textType = "CHAR"
	}
	return fmt.Sprintf("LOWER(CAST(%s AS %s))", expr, textType)
}

func escapeLike(term string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(term)
}
