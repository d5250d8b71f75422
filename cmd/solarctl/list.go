package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/smallbiznis/solarops/internal/registry"
	"github.com/smallbiznis/solarops/pkg/db/pagination"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type listFlags struct {
	search string
	limit  int
	active string
}

func newListCmd() *cobra.Command {
	f := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list [entity]",
		Short: "Print entity rows the way the admin list view shows them",
		Long:  "Without an entity, prints the registered entity slugs.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				reg  *registry.Registry
				conn *gorm.DB
			)
			return withApp(serviceModules(), func(ctx context.Context) error {
				if len(args) == 0 {
					return printEntities(cmd.OutOrStdout(), reg)
				}
				return printRows(ctx, cmd.OutOrStdout(), reg, conn.Dialector.Name(), args[0], f)
			}, &reg, &conn)
		},
	}
	cmd.Flags().StringVarP(&f.search, "q", "q", "", "Search terms")
	cmd.Flags().IntVar(&f.limit, "limit", 50, "Maximum rows to print")
	cmd.Flags().StringVar(&f.active, "active", "", "Filter on the active flag (true|false)")
	return cmd
}

func printEntities(out io.Writer, reg *registry.Registry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tNAME")
	for _, d := range reg.All() {
		fmt.Fprintf(tw, "%s\t%s\n", d.Slug, d.Name)
	}
	return tw.Flush()
}

func printRows(ctx context.Context, out io.Writer, reg *registry.Registry, dialect, entity string, f *listFlags) error {
	d, err := reg.Lookup(entity)
	if err != nil {
		return codeError(2, "unknown entity %q", entity)
	}

	filter := registry.Filter{Search: f.search}
	switch strings.ToLower(strings.TrimSpace(f.active)) {
	case "":
	case "true", "1":
		v := true
		filter.Active = &v
	case "false", "0":
		v := false
		filter.Active = &v
	default:
		return codeError(2, "--active must be true or false")
	}

	models, _, err := d.Accessor.List(ctx, pagination.Pagination{PageSize: f.limit}, d.QueryOptions(dialect, filter)...)
	if err != nil {
		return codeError(3, "list %s: %s", d.Slug, err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(d.Header(), "\t")))
	for _, m := range models {
		row, err := d.Row(m)
		if err != nil {
			return codeError(3, "render %s: %s", d.Slug, err)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
