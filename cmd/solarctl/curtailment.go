package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	plantdomain "github.com/smallbiznis/solarops/internal/plant/domain"
	"github.com/smallbiznis/solarops/internal/record"
	utilitydomain "github.com/smallbiznis/solarops/internal/utility/domain"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"
)

var curtailmentColumns = []string{"plant_id", "date", "start_time", "end_time", "period"}

// curtailmentRow is one parsed CSV line; line counts the header as 1.
type curtailmentRow struct {
	line  int
	code  string
	event *utilitydomain.CurtailmentEvent
}

type rowError struct {
	line int
	err  error
}

func (e rowError) Error() string { return fmt.Sprintf("line %d: %s", e.line, e.err) }

func newImportCurtailmentCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import-curtailment <file.csv>",
		Short: "Import curtailment events for utility plants",
		Long: "Reads a CSV with the header " + strings.Join(curtailmentColumns, ",") + ".\n" +
			"plant_id is the utility plant code. Every row is validated like an API write;\n" +
			"rows that fail are reported and the rest are imported.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return codeError(2, "open %s: %s", args[0], err)
			}
			defer f.Close()

			rows, err := readCurtailmentCSV(f)
			if err != nil {
				return codeError(2, "%s: %s", args[0], err)
			}

			var (
				plants  plantdomain.Service
				utility utilitydomain.Service
			)
			return withApp(serviceModules(), func(ctx context.Context) error {
				return importCurtailments(ctx, cmd.OutOrStdout(), plants, utility, rows, dryRun)
			}, &plants, &utility)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and validate rows without writing")
	return cmd
}

func importCurtailments(ctx context.Context, out io.Writer, plants plantdomain.Service, utility utilitydomain.Service, rows []curtailmentRow, dryRun bool) error {
	var (
		failures []rowError
		events   []*utilitydomain.CurtailmentEvent
		lines    []int
		ids      = map[string]int64{}
	)
	for _, row := range rows {
		id, ok := ids[row.code]
		if !ok {
			plant, err := plants.UtilityPlantByCode(ctx, row.code)
			if err != nil {
				if errors.Is(err, record.ErrNotFound) {
					err = fmt.Errorf("unknown utility plant %q", row.code)
				}
				failures = append(failures, rowError{line: row.line, err: err})
				continue
			}
			id = plant.ID
			ids[row.code] = id
		}
		row.event.PlantID = id
		if dryRun {
			if err := record.Check(row.event); err != nil {
				failures = append(failures, rowError{line: row.line, err: err})
			}
			continue
		}
		events = append(events, row.event)
		lines = append(lines, row.line)
	}

	created := 0
	if !dryRun && len(events) > 0 {
		res := utility.ImportCurtailments(ctx, events, record.Anonymous)
		created = res.Created
		for _, f := range res.Failed {
			failures = append(failures, rowError{line: lines[f.Index], err: f.Err})
		}
	}

	for _, f := range failures {
		fmt.Fprintln(out, f.Error())
	}
	if dryRun {
		fmt.Fprintf(out, "%d row(s) valid, %d failed\n", len(rows)-len(failures), len(failures))
	} else {
		fmt.Fprintf(out, "%d imported, %d failed\n", created, len(failures))
	}
	if len(failures) > 0 {
		return codeError(1, "%d row(s) were not imported", len(failures))
	}
	return nil
}

// readCurtailmentCSV parses the whole file up front so a malformed row stops
// the import before anything is written.
func readCurtailmentCSV(r io.Reader) ([]curtailmentRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(curtailmentColumns)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, err
	}
	for i, name := range curtailmentColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return nil, fmt.Errorf("column %d must be %q, got %q", i+1, name, header[i])
		}
	}

	var rows []curtailmentRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row, err := parseCurtailmentRecord(line, rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func parseCurtailmentRecord(line int, rec []string) (curtailmentRow, error) {
	code := strings.TrimSpace(rec[0])
	if code == "" {
		return curtailmentRow{}, rowError{line: line, err: errors.New("plant_id is required")}
	}
	event := &utilitydomain.CurtailmentEvent{}

	if v := strings.TrimSpace(rec[1]); v != "" {
		d, err := record.ParseDate(v)
		if err != nil {
			return curtailmentRow{}, rowError{line: line, err: fmt.Errorf("date: %w", err)}
		}
		event.Date = &d
	}
	start, err := parseClock(rec[2])
	if err != nil {
		return curtailmentRow{}, rowError{line: line, err: fmt.Errorf("start_time: %w", err)}
	}
	end, err := parseClock(rec[3])
	if err != nil {
		return curtailmentRow{}, rowError{line: line, err: fmt.Errorf("end_time: %w", err)}
	}
	event.StartTime, event.EndTime = start, end

	if v := strings.TrimSpace(rec[4]); v != "" {
		event.Period = &v
	}
	return curtailmentRow{line: line, code: code, event: event}, nil
}

// parseClock accepts HH:MM or HH:MM:SS; blank means unset.
func parseClock(v string) (*datatypes.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			dt := datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0)
			return &dt, nil
		}
	}
	return nil, fmt.Errorf("invalid time %q", v)
}
