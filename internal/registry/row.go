package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/smallbiznis/solarops/internal/record"
)

// Header returns the list_display column titles.
func (d *Descriptor) Header() []string {
	out := make([]string, len(d.ListDisplay))
	for i, column := range d.ListDisplay {
		if column == LabelColumn {
			out[i] = d.Name
			continue
		}
		out[i] = column
	}
	return out
}

// Row renders m as the list_display cells, using the JSON form of each field.
func (d *Descriptor) Row(m record.Model) ([]string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}

	out := make([]string, len(d.ListDisplay))
	for i, column := range d.ListDisplay {
		if column == LabelColumn {
			if l, ok := m.(record.Labeler); ok {
				out[i] = l.Label()
			}
			continue
		}
		out[i] = cell(fields[column])
	}
	return out, nil
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val)
	}
}
