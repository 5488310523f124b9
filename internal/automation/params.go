package automation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/swsim/internal/config"
)

// Fields maps the numeric run-file fields a scenario or search may set.
var Fields = map[string]func(*config.Config, float64){
	"time_step":     func(c *config.Config, v float64) { c.TimeStep = v },
	"drag":          func(c *config.Config, v float64) { c.Drag = v },
	"depth":         func(c *config.Config, v float64) { c.Depth = v },
	"gravity":       func(c *config.Config, v float64) { c.Gravity = v },
	"mean_latitude": func(c *config.Config, v float64) { c.MeanLatitude = v },
	"dx":            func(c *config.Config, v float64) { c.DX = v },
	"dy":            func(c *config.Config, v float64) { c.DY = v },
}

func FieldNames() []string {
	names := make([]string, 0, len(Fields))
	for name := range Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Set(cfg *config.Config, name string, value float64) error {
	set, ok := Fields[name]
	if !ok {
		return fmt.Errorf("unknown parameter %q (known: %s)", name, strings.Join(FieldNames(), ", "))
	}
	set(cfg, value)
	return nil
}

// ParseAssignment splits "name=value".
func ParseAssignment(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("parameter %q: want name=value", s)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("parameter %q: %w", s, err)
	}
	return strings.TrimSpace(name), v, nil
}

// ParseRange splits "name=v1,v2,..." into a name and its values.
func ParseRange(s string) (string, []float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("range %q: want name=v1,v2,...", s)
	}
	name = strings.TrimSpace(name)
	if _, known := Fields[name]; !known {
		return "", nil, fmt.Errorf("unknown parameter %q (known: %s)", name, strings.Join(FieldNames(), ", "))
	}
	parts := strings.Split(raw, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return "", nil, fmt.Errorf("range %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}
