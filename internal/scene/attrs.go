package scene

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/mjscene/pkg/math"
)

// Attrs is an ordered attribute map. A key can be written once; later
// writes are ignored. The zero value is ready to use.
type Attrs struct {
	keys   []string
	values map[string]string
}

// Set stores value under key unless key is already present. It reports
// whether the value was stored.
func (a *Attrs) Set(key, value string) bool {
	if _, ok := a.values[key]; ok {
		return false
	}
	if a.values == nil {
		a.values = make(map[string]string)
	}
	a.keys = append(a.keys, key)
	a.values[key] = value
	return true
}

// Get returns the value stored under key.
func (a Attrs) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Has reports whether key has been set.
func (a Attrs) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Len returns the number of keys.
func (a Attrs) Len() int { return len(a.keys) }

// Keys returns the keys in insertion order.
func (a Attrs) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Copy returns an independent copy.
func (a Attrs) Copy() Attrs {
	c := Attrs{keys: a.Keys()}
	if a.values != nil {
		c.values = make(map[string]string, len(a.values))
		for k, v := range a.values {
			c.values[k] = v
		}
	}
	return c
}

// String formats the attributes as key="value" pairs.
func (a Attrs) String() string {
	var sb strings.Builder
	for i, k := range a.keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(a.values[k])
		sb.WriteByte('"')
	}
	return sb.String()
}

// parseFloats parses whitespace separated numbers. want > 0 requires
// exactly that many values; want < 0 accepts between 1 and -want values.
func parseFloats(value string, want int) ([]float32, error) {
	fields := strings.Fields(value)
	switch {
	case want > 0 && len(fields) != want:
		return nil, errors.Errorf("expected %d values, got %d in %q", want, len(fields), value)
	case want < 0 && (len(fields) == 0 || len(fields) > -want):
		return nil, errors.Errorf("expected 1 to %d values, got %d in %q", -want, len(fields), value)
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d of %q", i, value)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseVec3(value string) (math.Vec3, error) {
	vals, err := parseFloats(value, 3)
	if err != nil {
		return math.Vec3{}, err
	}
	return math.V3(vals), nil
}

func parseInts(value string, want int) ([]int, error) {
	fields := strings.Fields(value)
	if len(fields) != want {
		return nil, errors.Errorf("expected %d values, got %d in %q", want, len(fields), value)
	}
	out := make([]int, want)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d of %q", i, value)
		}
		if v <= 0 {
			return nil, errors.Errorf("value %d of %q must be positive", i, value)
		}
		out[i] = v
	}
	return out, nil
}
