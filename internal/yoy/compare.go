package yoy

import (
	"errors"

	"github.com/rotisserie/eris"

	"github.com/detroit-open-data/ccw-yoy/internal/incident"
)

// ErrMissingBaseline is returned by Compute for an Absolute comparison when
// an area has post-pandemic incidents but no pre-pandemic count.
var ErrMissingBaseline = errors.New("no pre-pandemic count")

// Counts holds incident counts per field value, split by the pandemic flag.
type Counts struct {
	Post map[string]int `json:"post"`
	Pre  map[string]int `json:"pre"`
}

// NewCounts returns empty counters.
func NewCounts() Counts {
	return Counts{Post: map[string]int{}, Pre: map[string]int{}}
}

// Add increments the counter selected by pandemic for key.
func (c Counts) Add(pandemic bool, key string) {
	if pandemic {
		c.Post[key]++
		return
	}
	c.Pre[key]++
}

// ComparePandemic counts records per field value before and after the flag
// date. Records with no value for field, such as incidents outside every SNF
// zone, are not counted.
func ComparePandemic(records []incident.Record, field Field) Counts {
	c := NewCounts()
	for _, r := range records {
		key := field.Value(r)
		if key == "" {
			continue
		}
		c.Add(r.Pandemic, key)
	}
	return c
}

// Values maps a field value to its comparison result.
type Values map[string]float64

// Get returns the value for key, or def when the key is absent.
func (v Values) Get(key string, def float64) float64 {
	if x, ok := v[key]; ok {
		return x
	}
	return def
}

// Compute derives a comparison for every field value with post-pandemic incidents.
func Compute(c Counts, typ AnalysisType) (Values, error) {
	out := make(Values, len(c.Post))
	switch typ {
	case Percent:
		for k, post := range c.Post {
			pre, ok := c.Pre[k]
			if !ok {
				pre = 1
			}
			out[k] = float64(post) / float64(pre)
		}
	case Absolute:
		for k, post := range c.Post {
			pre, ok := c.Pre[k]
			if !ok {
				return nil, eris.Wrapf(ErrMissingBaseline, "yoy: absolute change for %q", k)
			}
			out[k] = float64(post - pre)
		}
	case Total:
		for k, post := range c.Post {
			out[k] = float64(post)
		}
	default:
		return nil, eris.Wrapf(ErrUnknownAnalysisType, "yoy: compute %d", int(typ))
	}
	return out, nil
}
