// Package plan resolves a loosely-typed test plan document into validated
// generation parameters.
//
// Documents are JSON or YAML mappings. Each option falls back through two
// levels: a kind-specific key (minBuffers), then a shared key (minTrials),
// then a literal default (trials 10-100, sizes 10-100 bytes).
//
//	{"enableBuffers": true, "minBuffers": 2, "maxBuffers": 2, "bufferMultiple": 4}
//
// Resolve performs no range validation beyond normalization: inverted ranges
// collapse to their minimum, multiples below one become one, and negative
// counts become zero.
package plan

import (
	"bytes"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/roach88/streamfeed/internal/dtype"
)

// Literal defaults used when neither the specific nor the shared key is set.
const (
	DefaultMinTrials = 10
	DefaultMaxTrials = 100
	DefaultMinSize   = 10
	DefaultMaxSize   = 100
)

// Range is a closed integer interval.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// normalize clamps negatives to zero and collapses an inverted range.
func (r Range) normalize() Range {
	r.Min = max(r.Min, 0)
	r.Max = max(r.Max, r.Min)
	return r
}

// Config holds resolved generation parameters. It is read-only once built.
type Config struct {
	EnableBuffers  bool `json:"enableBuffers"`
	EnableLabels   bool `json:"enableLabels"`
	EnableMessages bool `json:"enableMessages"`
	EnablePackets  bool `json:"enablePackets"`

	Buffers    Range `json:"buffers"`
	BufferSize Range `json:"bufferSize"` // bytes

	// MinValue and MaxValue override the element type's default range when set.
	MinValue *float64 `json:"minValue,omitempty"`
	MaxValue *float64 `json:"maxValue,omitempty"`

	TotalMultiple  int `json:"totalMultiple"`
	BufferMultiple int `json:"bufferMultiple"`

	Labels    Range `json:"labels"`
	LabelSize Range `json:"labelSize"`

	Messages    Range `json:"messages"`
	MessageSize Range `json:"messageSize"`

	// Seed fixes the random source when set.
	Seed *uint64 `json:"seed,omitempty"`
}

// StreamEnabled reports whether buffer or packet payloads are generated.
func (c *Config) StreamEnabled() bool {
	return c.EnableBuffers || c.EnablePackets
}

// ValueRange resolves the sample range for t: overrides clamped to the
// type's range, inverted bounds collapsed to the minimum.
func (c *Config) ValueRange(t dtype.Type) (lo, hi float64) {
	lo, hi = t.Range()
	if c.MinValue != nil {
		lo = t.Clamp(*c.MinValue)
	}
	if c.MaxValue != nil {
		hi = t.Clamp(*c.MaxValue)
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Parse decodes a plan document and resolves it.
func Parse(data []byte) (*Config, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Resolve(doc)
}

// Decode parses a JSON or YAML mapping without resolving it.
func Decode(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &Error{Code: ErrCodeParseFailed, Message: "empty document"}
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &Error{Code: ErrCodeParseFailed, Message: "malformed document", Err: err}
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, &Error{Code: ErrCodeParseFailed, Message: "document is not a key/value mapping"}
	}

	var doc map[string]any
	if err := node.Decode(&doc); err != nil {
		return nil, &Error{Code: ErrCodeParseFailed, Message: "malformed document", Err: err}
	}
	return doc, nil
}

// Resolve applies the schema and default chain to a decoded document.
func Resolve(doc map[string]any) (*Config, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	if err := checkIntegers(doc); err != nil {
		return nil, err
	}

	o := options(doc)
	minTrials := o.int("minTrials", DefaultMinTrials)
	maxTrials := o.int("maxTrials", DefaultMaxTrials)
	minSize := o.int("minSize", DefaultMinSize)
	maxSize := o.int("maxSize", DefaultMaxSize)

	cfg := &Config{
		EnableBuffers:  o.bool("enableBuffers"),
		EnableLabels:   o.bool("enableLabels"),
		EnableMessages: o.bool("enableMessages"),
		EnablePackets:  o.bool("enablePackets"),

		Buffers:    Range{o.int("minBuffers", minTrials), o.int("maxBuffers", maxTrials)}.normalize(),
		BufferSize: Range{o.int("minBufferSize", minSize), o.int("maxBufferSize", maxSize)}.normalize(),
		MinValue:   o.float("minValue"),
		MaxValue:   o.float("maxValue"),

		TotalMultiple:  max(o.int("totalMultiple", 1), 1),
		BufferMultiple: max(o.int("bufferMultiple", 1), 1),

		Labels:    Range{o.int("minLabels", minTrials), o.int("maxLabels", maxTrials)}.normalize(),
		LabelSize: Range{o.int("minLabelSize", minSize), o.int("maxLabelSize", maxSize)}.normalize(),

		Messages:    Range{o.int("minMessages", minTrials), o.int("maxMessages", maxTrials)}.normalize(),
		MessageSize: Range{o.int("minMessageSize", minSize), o.int("maxMessageSize", maxSize)}.normalize(),
	}

	if v, ok := doc["seed"]; ok {
		n, err := toInt(v)
		if err != nil {
			return nil, &Error{Code: ErrCodeSchemaViolation, Message: "seed", Err: err}
		}
		seed := uint64(n)
		cfg.Seed = &seed
	}

	return cfg, nil
}

// options reads typed values from a schema-checked document.
type options map[string]any

func (o options) bool(key string) bool {
	v, _ := o[key].(bool)
	return v
}

func (o options) int(key string, def int) int {
	v, ok := o[key]
	if !ok {
		return def
	}
	n, err := toInt(v)
	if err != nil {
		return def
	}
	return n
}

func (o options) float(key string) *float64 {
	v, ok := o[key]
	if !ok {
		return nil
	}
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil
	}
	return &f
}

// integerKeys lists the options that must hold whole numbers.
var integerKeys = []string{
	"minTrials", "maxTrials", "minSize", "maxSize",
	"minBuffers", "maxBuffers", "minBufferSize", "maxBufferSize",
	"totalMultiple", "bufferMultiple",
	"minLabels", "maxLabels", "minLabelSize", "maxLabelSize",
	"minMessages", "maxMessages", "minMessageSize", "maxMessageSize",
	"seed",
}

// checkIntegers rejects a fractional value for any integer option.
func checkIntegers(doc map[string]any) error {
	for _, key := range integerKeys {
		v, ok := doc[key]
		if !ok {
			continue
		}
		if _, err := toInt(v); err != nil {
			return &Error{Code: ErrCodeSchemaViolation, Message: key, Err: err}
		}
	}
	return nil
}

// toInt accepts integers and integral floats.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
