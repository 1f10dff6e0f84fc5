package driver

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Option types.
const (
	String  = "string"
	Integer = "integer"
	Float   = "float"
	Boolean = "boolean"
	Enum    = "enum"
)

// ChunkSizeOption is the option every adapter gets:
// the chunk size, in bytes, of transfers into it.
const ChunkSizeOption = "chunk_size"

// DefaultChunkSize is the default value of ChunkSizeOption.
const DefaultChunkSize = 1 << 20

// Manifest declares an adapter and its options.
type Manifest struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Options     map[string]Option `json:"options,omitempty"`
}

// Option declares one adapter option.
// An option with no Default is required.
type Option struct {
	Type        string        `json:"type"`
	Default     interface{}   `json:"default,omitempty"`
	Values      []interface{} `json:"values,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Options are validated adapter options.
// Values have Go types according to their declared types:
// string, int64, float64, bool, or string for enums.
type Options map[string]interface{}

func (o Options) String(name string) string {
	s, _ := o[name].(string)
	return s
}

func (o Options) Int(name string) int64 {
	n, _ := o[name].(int64)
	return n
}

func (o Options) Float(name string) float64 {
	f, _ := o[name].(float64)
	return f
}

func (o Options) Bool(name string) bool {
	b, _ := o[name].(bool)
	return b
}

// Validate checks supplied options against m.
// Every manifest implicitly declares ChunkSizeOption.
// Unknown options, values of the wrong type, enum values outside the declared set,
// and missing required options are all *ConfigError.
// Missing optional options get their defaults.
func (m Manifest) Validate(supplied map[string]interface{}) (Options, error) {
	decl := make(map[string]Option, len(m.Options)+1)
	decl[ChunkSizeOption] = Option{Type: Integer, Default: int64(DefaultChunkSize)}
	for name, opt := range m.Options {
		decl[name] = opt
	}

	result := make(Options)

	var names []string
	for name := range supplied {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opt, ok := decl[name]
		if !ok {
			return nil, &ConfigError{Option: name, Msg: fmt.Sprintf("unknown option for %s", m.Name)}
		}
		val, err := convert(opt, supplied[name])
		if err != nil {
			return nil, &ConfigError{Option: name, Msg: err.Error()}
		}
		result[name] = val
	}

	for name, opt := range decl {
		if _, ok := result[name]; ok {
			continue
		}
		if opt.Default == nil {
			return nil, &ConfigError{Option: name, Msg: "mandatory option missing"}
		}
		val, err := convert(opt, opt.Default)
		if err != nil {
			return nil, &ConfigError{Option: name, Msg: "bad default: " + err.Error()}
		}
		result[name] = val
	}

	if result.Int(ChunkSizeOption) <= 0 {
		return nil, &ConfigError{Option: ChunkSizeOption, Msg: "must be positive"}
	}

	return result, nil
}

func convert(opt Option, v interface{}) (interface{}, error) {
	switch opt.Type {
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}

	case Integer:
		switch v := v.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			if v == math.Trunc(v) {
				return int64(v), nil
			}
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return n, nil
			}
		}

	case Float:
		switch v := v.(type) {
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case float64:
			return v, nil
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, nil
			}
		}

	case Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}

	case Enum:
		s := fmt.Sprint(v)
		for _, allowed := range opt.Values {
			if fmt.Sprint(allowed) == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%v is not one of %v", v, opt.Values)

	default:
		return nil, fmt.Errorf("unknown option type %s", opt.Type)
	}

	return nil, fmt.Errorf("%v (%T) is not of type %s", v, v, opt.Type)
}
