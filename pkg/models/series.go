package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field is one key/value pair of a record. Value is a string or a float64.
type Field struct {
	Key   string
	Value any
}

// Record is a single chart point, e.g. {"name": "Mon", "calls": 120}.
// Field order is kept so the edit buffer shows keys the way they were typed.
type Record []Field

// Series is the ordered list of points backing one chart
type Series []Record

// MalformedInputError reports edit buffer text that is not a valid series
type MalformedInputError struct {
	Reason string
}

func (e *MalformedInputError) Error() string {
	return e.Reason
}

// Get returns the value stored under key
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Name returns the record's "name" label, or "" if missing
func (r Record) Name() string {
	v, _ := r.Get("name")
	s, _ := v.(string)
	return s
}

// Number returns the numeric value stored under key
func (r Record) Number(key string) (float64, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func (r *Record) set(key string, value any) {
	for i := range *r {
		if (*r)[i].Key == key {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Key: key, Value: value})
}

// MarshalJSON writes the fields in their stored order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding field %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object whose values are strings or numbers
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be an object")
	}

	rec := Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		switch v := raw.(type) {
		case string:
			rec.set(key, v)
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			rec.set(key, f)
		default:
			return fmt.Errorf("field %q must be a string or a number", key)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = rec
	return nil
}

// MarshalJSON encodes a nil series as an empty array
func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Record(s))
}

// MarshalIndent returns the two-space indented text used by the edit buffer
func (s Series) MarshalIndent() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding series: %w", err)
	}
	return string(data), nil
}

// Clone returns a deep copy of the series
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	for i, rec := range s {
		out[i] = append(Record(nil), rec...)
	}
	return out
}

// ParseSeries parses edit buffer text. The text must be a JSON array of
// objects and every object must carry a string "name" field.
func ParseSeries(text string) (Series, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &MalformedInputError{Reason: "unexpected end of JSON input"}
	}

	var probe any
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, &MalformedInputError{Reason: err.Error()}
	}
	if _, ok := probe.([]any); !ok {
		return nil, &MalformedInputError{Reason: "Parsed JSON must be an array of objects"}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(text), &elems); err != nil {
		return nil, &MalformedInputError{Reason: err.Error()}
	}

	series := make(Series, 0, len(elems))
	for i, raw := range elems {
		var rec Record
		if err := rec.UnmarshalJSON(raw); err != nil {
			return nil, &MalformedInputError{Reason: fmt.Sprintf("element %d: %v", i, err)}
		}
		v, ok := rec.Get("name")
		if !ok {
			return nil, &MalformedInputError{Reason: fmt.Sprintf("element %d is missing a \"name\" field", i)}
		}
		if _, ok := v.(string); !ok {
			return nil, &MalformedInputError{Reason: fmt.Sprintf("element %d: \"name\" must be a string", i)}
		}
		series = append(series, rec)
	}

	return series, nil
}

// Metric returns each record's name and its numeric value under key.
// Records without a numeric value report 0.
func (s Series) Metric(key string) (labels []string, values []float64) {
	labels = make([]string, len(s))
	values = make([]float64, len(s))
	for i, rec := range s {
		labels[i] = rec.Name()
		values[i], _ = rec.Number(key)
	}
	return labels, values
}
