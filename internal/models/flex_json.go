package models

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// fieldMaps caches JSON tag -> struct field index mappings per record type
var fieldMaps sync.Map

func getFieldMap(t reflect.Type) map[string]int {
	if cached, ok := fieldMaps.Load(t); ok {
		return cached.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		m[name] = i
	}
	fieldMaps.Store(t, m)
	return m
}

// UnmarshalJSON accepts string-encoded numbers, fractional counts and
// missing fields. A missing or null rank decodes as Unranked.
func (r *SkillRecord) UnmarshalJSON(data []byte) error {
	type Alias SkillRecord
	a := (*Alias)(r)
	a.Rank = Unranked
	return flexUnmarshal(data, a)
}

// UnmarshalJSON accepts string-encoded numbers, fractional counts and
// missing fields. A missing or null rank decodes as Unranked.
func (r *ActivityRecord) UnmarshalJSON(data []byte) error {
	type Alias ActivityRecord
	a := (*Alias)(r)
	a.Rank = Unranked
	return flexUnmarshal(data, a)
}

// flexUnmarshal decodes data into the struct pointed to by target. The
// upstream proxy is not strict about types (ranks and scores sometimes arrive
// quoted), so each field that fails native decoding is coerced instead of
// failing the whole snapshot.
func flexUnmarshal(data []byte, target any) error {
	// Fast path: standard unmarshal works when all types match natively
	if err := json.Unmarshal(data, target); err == nil {
		return nil
	}

	// Slow path: field-by-field with coercion
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	v := reflect.ValueOf(target).Elem()
	fieldMap := getFieldMap(v.Type())

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() || string(rawVal) == "null" {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		s := string(rawVal)
		if len(rawVal) > 1 && rawVal[0] == '"' {
			if err := json.Unmarshal(rawVal, &s); err != nil {
				continue
			}
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
		if s == "" {
			continue
		}
		coerceStringToField(fv, s)
	}

	return nil
}

// coerceStringToField converts a string value to the field's native type.
// Values that do not parse leave the field at its current value.
func coerceStringToField(fv reflect.Value, s string) {
	switch fv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// ParseFloat handles "28.5" and "1e3"; truncate to int.
		// Values outside int64 or the field's width are dropped.
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return
		}
		if i := int64(n); !fv.OverflowInt(i) {
			fv.SetInt(i)
		}
	case reflect.Float32, reflect.Float64:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetFloat(n)
		}
	case reflect.String:
		fv.SetString(s)
	}
}
