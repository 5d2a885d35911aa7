package minapi

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// checkConstraints walks a model struct and records violations of the
// schema constraint tags: minLength, maxLength, pattern and enum on strings,
// minimum and maximum on numbers, minItems and maxItems on slices. Tags that
// do not parse are ignored.
func checkConstraints(rv reflect.Value, prefix string, state ModelState) {
	t := rv.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonFieldName(f)
		if name == "-" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		fv := reflect.Indirect(rv.Field(i))
		if !fv.IsValid() {
			continue
		}

		switch {
		case fv.Kind() == reflect.String:
			checkString(f, fv.String(), path, state)
		case isNumericKind(fv.Kind()):
			checkNumber(f, toFloat64(fv), path, state)
		case fv.Kind() == reflect.Slice:
			checkItems(f, fv.Len(), path, state)
		case fv.Kind() == reflect.Struct:
			checkConstraints(fv, path, state)
		}
	}
}

func checkString(f reflect.StructField, val, path string, state ModelState) {
	n := len([]rune(val))
	if limit, ok := intTag(f, "minLength"); ok && n < limit {
		state.AddError(path, fmt.Sprintf("must be at least %d characters", limit))
	}
	if limit, ok := intTag(f, "maxLength"); ok && n > limit {
		state.AddError(path, fmt.Sprintf("must be at most %d characters", limit))
	}
	if tag := f.Tag.Get("pattern"); tag != "" {
		if re, err := regexp.Compile(tag); err == nil && !re.MatchString(val) {
			state.AddError(path, fmt.Sprintf("must match pattern %s", tag))
		}
	}
	if tag := f.Tag.Get("enum"); tag != "" && !slices.Contains(strings.Split(tag, ","), val) {
		state.AddError(path, fmt.Sprintf("must be one of [%s]", tag))
	}
}

func checkNumber(f reflect.StructField, val float64, path string, state ModelState) {
	if tag := f.Tag.Get("minimum"); tag != "" {
		if lower, err := strconv.ParseFloat(tag, 64); err == nil && val < lower {
			state.AddError(path, fmt.Sprintf("must be at least %s", tag))
		}
	}
	if tag := f.Tag.Get("maximum"); tag != "" {
		if upper, err := strconv.ParseFloat(tag, 64); err == nil && val > upper {
			state.AddError(path, fmt.Sprintf("must be at most %s", tag))
		}
	}
}

func checkItems(f reflect.StructField, n int, path string, state ModelState) {
	if limit, ok := intTag(f, "minItems"); ok && n < limit {
		state.AddError(path, fmt.Sprintf("must have at least %d items", limit))
	}
	if limit, ok := intTag(f, "maxItems"); ok && n > limit {
		state.AddError(path, fmt.Sprintf("must have at most %d items", limit))
	}
}

func intTag(f reflect.StructField, key string) (int, bool) {
	tag := f.Tag.Get(key)
	if tag == "" {
		return 0, false
	}
	n, err := strconv.Atoi(tag)
	return n, err == nil
}

func isNumericKind(k reflect.Kind) bool {
	//exhaustive:ignore
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func toFloat64(v reflect.Value) float64 {
	//exhaustive:ignore
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default: // float32, float64
		return v.Float()
	}
}
