package minapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

// formField is one form key split into its dot-separated path.
type formField struct {
	path   []string // original spelling
	folded []string // lowercased, used for grouping
	values []string
}

// WriteFormJSON streams form values to w as a JSON object. Dot-separated keys
// become nested objects ("Parent.Child" → {"Parent":{"Child":...}}); path
// segments group case-insensitively and keep the first spelling seen.
// Values that are JSON numbers or booleans are written unquoted, everything
// else as strings, and repeated keys become arrays. A key that is both a
// value and a parent of other keys fails with ErrFormFieldConflict.
func WriteFormJSON(w io.Writer, form map[string][]string) error {
	fields := make([]formField, 0, len(form))
	for key, values := range form {
		if key == "" || len(values) == 0 {
			continue
		}
		path := strings.Split(key, ".")
		folded := make([]string, len(path))
		for i, seg := range path {
			folded[i] = strings.ToLower(seg)
		}
		fields = append(fields, formField{path: path, folded: folded, values: values})
	}

	// Sorting by folded path makes every group contiguous, so the document
	// can be written in one forward pass with a stack of open objects.
	slices.SortFunc(fields, func(a, b formField) int {
		if c := slices.Compare(a.folded, b.folded); c != 0 {
			return c
		}
		return slices.Compare(a.path, b.path)
	})

	fields = mergeFolded(fields)

	bw := bufio.NewWriter(w)
	fw := &formJSONWriter{w: bw}
	if err := fw.write(fields); err != nil {
		return err
	}
	return bw.Flush()
}

type formJSONWriter struct {
	w     *bufio.Writer
	open  []string // folded names of the currently open objects
	first []bool   // whether the next member of each open object is its first
	err   error
}

func (fw *formJSONWriter) write(fields []formField) error {
	fw.raw("{")
	fw.first = []bool{true}

	for i, f := range fields {
		if i+1 < len(fields) && isPathPrefix(f.folded, fields[i+1].folded) {
			return fmt.Errorf("%w: %q is both a value and an object", ErrFormFieldConflict, strings.Join(f.path, "."))
		}

		parents := f.folded[:len(f.folded)-1]
		shared := commonPrefix(fw.open, parents)
		for len(fw.open) > shared {
			fw.closeObject()
		}
		for d := shared; d < len(parents); d++ {
			fw.member(f.path[d])
			fw.raw("{")
			fw.open = append(fw.open, parents[d])
			fw.first = append(fw.first, true)
		}

		fw.member(f.path[len(f.path)-1])
		fw.values(f.values)
	}

	for len(fw.open) > 0 {
		fw.closeObject()
	}
	fw.raw("}")
	return fw.err
}

func (fw *formJSONWriter) member(name string) {
	top := len(fw.first) - 1
	if !fw.first[top] {
		fw.raw(",")
	}
	fw.first[top] = false
	fw.str(name)
	fw.raw(":")
}

func (fw *formJSONWriter) closeObject() {
	fw.raw("}")
	fw.open = fw.open[:len(fw.open)-1]
	fw.first = fw.first[:len(fw.first)-1]
}

func (fw *formJSONWriter) values(vals []string) {
	if len(vals) == 1 {
		fw.value(vals[0])
		return
	}
	fw.raw("[")
	for i, v := range vals {
		if i > 0 {
			fw.raw(",")
		}
		fw.value(v)
	}
	fw.raw("]")
}

func (fw *formJSONWriter) value(v string) {
	if isJSONLiteral(v) {
		fw.raw(v)
		return
	}
	fw.str(v)
}

func (fw *formJSONWriter) str(s string) {
	if fw.err != nil {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		fw.err = err
		return
	}
	_, fw.err = fw.w.Write(b)
}

func (fw *formJSONWriter) raw(s string) {
	if fw.err != nil {
		return
	}
	_, fw.err = fw.w.WriteString(s)
}

// isJSONLiteral reports whether v is exactly a JSON boolean or a number in
// encoding/json's grammar (so "007", "NaN" and " 1" are not).
func isJSONLiteral(v string) bool {
	if v == "true" || v == "false" {
		return true
	}
	if v == "" || (v[0] != '-' && (v[0] < '0' || v[0] > '9')) {
		return false
	}
	if strings.TrimSpace(v) != v {
		return false
	}
	return json.Valid([]byte(v))
}

// mergeFolded joins adjacent fields whose keys differ only by case. The
// first spelling wins and the values are concatenated in order.
func mergeFolded(fields []formField) []formField {
	out := fields[:0]
	for _, f := range fields {
		if n := len(out); n > 0 && slices.Equal(out[n-1].folded, f.folded) {
			merged := make([]string, 0, len(out[n-1].values)+len(f.values))
			merged = append(merged, out[n-1].values...)
			out[n-1].values = append(merged, f.values...)
			continue
		}
		out = append(out, f)
	}
	return out
}

func isPathPrefix(prefix, path []string) bool {
	return len(prefix) < len(path) && slices.Equal(prefix, path[:len(prefix)])
}

func commonPrefix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
