package format

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/kdbg/kdbg/diagnostic"
	"github.com/pkg/errors"
)

// MaxStructLevels bounds how many `.field` accesses beyond the root
// value a single path may chain, guarding against pathological input
// (`a.b.c.d....`) driving unbounded reflection work.
const MaxStructLevels = 3

// MaxFieldsForAccess refuses field access on any struct wider than
// this, a compile-time-explosion guard against reflecting over
// enormous generated structs one field at a time.
const MaxFieldsForAccess = 20

// segKind distinguishes the three path-segment shapes // names: `.field`, `[i]`, `[i..j]`.
type segKind int

const (
	segField segKind = iota
	segIndex
	segSlice
)

type segment struct {
	kind       segKind
	field      string
	lo, hi     int
}

// SplitPath separates the leading variable name from its trailing
// field/index path, e.g. "player.hp" -> ("player", ".hp").
func SplitPath(expr string) (name, rest string) {
	expr = strings.TrimSpace(expr)
	i := strings.IndexAny(expr, ".[")
	if i < 0 {
		return expr, ""
	}
	return expr[:i], expr[i:]
}

func parseSegments(rest string) ([]segment, error) {
	var segs []segment
	structLevels := 0
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			structLevels++
			if structLevels > MaxStructLevels {
				return nil, errors.Errorf("path exceeds %d struct levels beyond the root", MaxStructLevels)
			}
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			field := rest
			if end >= 0 {
				field = rest[:end]
				rest = rest[end:]
			} else {
				rest = ""
			}
			if field == "" {
				return nil, errors.New("empty field name")
			}
			segs = append(segs, segment{kind: segField, field: field})

		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, errors.New("unterminated '['")
			}
			inner := rest[1:end]
			rest = rest[end+1:]
			if dot := strings.Index(inner, ".."); dot >= 0 {
				lo, err := strconv.Atoi(strings.TrimSpace(inner[:dot]))
				if err != nil {
					return nil, errors.Wrap(err, "slice lower bound")
				}
				hi, err := strconv.Atoi(strings.TrimSpace(inner[dot+2:]))
				if err != nil {
					return nil, errors.Wrap(err, "slice upper bound")
				}
				segs = append(segs, segment{kind: segSlice, lo: lo, hi: hi})
			} else {
				idx, err := strconv.Atoi(strings.TrimSpace(inner))
				if err != nil {
					return nil, errors.Wrap(err, "index")
				}
				segs = append(segs, segment{kind: segIndex, lo: idx})
			}

		default:
			return nil, errors.Errorf("unexpected character %q in path", rest[0])
		}
	}
	return segs, nil
}

// Resolve walks path (the `.field`/`[i]`/`[i..j]` suffix returned by
// SplitPath) over root, returning the formatted "<name>: <type>\n<value>"
// response the output file expects on success, or a plain
// English error line on failure.
func Resolve(name string, root interface{}, path string) (string, error) {
	segs, err := parseSegments(path)
	if err != nil {
		return "", err
	}

	v := reflect.ValueOf(root)
	for _, s := range segs {
		v, err = step(v, s)
		if err != nil {
			return "", err
		}
	}

	if !v.IsValid() {
		return name + ": nil\nnil", nil
	}
	return name + path + ": " + typeName(v.Type()) + "\n" + Format(v.Interface(), 3, DefaultMaxBytes), nil
}

func step(v reflect.Value, s segment) (reflect.Value, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, errors.New("nil pointer dereference")
		}
		v = v.Elem()
	}

	switch s.kind {
	case segField:
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, errors.Errorf("no field %q on %s", s.field, typeName(v.Type()))
		}
		if v.NumField() > MaxFieldsForAccess {
			return reflect.Value{}, errors.Errorf("%s has more than %d fields, refusing field access", typeName(v.Type()), MaxFieldsForAccess)
		}
		f := v.FieldByName(s.field)
		if !f.IsValid() {
			names := fieldNames(v)
			if hint := diagnostic.Suggestion(s.field, names); hint != "" {
				return reflect.Value{}, errors.Errorf("no field %q on %s (did you mean %q?)", s.field, typeName(v.Type()), hint)
			}
			return reflect.Value{}, errors.Errorf("no field %q on %s", s.field, typeName(v.Type()))
		}
		return f, nil

	case segIndex:
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return reflect.Value{}, errors.Errorf("%s is not indexable", typeName(v.Type()))
		}
		if s.lo < 0 || s.lo >= v.Len() {
			return reflect.Value{}, errors.Errorf("index %d out of range (len %d)", s.lo, v.Len())
		}
		return v.Index(s.lo), nil

	case segSlice:
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return reflect.Value{}, errors.Errorf("%s is not sliceable", typeName(v.Type()))
		}
		lo, hi := s.lo, s.hi
		if lo < 0 || hi > v.Len() || lo > hi {
			return reflect.Value{}, errors.Errorf("slice [%d..%d] out of range (len %d)", lo, hi, v.Len())
		}
		return v.Slice(lo, hi), nil
	}
	return reflect.Value{}, errors.New("unreachable path segment kind")
}

func fieldNames(v reflect.Value) []string {
	t := v.Type()
	names := make([]string, t.NumField())
	for i := range names {
		names[i] = t.Field(i).Name
	}
	return names
}
