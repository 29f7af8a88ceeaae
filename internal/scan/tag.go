package scan

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrInvalidTag indicates a struct tag that does not follow the
// key:"value" convention.
var ErrInvalidTag = errors.New("invalid tag")

// tag is a parsed struct tag, keeping every value of repeated keys so
// declarations like `choice:"json" choice:"yaml"` accumulate.
type tag map[string][]string

func parseTag(field reflect.StructField) (tag, error) {
	parsed := tag{}
	if err := parsed.parse(string(field.Tag)); err != nil {
		return nil, fmt.Errorf("field %s: %w", field.Name, err)
	}

	return parsed, nil
}

// get returns the first value of a key.
func (t tag) get(key string) (string, bool) {
	if values, ok := t[key]; ok {
		return values[0], true
	}

	return "", false
}

// getAll returns every value of a repeated key.
func (t tag) getAll(key string) []string {
	return t[key]
}

// isTrue reports whether the key is set to an affirmative value. A key
// present without a recognizable value counts as set.
func (t tag) isTrue(key string) bool {
	value, ok := t.get(key)
	if !ok {
		return false
	}

	switch strings.ToLower(value) {
	case "false", "no", "0", "off":
		return false
	default:
		return true
	}
}

// parse walks the raw tag string the way the reflect package does, but
// keeps duplicate keys instead of dropping them.
func (t tag) parse(raw string) error {
	for raw != "" {
		pos := 0
		for pos < len(raw) && raw[pos] == ' ' {
			pos++
		}

		raw = raw[pos:]
		if raw == "" {
			break
		}

		pos = 0
		for pos < len(raw) && raw[pos] > ' ' && raw[pos] != ':' && raw[pos] != '"' && raw[pos] != 0x7f {
			pos++
		}

		if pos == 0 || pos+1 >= len(raw) || raw[pos] != ':' || raw[pos+1] != '"' {
			return fmt.Errorf("%w: invalid syntax", ErrInvalidTag)
		}

		name := raw[:pos]
		raw = raw[pos+1:]

		pos = 1
		for pos < len(raw) && raw[pos] != '"' {
			if raw[pos] == '\\' {
				pos++
			}
			pos++
		}

		if pos >= len(raw) {
			return fmt.Errorf("%w: invalid syntax", ErrInvalidTag)
		}

		quoted := raw[:pos+1]
		raw = raw[pos+1:]

		value, ok := reflect.StructTag(name + ":" + quoted).Lookup(name)
		if !ok {
			return fmt.Errorf("%w: tag value not found", ErrInvalidTag)
		}

		t[name] = append(t[name], value)
	}

	return nil
}
