package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MovieID is an opaque movie identifier in canonical string form.
//
// The API sends identifiers as either JSON strings or numbers; both decode to the same MovieID.
type MovieID string

// ParseMovieID converts a string or numeric identifier to its canonical [MovieID].
//
// Strings are only trimmed. Numbers are written in their shortest decimal form,
// so 42, 42.0 and "42" are the same id while "042" and "4.2e1" are not.
func ParseMovieID(v any) MovieID {
	switch x := v.(type) {
	case nil:
		return ""
	case MovieID:
		return MovieID(strings.TrimSpace(string(x)))
	case string:
		return MovieID(strings.TrimSpace(x))
	case json.Number:
		return MovieID(numberString(x.String()))
	case int:
		return MovieID(strconv.Itoa(x))
	case int64:
		return MovieID(strconv.FormatInt(x, 10))
	case int32:
		return MovieID(strconv.FormatInt(int64(x), 10))
	case uint:
		return MovieID(strconv.FormatUint(uint64(x), 10))
	case uint64:
		return MovieID(strconv.FormatUint(x, 10))
	case float64:
		return MovieID(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		return MovieID(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case fmt.Stringer:
		return MovieID(strings.TrimSpace(x.String()))
	default:
		return MovieID(strings.TrimSpace(fmt.Sprint(x)))
	}
}

// maxExactInt is the largest integer a float64 holds without losing digits.
const maxExactInt = 1 << 53

// numberString rewrites a JSON number literal ("42.0", "1e3") to its shortest form ("42", "1000").
// Integer literals keep every digit, and literals a float64 cannot hold exactly are returned unchanged.
func numberString(s string) string {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s
	}
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return s
	}
	if f == math.Trunc(f) && math.Abs(f) > maxExactInt {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (id MovieID) String() string { return string(id) }

// IsZero reports whether id is empty.
func (id MovieID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// Equal compares two identifiers by their trimmed string form.
func (id MovieID) Equal(other MovieID) bool {
	return strings.TrimSpace(string(id)) == strings.TrimSpace(string(other))
}

// UnmarshalJSON accepts a string, a number or null.
func (id *MovieID) UnmarshalJSON(data []byte) error {
	s, err := looseString(data)
	if err != nil {
		return fmt.Errorf("movie id: %w", err)
	}
	*id = MovieID(s)
	return nil
}

// Year is a release year the API sends as either a string or a number.
type Year string

// UnmarshalJSON accepts a string, a number or null.
func (y *Year) UnmarshalJSON(data []byte) error {
	s, err := looseString(data)
	if err != nil {
		return fmt.Errorf("year: %w", err)
	}
	*y = Year(s)
	return nil
}

// looseString decodes a JSON string (trimmed) or number (see [numberString]); null is "".
func looseString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return "", nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return "", err
		}
		return numberString(n.String()), nil
	}
}
