// Package domain — StringSet
//
// StringSet stores a set of strings as a JSON array in a single TEXT
// column. It backs PlanningWatch.SeenURLs, where ordering is irrelevant
// and membership uniqueness is required.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// StringSet is a deduplicated collection of strings persisted as JSON.
// The zero value is an empty set.
type StringSet []string

// NewStringSet builds a StringSet from vals, dropping duplicates and
// empty strings. Members are sorted so persisted values are stable.
func NewStringSet(vals ...string) StringSet {
	seen := make(map[string]struct{}, len(vals))
	out := make(StringSet, 0, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether v is a member of the set.
func (s StringSet) Contains(v string) bool {
	for _, m := range s {
		if m == v {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer, serializing the set as a JSON array.
// An empty set is stored as "[]" rather than NULL.
func (s StringSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner, accepting TEXT/BLOB JSON arrays and NULL.
func (s *StringSet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		if v == "" {
			*s = nil
			return nil
		}
		return json.Unmarshal([]byte(v), (*[]string)(s))
	case []byte:
		if len(v) == 0 {
			*s = nil
			return nil
		}
		return json.Unmarshal(v, (*[]string)(s))
	default:
		return fmt.Errorf("domain: cannot scan %T into StringSet", src)
	}
}
