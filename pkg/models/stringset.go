package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StringSet is an ordered set of string tags. Historical records stored
// single-valued fields as a bare string, so unmarshalling accepts either a
// string or an array; marshalling always emits an array.
type StringSet []string

func (s StringSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("invalid tag list: %w", err)
		}
		*s = normalizeTags(values)
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("invalid tag value: %w", err)
	}
	*s = normalizeTags([]string{value})
	return nil
}

// Contains reports whether the set holds value (exact match).
func (s StringSet) Contains(value string) bool {
	for _, v := range s {
		if v == value {
			return true
		}
	}
	return false
}

// ContainsFold reports whether the set holds value, ignoring case.
func (s StringSet) ContainsFold(value string) bool {
	for _, v := range s {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the set holds at least one of the given values.
func (s StringSet) ContainsAny(values []string) bool {
	for _, v := range values {
		if s.Contains(v) {
			return true
		}
	}
	return false
}

// normalizeTags drops empty entries and duplicates while preserving order.
func normalizeTags(values []string) StringSet {
	out := make(StringSet, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NewStringSet builds a normalized set from the given values.
func NewStringSet(values ...string) StringSet {
	return normalizeTags(values)
}
