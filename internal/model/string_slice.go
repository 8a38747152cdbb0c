package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringSlice stores a []string as a single comma-joined TEXT column.
// The flat format matters: shared-with lookups match on it with LIKE.
type StringSlice []string

// Value implements the driver.Valuer interface.
// Commas act as the separator so no element may contain one.
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}

	for _, v := range s {
		if strings.Contains(v, ",") {
			return "", fmt.Errorf("unsafe string, %s", v)
		}
	}

	return strings.Join(s, ","), nil
}

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}

	str, ok := value.(string)
	if !ok {
		b, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("failed to scan StringSlice, %v", value)
		}

		str = string(b)
	}

	if str == "" {
		*s = []string{}
	} else {
		*s = strings.Split(str, ",")
	}

	return nil
}

// Contains reports whether v is an element of s
func (s StringSlice) Contains(v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
