// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Lookup is the outcome of resolving one reference during aggregation:
// either Resolved with a value, or Unresolved with a reason and a
// placeholder value that is still safe to display.
type Lookup[T any] struct {
	Value    T      `json:"value"`
	Resolved bool   `json:"resolved"`
	Reason   string `json:"reason,omitempty"`
}

func Resolved[T any](v T) Lookup[T] {
	return Lookup[T]{Value: v, Resolved: true}
}

func Unresolved[T any](placeholder T, reason string) Lookup[T] {
	return Lookup[T]{Value: placeholder, Reason: reason}
}

// StringList is stored as a JSON array in a TEXT column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return errors.Join(errors.New("invalid string list"), err)
	}
	*l = out
	return nil
}
