// Package model defines the documentation items extracted from source files
// and the aggregated, requirement-keyed result built from them.
package model

import (
	"encoding/json"
	"fmt"
)

// Item is one extracted documentation block.
type Item struct {
	// SN is the 1-based position inside a rendered section. It is only
	// meaningful after rendering.
	SN int `json:"sn,omitempty" yaml:"sn,omitempty"`
	// File is relative to the project root.
	File    string `json:"file" yaml:"file"`
	Line    int    `json:"line" yaml:"line"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	// Req lists requirement IDs; the first one groups the item.
	Req    IDList `json:"req" yaml:"req"`
	Domain IDList `json:"domain" yaml:"domain"`

	CheckCode         string `json:"check_code,omitempty" yaml:"check_code,omitempty"`
	CheckCodeLanguage string `json:"check_code_language,omitempty" yaml:"check_code_language,omitempty"`
}

// IDList is a list of identifiers. It decodes from either a single JSON
// string or a list, and always encodes as a list.
type IDList []string

// MarshalJSON encodes a nil list as [].
func (l IDList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON accepts a string, a list of strings or null.
func (l *IDList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*l = nil
	case string:
		*l = IDList{v}
	case []any:
		out := make(IDList, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("id list: unexpected element %T", e)
			}
			out = append(out, s)
		}
		*l = out
	default:
		return fmt.Errorf("id list: unexpected value %T", raw)
	}
	return nil
}
