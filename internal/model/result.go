package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Section holds the items of one block type under a requirement.
type Section struct {
	Type  string
	Items []*Item
}

// Requirement groups sections by block type, in first-seen order.
type Requirement struct {
	ID       string
	Sections []*Section
}

// Section returns the section for blockType, or nil.
func (r *Requirement) Section(blockType string) *Section {
	for _, s := range r.Sections {
		if s.Type == blockType {
			return s
		}
	}
	return nil
}

// Result maps requirement ID to block type to items. Both levels keep
// insertion order until Sort orders the requirement IDs. Empty sections are
// never stored.
type Result struct {
	reqs  []*Requirement
	index map[string]*Requirement
}

// New returns an empty result.
func New() *Result {
	return &Result{index: map[string]*Requirement{}}
}

// Add appends item under (reqID, blockType), creating the path if absent.
func (r *Result) Add(reqID, blockType string, item *Item) {
	if r.index == nil {
		r.index = map[string]*Requirement{}
	}
	req, ok := r.index[reqID]
	if !ok {
		req = &Requirement{ID: reqID}
		r.index[reqID] = req
		r.reqs = append(r.reqs, req)
	}
	sec := req.Section(blockType)
	if sec == nil {
		sec = &Section{Type: blockType}
		req.Sections = append(req.Sections, sec)
	}
	sec.Items = append(sec.Items, item)
}

// Merge appends every item of other, in other's order.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	for _, req := range other.reqs {
		for _, sec := range req.Sections {
			for _, item := range sec.Items {
				r.Add(req.ID, sec.Type, item)
			}
		}
	}
}

// Sort orders requirement IDs with a locale-aware collation, falling back to
// byte order for IDs the collation treats as equal.
func (r *Result) Sort() {
	c := collate.New(language.Und)
	sort.SliceStable(r.reqs, func(i, j int) bool {
		a, b := r.reqs[i].ID, r.reqs[j].ID
		if cmp := c.CompareString(a, b); cmp != 0 {
			return cmp < 0
		}
		return a < b
	})
}

// Requirements returns the requirements in current order.
func (r *Result) Requirements() []*Requirement {
	if r == nil {
		return nil
	}
	return r.reqs
}

// Get returns the requirement stored under id.
func (r *Result) Get(id string) (*Requirement, bool) {
	if r == nil {
		return nil, false
	}
	req, ok := r.index[id]
	return req, ok
}

// IDs returns the requirement IDs in current order.
func (r *Result) IDs() []string {
	ids := make([]string, 0, r.Len())
	for _, req := range r.Requirements() {
		ids = append(ids, req.ID)
	}
	return ids
}

// Len reports the number of requirement IDs.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.reqs)
}

// ItemCount reports the number of items across all requirements.
func (r *Result) ItemCount() int {
	n := 0
	for _, req := range r.Requirements() {
		for _, sec := range req.Sections {
			n += len(sec.Items)
		}
	}
	return n
}

// Filter returns the requirements whose ID is in ids, keeping order. An
// empty ids returns r unchanged.
func (r *Result) Filter(ids []string) *Result {
	if len(ids) == 0 {
		return r
	}
	keep := toSet(ids)
	return r.filter(func(reqID, _ string) bool {
		_, ok := keep[reqID]
		return ok
	})
}

// FilterTypes keeps only the named block types. Requirements left without
// sections are dropped. An empty types returns r unchanged.
func (r *Result) FilterTypes(types []string) *Result {
	if len(types) == 0 {
		return r
	}
	keep := toSet(types)
	return r.filter(func(_, blockType string) bool {
		_, ok := keep[blockType]
		return ok
	})
}

func (r *Result) filter(keep func(reqID, blockType string) bool) *Result {
	out := New()
	for _, req := range r.Requirements() {
		for _, sec := range req.Sections {
			if !keep(req.ID, sec.Type) {
				continue
			}
			for _, item := range sec.Items {
				out.Add(req.ID, sec.Type, item)
			}
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// MarshalJSON encodes the result as a nested JSON object, preserving order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, req := range r.Requirements() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, req.ID); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, sec := range req.Sections {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, sec.Type); err != nil {
				return nil, err
			}
			items, err := json.Marshal(sec.Items)
			if err != nil {
				return nil, fmt.Errorf("marshal %s/%s: %w", req.ID, sec.Type, err)
			}
			buf.Write(items)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	b, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(b)
	buf.WriteByte(':')
	return nil
}

// UnmarshalJSON decodes a nested JSON object, preserving key order.
func (r *Result) UnmarshalJSON(data []byte) error {
	*r = Result{index: map[string]*Requirement{}}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		reqID, err := readKey(dec)
		if err != nil {
			return err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		for dec.More() {
			blockType, err := readKey(dec)
			if err != nil {
				return err
			}
			var items []*Item
			if err := dec.Decode(&items); err != nil {
				return fmt.Errorf("decode %s/%s: %w", reqID, blockType, err)
			}
			for _, item := range items {
				if item != nil {
					r.Add(reqID, blockType, item)
				}
			}
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read result: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("read result: expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("read result: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("read result: expected key, got %v", tok)
	}
	return key, nil
}

// MarshalYAML encodes the result as an ordered YAML mapping.
func (r *Result) MarshalYAML() (interface{}, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, req := range r.Requirements() {
		sections := &yaml.Node{Kind: yaml.MappingNode}
		for _, sec := range req.Sections {
			items := &yaml.Node{}
			if err := items.Encode(sec.Items); err != nil {
				return nil, fmt.Errorf("encode %s/%s: %w", req.ID, sec.Type, err)
			}
			sections.Content = append(sections.Content, scalar(sec.Type), items)
		}
		root.Content = append(root.Content, scalar(req.ID), sections)
	}
	return root, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
