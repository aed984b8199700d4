package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/bytedance/sonic"
)

// NamedTemplate pairs a template with its name for display.
type NamedTemplate struct {
	Name   string         `json:"name"`
	Config TemplateConfig `json:"config"`
}

// TemplateSet maps template names to configs. Names are unique and keep
// insertion order; replacing an existing name keeps its position.
// The zero value is an empty set ready to use.
type TemplateSet struct {
	names []string
	items map[string]TemplateConfig
}

// NewTemplateSet builds a set from entries in the given order.
func NewTemplateSet(entries ...NamedTemplate) TemplateSet {
	var s TemplateSet
	for _, e := range entries {
		s.Set(e.Name, e.Config)
	}
	return s
}

func (s *TemplateSet) Len() int { return len(s.names) }

func (s *TemplateSet) Has(name string) bool {
	_, ok := s.items[name]
	return ok
}

// Get returns a copy of the named template.
func (s *TemplateSet) Get(name string) (TemplateConfig, bool) {
	cfg, ok := s.items[name]
	if !ok {
		return TemplateConfig{}, false
	}
	return cfg.Clone(), true
}

// Set stores a copy of cfg under name.
func (s *TemplateSet) Set(name string, cfg TemplateConfig) {
	if s.items == nil {
		s.items = make(map[string]TemplateConfig)
	}
	if _, ok := s.items[name]; !ok {
		s.names = append(s.names, name)
	}
	s.items[name] = cfg.Clone()
}

// Delete removes name and reports whether it was present.
func (s *TemplateSet) Delete(name string) bool {
	if _, ok := s.items[name]; !ok {
		return false
	}
	delete(s.items, name)
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
	return true
}

// Names returns the template names in display order.
func (s *TemplateSet) Names() []string {
	return slices.Clone(s.names)
}

// Entries returns copies of all templates in display order.
func (s *TemplateSet) Entries() []NamedTemplate {
	out := make([]NamedTemplate, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, NamedTemplate{Name: name, Config: s.items[name].Clone()})
	}
	return out
}

func (s TemplateSet) Clone() TemplateSet {
	cp := TemplateSet{names: slices.Clone(s.names)}
	if s.items != nil {
		cp.items = make(map[string]TemplateConfig, len(s.items))
		for name, cfg := range s.items {
			cp.items[name] = cfg.Clone()
		}
	}
	return cp
}

// Equal reports whether both sets hold the same templates in the same order.
func (s *TemplateSet) Equal(other *TemplateSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i, name := range s.names {
		if other.names[i] != name {
			return false
		}
		if !s.items[name].Equal(other.items[name]) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the set as an object whose key order is the display order.
func (s TemplateSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := sonic.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := sonic.Marshal(s.items[name])
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keeping its key order. Duplicate keys keep the
// first position and the last value.
func (s *TemplateSet) UnmarshalJSON(data []byte) error {
	*s = TemplateSet{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("templates: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("templates: expected name, got %v", tok)
		}
		var cfg TemplateConfig
		if err := dec.Decode(&cfg); err != nil {
			return fmt.Errorf("template %q: %w", name, err)
		}
		if cfg.Videos == nil {
			cfg.Videos = []VideoInfo{}
		}
		s.Set(name, cfg)
	}
	_, err = dec.Token()
	return err
}
