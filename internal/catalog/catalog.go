// Package catalog holds the static field definitions and the ordered field groups of every
// document type. All lookups are pure reads over data loaded once at start-up.
package catalog

import (
	_ "embed"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"docfill/internal/model"
)

//go:embed catalog.yaml
var embedded []byte

type document struct {
	DefaultDocumentType string                  `yaml:"default_document_type"`
	Fields              []model.FieldDefinition `yaml:"fields"`
	DocumentTypes       []documentType          `yaml:"document_types"`
}

type documentType struct {
	Code    string             `yaml:"code"`
	Aliases []string           `yaml:"aliases"`
	Groups  []model.FieldGroup `yaml:"groups"`
}

// Catalog is the read-only registry of fields and groups. It is safe for concurrent use.
type Catalog struct {
	defaultType string
	fields      map[string]model.FieldDefinition
	groups      map[string][]model.FieldGroup
	aliases     map[string]string
	codes       []string
}

// New returns the catalog compiled into the binary.
func New() (*Catalog, error) {
	return Parse(embedded)
}

// MustNew is New for process start-up and tests.
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a YAML catalog document from fsys.
func Load(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", name, err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Field keys are lowercased; duplicate keys or document type
// codes are rejected, and every grouped field must be defined.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}

	c := &Catalog{
		defaultType: strings.TrimSpace(doc.DefaultDocumentType),
		fields:      make(map[string]model.FieldDefinition, len(doc.Fields)),
		groups:      make(map[string][]model.FieldGroup, len(doc.DocumentTypes)),
		aliases:     make(map[string]string),
	}

	for _, f := range doc.Fields {
		f.Key = strings.ToLower(strings.TrimSpace(f.Key))
		if f.Key == "" {
			return nil, fmt.Errorf("catalog: field with empty key")
		}
		if _, exists := c.fields[f.Key]; exists {
			return nil, fmt.Errorf("catalog: duplicate field %q", f.Key)
		}
		c.fields[f.Key] = f
	}

	for _, dt := range doc.DocumentTypes {
		code := strings.TrimSpace(dt.Code)
		if code == "" {
			return nil, fmt.Errorf("catalog: document type with empty code")
		}
		if _, exists := c.groups[code]; exists {
			return nil, fmt.Errorf("catalog: duplicate document type %q", code)
		}
		groups := make([]model.FieldGroup, 0, len(dt.Groups))
		for _, g := range dt.Groups {
			keys := make([]string, 0, len(g.Fields))
			for _, k := range g.Fields {
				k = strings.ToLower(strings.TrimSpace(k))
				if _, ok := c.fields[k]; !ok {
					return nil, fmt.Errorf("catalog: group %s/%s references undefined field %q", code, g.ID, k)
				}
				keys = append(keys, k)
			}
			g.Fields = keys
			groups = append(groups, g)
		}
		c.groups[code] = groups
		c.codes = append(c.codes, code)
		for _, a := range dt.Aliases {
			c.aliases[strings.TrimSpace(a)] = code
		}
	}

	if c.defaultType != "" {
		if _, ok := c.groups[c.defaultType]; !ok {
			return nil, fmt.Errorf("catalog: default document type %q is not defined", c.defaultType)
		}
	}

	return c, nil
}

// Canonical follows a document type alias to its code. Other codes are returned unchanged.
func (c *Catalog) Canonical(code string) string {
	if target, ok := c.aliases[code]; ok {
		return target
	}
	return code
}

// DocumentTypes returns the codes defined in the catalog, in definition order.
func (c *Catalog) DocumentTypes() []string {
	return append([]string(nil), c.codes...)
}

// DefaultType is the code callers fall back to when a document type has no groups.
func (c *Catalog) DefaultType() string {
	return c.defaultType
}

// Resolve maps code to a catalog code: aliases are followed and codes without groups
// resolve to the default type.
func (c *Catalog) Resolve(code string) string {
	code = c.Canonical(code)
	if len(c.groups[code]) > 0 {
		return code
	}
	return c.defaultType
}

// FieldsFor returns the ordered groups of a document type. Unknown codes yield an empty list.
func (c *Catalog) FieldsFor(code string) []model.FieldGroup {
	groups := c.groups[c.Canonical(code)]
	out := make([]model.FieldGroup, len(groups))
	for i, g := range groups {
		g.Fields = append([]string(nil), g.Fields...)
		out[i] = g
	}
	return out
}

// AllRequiredFields flattens the groups of a document type, keeping the first occurrence of each key.
func (c *Catalog) AllRequiredFields(code string) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, g := range c.groups[c.Canonical(code)] {
		for _, k := range g.Fields {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	return keys
}

// NextGroup returns the first group, in defined order, with at least one key absent from filled.
// It returns nil when every group is satisfied.
func (c *Catalog) NextGroup(code string, filled map[string]struct{}) *model.FieldGroup {
	for _, g := range c.FieldsFor(code) {
		for _, k := range g.Fields {
			if _, ok := filled[k]; !ok {
				return &g
			}
		}
	}
	return nil
}

// Missing returns the keys of g that are absent from filled, in group order.
func Missing(g model.FieldGroup, filled map[string]struct{}) []string {
	var out []string
	for _, k := range g.Fields {
		if _, ok := filled[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// KeySet builds the filled-key set of an answers mapping.
func KeySet(answers map[string]string) map[string]struct{} {
	set := make(map[string]struct{}, len(answers))
	for k := range answers {
		set[k] = struct{}{}
	}
	return set
}

// Field looks up a field definition by key.
func (c *Catalog) Field(key string) (model.FieldDefinition, bool) {
	f, ok := c.fields[strings.ToLower(key)]
	return f, ok
}

// Known reports whether key is defined in the catalog.
func (c *Catalog) Known(key string) bool {
	_, ok := c.Field(key)
	return ok
}

// HumanName is the field description, or the raw key when the field is undefined.
func (c *Catalog) HumanName(key string) string {
	if f, ok := c.Field(key); ok && f.Description != "" {
		return f.Description
	}
	return key
}

// Describe renders a field as one line: key, description, purpose and example.
// Undefined fields are described by their raw key.
func (c *Catalog) Describe(key string) string {
	f, ok := c.Field(key)
	if !ok {
		return key
	}
	var b strings.Builder
	b.WriteString(f.Key)
	b.WriteString(": ")
	if f.Description != "" {
		b.WriteString(f.Description)
	} else {
		b.WriteString(f.Key)
	}
	if f.Purpose != "" {
		fmt.Fprintf(&b, " (Призначення: %s)", f.Purpose)
	}
	if f.Example != "" {
		fmt.Fprintf(&b, " [Приклад: %s]", f.Example)
	}
	return b.String()
}

// Context describes each key on its own line, for inclusion in a gateway prompt.
func (c *Catalog) Context(keys []string) string {
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = "- " + c.Describe(k)
	}
	return strings.Join(lines, "\n")
}
