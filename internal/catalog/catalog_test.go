package catalog

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const code = "nadannya_poslug"

func TestNew_EmbeddedCatalog(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Equal(t, code, c.DefaultType())
	assert.Equal(t, []string{code}, c.DocumentTypes())
	assert.Len(t, c.FieldsFor(code), 7)
	assert.Len(t, c.AllRequiredFields(code), 16)
}

func TestFieldsFor_UnknownTypeIsEmpty(t *testing.T) {
	c := MustNew()
	assert.Empty(t, c.FieldsFor("no_such_type"))
	assert.Empty(t, c.AllRequiredFields("no_such_type"))
	assert.Nil(t, c.NextGroup("no_such_type", nil))
}

func TestFieldsFor_Alias(t *testing.T) {
	c := MustNew()
	if diff := cmp.Diff(c.FieldsFor(code), c.FieldsFor("Надання_послуг")); diff != "" {
		t.Fatalf("alias groups mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, code, c.Canonical("Надання_послуг"))
	assert.Equal(t, "other", c.Canonical("other"))
}

func TestFieldsFor_ReturnsCopies(t *testing.T) {
	c := MustNew()
	groups := c.FieldsFor(code)
	groups[0].Fields[0] = "mutated"

	assert.Equal(t, "city", c.FieldsFor(code)[0].Fields[0])
}

func TestResolve(t *testing.T) {
	c := MustNew()
	assert.Equal(t, code, c.Resolve(code))
	assert.Equal(t, code, c.Resolve("Надання_послуг"))
	assert.Equal(t, code, c.Resolve("unknown"))
}

func TestAllRequiredFields_DeduplicatesInFirstSeenOrder(t *testing.T) {
	c, err := Parse([]byte(`
fields:
  - {key: a, description: A}
  - {key: b, description: B}
  - {key: c, description: C}
document_types:
  - code: t
    groups:
      - {id: one, fields: [b, a]}
      - {id: two, fields: [a, c, B]}
`))
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"b", "a", "c"}, c.AllRequiredFields("t")); diff != "" {
		t.Fatalf("required fields mismatch (-want +got):\n%s", diff)
	}
}

func TestNextGroup(t *testing.T) {
	c := MustNew()
	all := c.AllRequiredFields(code)

	tests := []struct {
		name   string
		filled []string
		want   string
	}{
		{name: "nothing filled", filled: nil, want: "basic_info"},
		{name: "partial first group", filled: []string{"city", "enterprise"}, want: "basic_info"},
		{name: "first group done", filled: []string{"city", "enterprise", "date"}, want: "names"},
		{
			name:   "out of order fields do not skip earlier groups",
			filled: []string{"customer_iban", "performer_iban", "city"},
			want:   "basic_info",
		},
		{
			name:   "earlier groups satisfied, later gap",
			filled: []string{"city", "enterprise", "date", "full_name_customer", "full_name_performer", "customer_iban", "performer_iban"},
			want:   "phones",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filled := make(map[string]struct{})
			for _, k := range tt.filled {
				filled[k] = struct{}{}
			}
			g := c.NextGroup(code, filled)
			require.NotNil(t, g)
			assert.Equal(t, tt.want, g.ID)
		})
	}

	t.Run("none iff every required field is filled", func(t *testing.T) {
		filled := make(map[string]struct{})
		for i, k := range all {
			assert.NotNil(t, c.NextGroup(code, filled), "after %d fields", i)
			filled[k] = struct{}{}
		}
		assert.Nil(t, c.NextGroup(code, filled))
	})
}

func TestMissingAndKeySet(t *testing.T) {
	c := MustNew()
	g := c.FieldsFor(code)[0]
	filled := KeySet(map[string]string{"enterprise": "ТОВ Ромашка"})

	assert.Equal(t, []string{"city", "date"}, Missing(g, filled))
}

func TestDescribe(t *testing.T) {
	c := MustNew()

	line := c.Describe("city")
	assert.Contains(t, line, "city: Місто, де укладається договір")
	assert.Contains(t, line, "(Призначення:")
	assert.Contains(t, line, "[Приклад: Київ, Львів, Одеса]")

	assert.Equal(t, "unknown_key", c.Describe("unknown_key"))
	assert.Equal(t, "unknown_key", c.HumanName("unknown_key"))
	assert.Equal(t, "Номер телефону замовника", c.HumanName("Customer_Phone_Number"))
}

func TestContext(t *testing.T) {
	c := MustNew()
	ctx := c.Context([]string{"city", "enterprise"})

	assert.Equal(t, "- "+c.Describe("city")+"\n- "+c.Describe("enterprise"), ctx)
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"catalog.yaml": {Data: []byte(`
default_document_type: t
fields:
  - {key: X, description: Ікс}
document_types:
  - code: t
    groups:
      - {id: g, prompt: "Дайте x", fields: [x]}
`)},
	}

	c, err := Load(fsys, "catalog.yaml")
	require.NoError(t, err)
	assert.True(t, c.Known("x"))
	assert.Equal(t, "Дайте x", c.FieldsFor("t")[0].Prompt)

	_, err = Load(fsys, "missing.yaml")
	assert.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "invalid yaml", doc: "fields: ["},
		{name: "duplicate field", doc: "fields:\n  - {key: a}\n  - {key: A}\n"},
		{name: "undefined group field", doc: "fields:\n  - {key: a}\ndocument_types:\n  - {code: t, groups: [{id: g, fields: [b]}]}\n"},
		{name: "duplicate type", doc: "document_types:\n  - {code: t}\n  - {code: t}\n"},
		{name: "unknown default", doc: "default_document_type: nope\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
