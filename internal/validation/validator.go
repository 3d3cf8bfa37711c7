// Package validation normalizes and validates field values per document type.
//
// Each document type maps to a statically defined RuleSet. Validation is opt-in: document types
// without a rule set accept every value as trimmed text.
package validation

import (
	"errors"
	"sort"
	"strings"
)

// FieldError is a user-facing complaint about one supplied field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned when a strict operation rejects supplied fields.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Result is the outcome of ValidateAll. Values holds the canonical form of every accepted field.
type Result struct {
	Valid  bool
	Errors []FieldError
	Values map[string]string
}

// RuleSet is the closed set of rules of one document type. Fields without a rule are accepted
// as trimmed text; Aliases map alternative input keys to canonical field keys.
type RuleSet struct {
	Rules   map[string]Rule
	Aliases map[string]string
}

// Registry dispatches validation by document type code. It is read-only after construction.
type Registry struct {
	sets map[string]*RuleSet
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]*RuleSet)}
}

// Default returns a registry with every built-in document type registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(NadannyaPoslug(), "nadannya_poslug", "Надання_послуг")
	return r
}

// Register binds set to each of the given codes.
func (r *Registry) Register(set *RuleSet, codes ...string) {
	for _, c := range codes {
		r.sets[c] = set
	}
}

// Has reports whether code has a rule set.
func (r *Registry) Has(code string) bool {
	_, ok := r.sets[code]
	return ok
}

// Fields lists the keys with an explicit rule for code, sorted.
func (r *Registry) Fields(code string) []string {
	set, ok := r.sets[code]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(set.Rules))
	for k := range set.Rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Normalize validates a single field value.
func (r *Registry) Normalize(code, field string, raw any) (string, error) {
	res := r.ValidateAll(code, map[string]any{field: raw})
	if !res.Valid {
		return "", &Error{Fields: res.Errors}
	}
	key := r.resolve(code, field)
	v, ok := res.Values[key]
	if !ok {
		return "", &Error{Fields: []FieldError{{Field: key, Message: "Значення не вказано."}}}
	}
	return v, nil
}

// resolve returns the canonical key the rule set of code stores field under.
func (r *Registry) resolve(code, field string) string {
	key := CanonicalKey(field)
	if set, ok := r.sets[code]; ok {
		if target, ok := set.Aliases[key]; ok {
			return target
		}
	}
	return key
}

// ValidateAll normalizes every supplied field of answers. Absent, nil or blank values are not
// reported: partial submissions are always legal. Unknown document types are always valid.
func (r *Registry) ValidateAll(code string, answers map[string]any) Result {
	res := Result{Valid: true, Values: make(map[string]string, len(answers))}
	set := r.sets[code]

	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		raw := answers[k]
		if blank(raw) {
			continue
		}
		field := r.resolve(code, k)

		rule, ruled := Rule(Text), false
		if set != nil {
			if fn, ok := set.Rules[field]; ok {
				rule, ruled = fn, true
			}
		}

		v, err := rule(raw)
		if err != nil {
			// Extras are ignorable: only ruled fields produce errors.
			if !ruled {
				continue
			}
			res.Errors = append(res.Errors, FieldError{Field: field, Message: userMessage(err)})
			continue
		}
		res.Values[field] = v
	}

	if len(res.Errors) > 0 {
		res.Valid = false
	}
	return res
}

// CanonicalKey case-folds and trims a field key.
func CanonicalKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func blank(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func userMessage(err error) string {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Reason
	}
	return "Некоректне значення."
}
