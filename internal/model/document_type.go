package model

import "time"

// FieldDefinition describes a single collectible field. Keys are stable across document types.
type FieldDefinition struct {
	Key         string `json:"key" yaml:"key"`
	Description string `json:"description" yaml:"description"`
	Purpose     string `json:"purpose,omitempty" yaml:"purpose"`
	Example     string `json:"example,omitempty" yaml:"example"`
}

// FieldGroup is an ordered set of fields collected together in one conversational step.
type FieldGroup struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Prompt string   `json:"prompt" yaml:"prompt"`
	Hint   string   `json:"extraction_hint,omitempty" yaml:"hint"`
	Fields []string `json:"fields" yaml:"fields"`
}

// DocumentType is the persisted record of a fillable document type.
// Groups and validation rules are resolved from the catalog and the validator by Code.
type DocumentType struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	TemplateKey string    `json:"template_key"`
	CreatedAt   time.Time `json:"created_at"`
}
