package rdl

import (
	"mercator-hq/rdl/pkg/rdl/parser"
	"mercator-hq/rdl/pkg/rdl/rules"
	"mercator-hq/rdl/pkg/rdl/schema"
	"mercator-hq/rdl/pkg/rdl/value"
)

// Parse parses a document held in memory.
func Parse(src string) (value.Value, error) {
	return parser.Parse(src)
}

// ParseFile parses the document at path.
func ParseFile(path string) (value.Value, error) {
	return parser.ParseFile(path)
}

// LoadSchema parses the schema file at path.
func LoadSchema(path string) (rules.Rule, error) {
	return schema.ParseFile(path)
}

// ParseAndValidate parses src and validates it against r, returning the
// value with defaults filled in.
func ParseAndValidate(src string, r rules.Rule) (value.Value, error) {
	v, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return rules.Validate(r, v)
}

// ParseAndValidateFile is ParseAndValidate for a document file.
func ParseAndValidateFile(path string, r rules.Rule) (value.Value, error) {
	v, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return rules.Validate(r, v)
}

// Format prints v in canonical single-line form.
func Format(v value.Value) (string, error) {
	return value.Format(v)
}
