// Package rdl is the entry point for reading RDL documents.
//
// RDL is a small data-literal language: parenthesized objects of
// snake_case fields, bracketed lists, quoted strings, numbers with '_'
// grouping, the keywords True, False and None, and '#' comments.
//
// The work is split across subpackages:
//
//   - lexer: source text to tokens
//   - parser: tokens to a value.Value tree
//   - rules: validation and defaulting of values against a schema
//   - schema: schema text to rules.Rule
//   - errors: located ParseError and suggestions
//
// # Basic Usage
//
//	stock, err := rdl.LoadSchema("schemas/stock.schema")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, err := rdl.ParseAndValidate(src, stock)
//	if err != nil {
//	    log.Fatal(err) // *errors.ParseError or *rules.ValidationError
//	}
package rdl
