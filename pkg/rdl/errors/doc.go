// Package errors provides located error types for RDL parsing.
//
// Every parse failure is a *ParseError carrying a Kind, a byte offset into
// the source (plus the derived line and column), and one of the sentinel
// errors below so callers can branch with errors.Is:
//
//	v, err := parser.Parse(src)
//	if errors.Is(err, rdlerrors.ErrDuplicateField) {
//	    ...
//	}
//
// # Error Kinds
//
// KindLexical: input the lexer could not classify (stray characters, malformed numbers)
//
// KindSyntax: a token in the wrong place, a missing delimiter, trailing input
//
// KindSemantic: unknown keywords, non-snake_case or duplicate field names
//
// KindIO: the source could not be read or is too large
//
// # Error Format
//
//	[semantic] duplicate field "a"
//	  --> prices.rdl:3:3
//	  |
//	   2 |   a 1,
//	-> 3 |   a 2,
//	     |   ^
//	   4 | )
//	  |
//
// Use Short for a one-line form.
package errors
