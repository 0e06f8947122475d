// Package lexer tokenizes RDL source text.
//
// The lexer is a lazy, forward-only producer with one token of lookahead.
// Tokens are byte ranges into the source plus a [TokenKind]; the lexer does
// not interpret them. Keyword spelling, numeric conversion and string
// termination are checked by the parser.
//
// At each position the following are tried in order:
//
//   - whitespace (space, tab, newline) is skipped
//   - ( ) [ ] { } , | map to their own kinds
//   - # starts a Comment that runs to the end of the line
//   - digits with at most one '.', '_' separators and an optional leading '-'
//     form an Integer or Float
//   - " starts a String that ends at the next " (there are no escapes)
//   - an uppercase letter starts a Keyword, a lowercase letter a Field
//
// Anything else produces an Invalid token and ends the stream.
//
// Use [SkipComments] (or [WithoutComments] for the iterator form) when only
// the meaning of the document matters:
//
//	for tok := range lexer.WithoutComments(lexer.Tokens(src)) {
//	    fmt.Println(tok.Kind, tok.Text(src))
//	}
package lexer
