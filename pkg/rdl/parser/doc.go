// Package parser builds value trees from RDL source text.
//
// RDL documents hold exactly one value:
//
//	(
//	    symbol "AAPL", # Apple Inc
//	    close_price 100.27,
//	    past_prices [99.80, 100.17, 110.17],
//	    delisted False,
//	    address None,
//	    financials (eps 0.27, revenue 100_000),
//	)
//
// The grammar is parsed by recursive descent with one token of lookahead:
//
//	value  := list | object | float | integer | string | True | False | None
//	list   := '[' (value (',' value)* ','?)? ']'
//	object := '(' (field value (',' field value)* ','?)? ')'
//
// Comments are skipped. Object fields are sorted by name once the closing
// parenthesis is read; each name must be lowercase letters and underscores
// and must not repeat. The first error aborts the parse.
//
// # Basic Usage
//
//	v, err := parser.Parse(src)
//	if err != nil {
//	    fmt.Println(err) // located *errors.ParseError with a source snippet
//	}
//
// Configure limits and the name used in error locations:
//
//	p := parser.NewParser().WithMaxDepth(32).WithSourceName("prices.rdl")
//	v, err := p.Parse(src)
package parser
