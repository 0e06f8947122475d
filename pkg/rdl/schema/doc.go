// Package schema reads rule trees from text.
//
// Schemas use the same tokens as documents. Rule names are keywords,
// object rules mirror object values, and '|' separates alternatives:
//
//	# stock.schema
//	(
//	    symbol      {String, AllUppercase, MaxLength(5)},
//	    close_price Number,
//	    past_prices [Number],
//	    delisted    Boolean | Default(False),
//	    address     String | None | Default(None),
//	    financials  OpenObject(eps Float, revenue Min(0)),
//	)
//
// Grammar:
//
//	rule := term ('|' term)*
//	term := Name                                  Any String Integer Float Boolean None
//	                                              Number List AllUppercase AllLowercase Url
//	      | Name '(' args ')'                     Length(n) MinLength(n) MaxLength(n)
//	                                              Min(num) Max(num) ListAll(rule)
//	                                              Default(value) OpenObject(fields)
//	      | '(' fields ')'                        closed object
//	      | '[' rule ']'                          ListAll
//	      | '{' rule (',' rule)* ','? '}'         All
//
// The argument of Default is any document value. The String method of
// every rules.Rule produces text this package parses back to an
// equivalent rule.
package schema
