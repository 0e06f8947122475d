// Package rules validates and normalizes values against schemas.
//
// A schema is a tree of Rule values built with the constructors in this
// package (or parsed from text by package schema):
//
//	stock := rules.Object(rules.Fields{
//	    "symbol":      rules.All(rules.String(), rules.AllUppercase(), rules.MaxLength(5)),
//	    "close_price": rules.Number(),
//	    "past_prices": rules.ListAll(rules.Number()),
//	    "address":     rules.Default(value.None{}),
//	})
//
//	v, err := rules.Validate(stock, doc)
//
// Validate returns the value with absent Default fields filled in, or a
// *ValidationError naming the path of the first violation, for example
// "$.past_prices[2]: expected Number, found String \"x\"".
//
// Objects are closed: fields not declared in the rule are rejected. Use
// OpenObject to let undeclared fields through unchecked.
package rules
