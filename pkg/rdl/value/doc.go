// Package value defines the in-memory form of a parsed RDL document.
//
// A Value is one of Integer, Float, String, Boolean, None, List or Object.
// Objects keep their fields sorted by name with no duplicates, so two
// documents that differ only in field order produce equal values.
//
// Format and Indent print a value back as RDL text; ToNative, FromNative
// and the MarshalJSON methods bridge to plain Go values and JSON.
package value
