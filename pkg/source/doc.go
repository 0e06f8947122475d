// Package source holds the places documents come from besides explicit
// CLI arguments and HTTP bodies.
//
// The watch subpackage follows directories with fsnotify and reports
// debounced batches of changed files. The git subpackage keeps a local
// clone of a document repository up to date with go-git.
package source
