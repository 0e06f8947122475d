package parser

import (
	"fmt"
	"os"

	rdlerrors "mercator-hq/rdl/pkg/rdl/errors"
	"mercator-hq/rdl/pkg/rdl/value"
)

const (
	// DefaultMaxDepth bounds list and object nesting.
	DefaultMaxDepth = 128
	// DefaultMaxSize bounds the input size in bytes (10MB).
	DefaultMaxSize = 10 * 1024 * 1024
	// DefaultContextLines is the number of source lines shown around an error.
	DefaultContextLines = 1
)

// Parser turns RDL source text into a value.Value. A Parser holds only
// configuration and may be shared between goroutines.
type Parser struct {
	maxDepth     int
	maxSize      int64
	contextLines int
	sourceName   string
}

// NewParser creates a new parser with default limits.
func NewParser() *Parser {
	return &Parser{
		maxDepth:     DefaultMaxDepth,
		maxSize:      DefaultMaxSize,
		contextLines: DefaultContextLines,
	}
}

// WithMaxDepth sets the maximum list/object nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// WithMaxSize sets the maximum input size in bytes.
func (p *Parser) WithMaxSize(size int64) *Parser {
	p.maxSize = size
	return p
}

// WithContextLines sets how many lines around an error are attached to it.
// Zero disables context.
func (p *Parser) WithContextLines(n int) *Parser {
	p.contextLines = n
	return p
}

// WithSourceName sets the name reported in error locations.
func (p *Parser) WithSourceName(name string) *Parser {
	p.sourceName = name
	return p
}

// Parse parses exactly one value from src. Any failure is a
// *rdlerrors.ParseError.
func (p *Parser) Parse(src string) (value.Value, error) {
	return p.parse(src, p.sourceName)
}

// ParseBytes parses a document held in memory.
func (p *Parser) ParseBytes(data []byte) (value.Value, error) {
	return p.parse(string(data), p.sourceName)
}

// ParseFile reads and parses the document at path.
func (p *Parser) ParseFile(path string) (value.Value, error) {
	data, err := p.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.parse(string(data), path)
}

// ReadFile reads the document at path, checking its size before reading.
// Failures are *rdlerrors.ParseError values of kind io.
func (p *Parser) ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &rdlerrors.ParseError{
			Kind:     rdlerrors.KindIO,
			Message:  fmt.Sprintf("failed to access file: %v", err),
			Location: rdlerrors.Location{Source: path},
			Err:      err,
		}
	}
	if info.Size() > p.maxSize {
		return nil, tooLarge(path, info.Size(), p.maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &rdlerrors.ParseError{
			Kind:     rdlerrors.KindIO,
			Message:  fmt.Sprintf("failed to read file: %v", err),
			Location: rdlerrors.Location{Source: path},
			Err:      err,
		}
	}
	return data, nil
}

// ParseNamed parses src reporting errors against name instead of the
// configured source name.
func (p *Parser) ParseNamed(name, src string) (value.Value, error) {
	return p.parse(src, name)
}

func (p *Parser) parse(src, sourceName string) (value.Value, error) {
	if int64(len(src)) > p.maxSize {
		return nil, tooLarge(sourceName, int64(len(src)), p.maxSize)
	}

	d := newDecoder(src, p.maxDepth)
	v, err := d.document()
	if err != nil {
		pe := err.(*rdlerrors.ParseError)
		pe.WithSource(sourceName)
		if p.contextLines > 0 {
			rdlerrors.WithContext(pe, src, p.contextLines)
		}
		return nil, pe
	}
	return v, nil
}

func tooLarge(source string, size, limit int64) *rdlerrors.ParseError {
	return &rdlerrors.ParseError{
		Kind:     rdlerrors.KindIO,
		Message:  fmt.Sprintf("input size %d exceeds maximum %d bytes", size, limit),
		Location: rdlerrors.Location{Source: source},
		Err:      rdlerrors.ErrTooLarge,
	}
}

// Parse parses src with default settings.
func Parse(src string) (value.Value, error) {
	return NewParser().Parse(src)
}

// ParseFile parses the file at path with default settings.
func ParseFile(path string) (value.Value, error) {
	return NewParser().ParseFile(path)
}
