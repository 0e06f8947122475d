package checker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history/recorder"
	rdlerrors "mercator-hq/rdl/pkg/rdl/errors"
	"mercator-hq/rdl/pkg/rdl/parser"
	"mercator-hq/rdl/pkg/rdl/rules"
	"mercator-hq/rdl/pkg/rdl/value"
	"mercator-hq/rdl/pkg/telemetry/logging"
	"mercator-hq/rdl/pkg/telemetry/metrics"
	"mercator-hq/rdl/pkg/telemetry/tracing"
)

// Sources reported in Request.Source.
const (
	SourceCLI   = "cli"
	SourceHTTP  = "http"
	SourceWatch = "watch"
	SourceGit   = "git"
)

// Options configures a Checker. Every field is optional.
type Options struct {
	Parser config.ParserConfig

	// Resolve maps a document name to a schema name when the request does
	// not name one. Typically (*config.Config).SchemaFor.
	Resolve func(document string) string

	Logger   *logging.Logger
	Metrics  *metrics.Collector
	Tracer   *tracing.Tracer
	Recorder *recorder.Recorder
}

// Request is one document to check.
type Request struct {
	// Document names the input in errors, logs and history. When Content
	// is nil it is also the path the document is read from.
	Document string
	Content  []byte

	// Schema names the registered schema to validate against. Empty means
	// resolve it from the document name; if that yields nothing the
	// document is only parsed.
	Schema string

	// ParseOnly skips validation even when a schema would resolve.
	ParseOnly bool

	Source string
}

// Result is the outcome of a check. Exactly one of ParseError and
// ValidationError is set when Valid is false.
type Result struct {
	ID        string
	Document  string
	Schema    string
	Source    string
	CheckedAt time.Time
	Duration  time.Duration
	Size      int

	// Value is the validated value, with defaults filled in, or the parsed
	// value when no schema applied.
	Value value.Value
	Valid bool

	ParseError      *rdlerrors.ParseError
	ValidationError *rules.ValidationError
}

// Err returns the failure as an error, or nil for a valid document.
func (r *Result) Err() error {
	switch {
	case r.ParseError != nil:
		return r.ParseError
	case r.ValidationError != nil:
		return r.ValidationError
	}
	return nil
}

// Checker parses and validates documents.
type Checker struct {
	registry *Registry
	parser   *parser.Parser
	resolve  func(string) string
	logger   *logging.Logger
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	recorder *recorder.Recorder
}

// New creates a checker over registry.
func New(registry *Registry, opts Options) *Checker {
	p := parser.NewParser()
	if opts.Parser.MaxDepth > 0 {
		p.WithMaxDepth(opts.Parser.MaxDepth)
	}
	if opts.Parser.MaxSize > 0 {
		p.WithMaxSize(opts.Parser.MaxSize)
	}
	if opts.Parser.ContextLines != nil {
		p.WithContextLines(*opts.Parser.ContextLines)
	}

	c := &Checker{
		registry: registry,
		parser:   p,
		resolve:  opts.Resolve,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		recorder: opts.Recorder,
	}
	if c.logger == nil {
		c.logger = logging.Nop()
	}
	if c.tracer == nil {
		c.tracer = tracing.Nop()
	}
	c.logger = c.logger.WithComponent("checker")
	c.metrics.SetSchemasLoaded(registry.Count())
	return c
}

// Registry returns the schema registry.
func (c *Checker) Registry() *Registry {
	return c.registry
}

// SchemaFor returns the schema name a request resolves to.
func (c *Checker) SchemaFor(req Request) string {
	if req.ParseOnly {
		return ""
	}
	if req.Schema != "" {
		return req.Schema
	}
	if c.resolve != nil {
		return c.resolve(req.Document)
	}
	return ""
}

// Check parses the request's document and validates it against its schema.
// Document problems are reported in the Result; the error return is for
// requests that cannot be checked at all (unknown schema, cancelled
// context).
func (c *Checker) Check(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		ID:        uuid.New().String(),
		Document:  req.Document,
		Schema:    c.SchemaFor(req),
		Source:    req.Source,
		CheckedAt: time.Now(),
	}

	var sch *Schema
	if res.Schema != "" {
		var ok bool
		if sch, ok = c.registry.Get(res.Schema); !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownSchema, res.Schema)
		}
	}

	ctx = logging.WithRunID(ctx, res.ID)
	ctx = logging.WithDocument(ctx, req.Document)
	if res.Schema != "" {
		ctx = logging.WithSchema(ctx, res.Schema)
	}

	ctx, span := c.tracer.Start(ctx, "rdl.check", trace.WithAttributes(
		tracing.AttrRunID.String(res.ID),
		tracing.AttrSource.String(req.Source),
	))
	defer span.End()
	if traceID := tracing.TraceID(ctx); traceID != "" {
		ctx = logging.WithTraceID(ctx, traceID)
	}

	content := req.Content
	if content == nil {
		data, err := c.parser.ReadFile(req.Document)
		if err != nil {
			pe, _ := rdlerrors.AsParseError(err)
			res.ParseError = pe
		}
		content = data
	}
	res.Size = len(content)
	span.SetAttributes(tracing.DocumentAttributes(req.Document, res.Schema, res.Size)...)

	if res.ParseError == nil {
		res.Value, res.ParseError = c.parse(ctx, req.Document, content)
	}
	if res.ParseError == nil && sch != nil {
		res.Value, res.ValidationError = c.validate(ctx, sch, res.Value)
	}

	res.Valid = res.ParseError == nil && res.ValidationError == nil
	res.Duration = time.Since(res.CheckedAt)
	span.SetAttributes(tracing.AttrValid.Bool(res.Valid))

	c.report(ctx, res, span)
	c.record(ctx, res, content)
	return res, nil
}

func (c *Checker) parse(ctx context.Context, name string, content []byte) (value.Value, *rdlerrors.ParseError) {
	_, span := c.tracer.Start(ctx, "rdl.parse")
	defer span.End()

	start := time.Now()
	v, err := c.parser.ParseNamed(name, string(content))
	c.metrics.RecordParse(time.Since(start), len(content))
	if err != nil {
		pe, ok := rdlerrors.AsParseError(err)
		if !ok {
			pe = &rdlerrors.ParseError{Kind: rdlerrors.KindIO, Message: err.Error(), Err: err}
		}
		tracing.SetParseFailure(span, string(pe.Kind), pe.Location.Offset)
		tracing.SetError(span, pe)
		return nil, pe
	}
	return v, nil
}

func (c *Checker) validate(ctx context.Context, sch *Schema, v value.Value) (value.Value, *rules.ValidationError) {
	_, span := c.tracer.Start(ctx, "rdl.validate", trace.WithAttributes(tracing.AttrSchema.String(sch.Name)))
	defer span.End()

	start := time.Now()
	out, err := rules.Validate(sch.Rule, v)
	c.metrics.RecordValidate(sch.Name, time.Since(start))
	if err != nil {
		ve, ok := rules.AsValidationError(err)
		if !ok {
			ve = &rules.ValidationError{Message: err.Error(), Err: err}
		}
		tracing.SetValidationFailure(span, ValidationKind(ve), ve.Path.String())
		tracing.SetError(span, ve)
		return v, ve
	}
	return out, nil
}

func (c *Checker) report(ctx context.Context, res *Result, span trace.Span) {
	switch {
	case res.ParseError != nil:
		kind := string(res.ParseError.Kind)
		c.metrics.RecordCheck(res.Schema, metrics.OutcomeParseError)
		c.metrics.RecordError(kind)
		tracing.SetParseFailure(span, kind, res.ParseError.Location.Offset)
		c.logger.InfoContext(ctx, "document rejected",
			"valid", false,
			"error_kind", kind,
			"error", res.ParseError.Short(),
			"duration_ms", res.Duration.Milliseconds(),
		)
	case res.ValidationError != nil:
		kind := ValidationKind(res.ValidationError)
		c.metrics.RecordCheck(res.Schema, metrics.OutcomeValidationError)
		c.metrics.RecordError(kind)
		tracing.SetValidationFailure(span, kind, res.ValidationError.Path.String())
		c.logger.InfoContext(ctx, "document rejected",
			"valid", false,
			"error_kind", kind,
			"error", res.ValidationError.Error(),
			"duration_ms", res.Duration.Milliseconds(),
		)
	default:
		c.metrics.RecordCheck(res.Schema, metrics.OutcomeValid)
		c.logger.DebugContext(ctx, "document accepted",
			"valid", true,
			"size", res.Size,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}
}

func (c *Checker) record(ctx context.Context, res *Result, content []byte) {
	if c.recorder == nil {
		return
	}
	_, err := c.recorder.Record(ctx, recorder.Observation{
		ID:        res.ID,
		Document:  res.Document,
		Source:    res.Source,
		Schema:    res.Schema,
		Content:   content,
		CheckedAt: res.CheckedAt,
		Duration:  res.Duration,
		Err:       res.Err(),
	})
	if err != nil {
		c.logger.WarnContext(ctx, "check not recorded", "error", err)
	}
}

// CheckAll checks reqs with at most workers checks in flight and returns
// the results in request order. A request that cannot be checked leaves a
// nil result and contributes to the joined error.
func (c *Checker) CheckAll(ctx context.Context, reqs []Request, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]*Result, len(reqs))
	errs := make([]error, len(reqs))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, req := range reqs {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		}
		wg.Go(func() {
			defer func() { <-sem }()
			results[i], errs[i] = c.Check(ctx, req)
		})
	}
	wg.Wait()
	return results, errors.Join(errs...)
}

// ValidationKind names the violation class of a validation error, for
// metrics and span attributes.
func ValidationKind(ve *rules.ValidationError) string {
	switch ve.Err {
	case rules.ErrTypeMismatch:
		return "type_mismatch"
	case rules.ErrMissingField:
		return "missing_field"
	case rules.ErrUnexpectedField:
		return "unexpected_field"
	case rules.ErrNoAlternative:
		return "no_alternative"
	case rules.ErrConstraint:
		return "constraint"
	}
	return "validation"
}

// HealthCheck reports unhealthy when no schema is loaded although some
// are expected.
func (c *Checker) HealthCheck(expected int) func(context.Context) error {
	return func(context.Context) error {
		if n := c.registry.Count(); n < expected {
			return fmt.Errorf("%d of %d schemas loaded", n, expected)
		}
		return nil
	}
}

// ReloadSchemas reloads the file schemas. On failure the previous set
// stays active.
func (c *Checker) ReloadSchemas(files map[string]string) error {
	if err := c.registry.Load(files); err != nil {
		c.logger.Error("schema reload failed", "error", err)
		return err
	}
	c.metrics.SetSchemasLoaded(c.registry.Count())
	c.logger.Info("schemas loaded",
		"count", c.registry.Count(),
		"version", c.registry.Version(),
	)
	return nil
}
