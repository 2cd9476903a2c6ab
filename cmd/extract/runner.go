package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/3lfar7/tripadvparser/collect"
	"github.com/3lfar7/tripadvparser/config"
	"github.com/3lfar7/tripadvparser/fetch"
	"github.com/3lfar7/tripadvparser/storage"
	"go.uber.org/zap"
)

type options struct {
	fetcher  fetch.Fetcher
	storage  storage.Storage
	logger   *zap.Logger
	out      io.Writer
	each     bool
	form     url.Values
	disabled []string
	workers  int
}

var defaultOptions = options{
	storage: storage.Empty{},
	logger:  zap.NewNop(),
	out:     io.Discard,
	workers: 1,
}

type Option func(opts *options)

func WithFetcher(f fetch.Fetcher) Option {
	return func(opts *options) {
		opts.fetcher = f
	}
}

func WithStorage(s storage.Storage) Option {
	return func(opts *options) {
		opts.storage = s
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithOutput(w io.Writer) Option {
	return func(opts *options) {
		opts.out = w
	}
}

// WithEach finalizes a record after every page instead of once at the end.
func WithEach(each bool) Option {
	return func(opts *options) {
		opts.each = each
	}
}

// WithForm switches remote pages to form POST.
func WithForm(form url.Values) Option {
	return func(opts *options) {
		opts.form = form
	}
}

func WithDisabled(fields ...string) Option {
	return func(opts *options) {
		opts.disabled = fields
	}
}

// WithWorkers sets how many pages are extracted at once in each mode.
func WithWorkers(n int) Option {
	return func(opts *options) {
		opts.workers = n
	}
}

// Runner feeds pages into a session and stores the finalized records.
type Runner struct {
	options
	cfg     *config.Config
	schema  *collect.Schema
	session *collect.Session
	fields  []string
}

func NewRunner(cfg *config.Config, opts ...Option) (*Runner, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.fetcher == nil {
		options.fetcher = fetch.New(fetch.WithLogger(options.logger))
	}

	schema, err := cfg.Schema()
	if err != nil {
		return nil, err
	}

	var fields []string
	for _, f := range schema.Fields() {
		fields = append(fields, f.Name)
	}

	for _, name := range options.disabled {
		if _, ok := schema.Field(name); !ok {
			return nil, fmt.Errorf("unknown field %q", name)
		}
	}

	r := &Runner{
		options: options,
		cfg:     cfg,
		schema:  schema,
		fields:  fields,
	}
	r.session = r.newSession()

	return r, nil
}

func (r *Runner) newSession() *collect.Session {
	s := collect.NewSession(r.schema, collect.WithLogger(r.logger.Named("session")))
	s.Disable(r.disabled...)

	return s
}

// Run feeds every source in order. Remote sources (http, https) are fetched,
// anything else is read as a local file.
func (r *Runner) Run(ctx context.Context, sources []string) error {
	if r.each && r.workers > 1 {
		return r.runParallel(ctx, sources)
	}

	var fed []string

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.feed(ctx, r.session, src); err != nil {
			if !r.skip(err) {
				return fmt.Errorf("%s:%w", src, err)
			}
			r.logger.Error("page skipped", zap.String("source", src), zap.Error(err))
			continue
		}
		fed = append(fed, src)

		if r.each {
			if err := r.finalize(src); err != nil {
				return err
			}
		}
	}

	if r.each {
		return nil
	}
	if len(fed) == 0 {
		return errors.New("no page was collected")
	}

	return r.finalize(fed[0])
}

func (r *Runner) feed(ctx context.Context, session *collect.Session, src string) error {
	body, err := r.load(ctx, src)
	if err != nil {
		return err
	}

	return session.Feed(bytes.NewReader(body))
}

func (r *Runner) load(ctx context.Context, src string) ([]byte, error) {
	if isRemote(src) {
		if r.form != nil {
			return r.fetcher.Post(ctx, src, r.form)
		}
		return r.fetcher.Get(ctx, src)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (r *Runner) finalize(src string) error {
	result, err := r.session.Finalize()
	if err != nil {
		if !r.skip(err) {
			return fmt.Errorf("%s:%w", src, err)
		}
		r.logger.Error("record dropped", zap.String("source", src), zap.Error(err))
		return nil
	}

	return r.emit(src, result)
}

// emit prints result and hands it to the storage.
func (r *Runner) emit(src string, result collect.Result) error {
	if err := encode(r.out, src, result); err != nil {
		return err
	}

	rec := storage.NewRecord(r.cfg.Storage.Table, src, r.fields, result)
	if err := r.storage.Save(rec); err != nil {
		return fmt.Errorf("save record:%w", err)
	}

	return nil
}

// skip reports whether err is an extraction error and errors are to be
// skipped. Fetch and IO errors are never skipped.
func (r *Runner) skip(err error) bool {
	if !r.cfg.SkipErrors {
		return false
	}

	var (
		fe *collect.FieldError
		se *collect.SchemaViolationError
	)
	if errors.As(err, &fe) {
		r.logger.Error("field failed", zap.String("field", fe.Field), zap.Error(err))
		return true
	}

	return errors.As(err, &se)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
