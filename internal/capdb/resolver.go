package capdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/intermix/internal/cachemanager"
	"github.com/zjrosen/intermix/internal/log"
	"github.com/zjrosen/intermix/internal/watcher"
)

// DefaultCacheTTL is how long a resolved database is reused.
const DefaultCacheTTL = 10 * time.Minute

// Resolver turns terminal type names into capability databases, consulting
// its sources in order and caching the result per name.
type Resolver struct {
	sources []Source
	ttl     time.Duration
	log     log.Sink
	cache   *cachemanager.ReadThroughCache[string, *Database, string]
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	sources []Source
	ttl     time.Duration
	log     log.Sink
	noCache bool
}

// WithSources replaces the default sources.
func WithSources(sources ...Source) ResolverOption {
	return func(o *resolverOptions) { o.sources = sources }
}

// WithCacheTTL sets how long resolved databases are cached.
func WithCacheTTL(ttl time.Duration) ResolverOption {
	return func(o *resolverOptions) { o.ttl = ttl }
}

// WithoutCache loads on every Resolve.
func WithoutCache() ResolverOption {
	return func(o *resolverOptions) { o.noCache = true }
}

// WithLogger sets the diagnostics sink.
func WithLogger(sink log.Sink) ResolverOption {
	return func(o *resolverOptions) { o.log = sink }
}

// NewResolver returns a resolver reading system terminfo first and falling
// back to built-in descriptions.
func NewResolver(opts ...ResolverOption) *Resolver {
	o := resolverOptions{
		sources: []Source{SystemSource{}, BuiltinSource{}},
		ttl:     DefaultCacheTTL,
		log:     log.Discard,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Resolver{sources: o.sources, ttl: o.ttl, log: o.log}
	store := cachemanager.NewInMemoryCacheManager[string, *Database]("capdb", o.ttl, cachemanager.DefaultCleanupInterval, o.log)
	r.cache = cachemanager.NewReadThroughCache[string, *Database, string](store, r.load, o.noCache)
	return r
}

// Resolve returns the database for term. An empty term means $TERM, and
// dumb when that is unset too.
func (r *Resolver) Resolve(ctx context.Context, term string) (*Database, error) {
	return r.cache.Get(ctx, TermName(term), TermName(term), r.ttl)
}

func (r *Resolver) load(_ context.Context, term string) (*Database, error) {
	var errs []error
	for _, src := range r.sources {
		entries, err := src.Load(term)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		db := New(term, entries)
		r.log.Info(log.CatCapDB, "capability database loaded", "term", term, "source", src.Name(), "caps", db.Len())
		return db, nil
	}

	err := fmt.Errorf("%w %q", ErrUnknownTerminal, term)
	if len(errs) > 0 {
		err = fmt.Errorf("resolving %q: %w", term, errors.Join(errs...))
	}
	r.log.ErrorErr(log.CatCapDB, "resolving terminal type", err, "term", term)
	return nil, err
}

// Invalidate forgets the cached databases of terms.
func (r *Resolver) Invalidate(ctx context.Context, terms ...string) error {
	return r.cache.Invalidate(ctx, terms...)
}

// Flush forgets every cached database.
func (r *Resolver) Flush(ctx context.Context) error {
	return r.cache.Flush(ctx)
}

// Watch invalidates cached databases whenever their description files in
// dirs change, until ctx is done. The returned channel is closed when the
// watch ends.
func (r *Resolver) Watch(ctx context.Context, dirs ...string) (<-chan struct{}, error) {
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}
	cfg := watcher.DefaultConfig(dirs...)
	cfg.Logger = r.log
	w, err := watcher.New(cfg)
	if err != nil {
		return nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() { _ = w.Stop() }()
		for {
			select {
			case <-ctx.Done():
				return
			case change := <-changes:
				if err := r.Invalidate(ctx, change.Terms...); err != nil {
					r.log.ErrorErr(log.CatCapDB, "invalidating capability cache", err)
					continue
				}
				r.log.Info(log.CatCapDB, "capability cache invalidated", "terms", change.Terms)
			}
		}
	}()
	return done, nil
}
