package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pubplot/pkg/cache"
	"github.com/matzehuels/pubplot/pkg/chart"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/dataset"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/observability"
	"github.com/matzehuels/pubplot/pkg/render"
	"github.com/matzehuels/pubplot/pkg/session"
	"github.com/matzehuels/pubplot/pkg/style"
)

// Runner executes renders with artifact caching.
//
// A Runner holds no per-render state; each Execute opens its own session
// and surface, so one Runner may serve concurrent requests.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Backend render.Backend
	TTL     time.Duration
}

// NewRunner fills in defaults: a NullCache, the DefaultKeyer, the default
// logger and the gonum backend.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, Backend: render.Gonum{}, TTL: cache.DefaultTTL}
}

// Execute renders req. Validation, session and resource errors are
// returned unchanged so callers can branch on their code. Cache failures
// are logged and never fail a render.
func (r *Runner) Execute(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, req.chart(), req.Formats)
	defer func() {
		hooks.OnRenderComplete(ctx, req.chart(), req.Formats, time.Since(start), err)
	}()

	renderer, err := chart.Lookup(req.chart())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "render")
	}
	s, err := session.New(renderer, req.Overrides,
		session.WithLogger(r.Logger),
		session.WithBackend(r.Backend),
		session.WithPolicy(req.policy()),
		session.WithContext(ctx),
	)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	formats := req.Formats
	if len(formats) == 0 {
		formats = []string{s.Config().Output().Format}
	}
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}

	res = &Result{
		Chart:             renderer.Name(),
		Artifacts:         make(map[string][]byte, len(formats)),
		ConfigFingerprint: s.Config().Fingerprint(),
	}
	ds := req.Dataset
	if req.Document != nil {
		ds, _ = req.Document.Dataset()
	}
	res.Stats.Groups, res.Stats.Samples = countSamples(ds)

	keys := r.keys(renderer.Name(), res.ConfigFingerprint, req.policy(), ds, formats)
	if keys != nil && !req.Refresh && r.lookup(ctx, keys, res) {
		// The key carries the policy, but a hit must still fail exactly
		// where a fresh render would.
		plan, perr := r.plan(renderer, s.Config(), req.policy())
		if perr != nil {
			return nil, perr
		}
		res.Warnings = plan.Warnings()
		res.CacheHit = true
		res.Stats.Total = time.Since(start)
		r.Logger.Debug("artifacts served from cache", "chart", res.Chart, "formats", formats)
		return res, nil
	}

	plotStart := time.Now()
	if req.Document != nil {
		err = s.PlotDocument(req.Document)
	} else {
		err = s.Plot(req.Dataset)
	}
	if err != nil {
		return nil, err
	}
	res.Stats.PlotTime = time.Since(plotStart)
	res.Warnings = s.Warnings()

	encodeStart := time.Now()
	for _, f := range formats {
		data, err := s.Artifact(f)
		if err != nil {
			return nil, err
		}
		res.Artifacts[f] = data
		if keys != nil {
			r.store(ctx, keys[f], data)
		}
	}
	res.Stats.EncodeTime = time.Since(encodeStart)
	res.Stats.Total = time.Since(start)

	r.Logger.Info("rendered chart",
		"chart", res.Chart,
		"groups", res.Stats.Groups,
		"formats", describe(formats),
		"warnings", len(res.Warnings),
		"duration", res.Stats.Total)
	return res, nil
}

// keys returns the cache key per format, or nil when the dataset cannot
// be hashed.
func (r *Runner) keys(chartName, cfgHash string, policy style.Policy, ds *dataset.Dataset, formats []string) map[string]string {
	if ds == nil {
		return nil
	}
	data, err := json.Marshal(ds)
	if err != nil {
		return nil
	}
	dataHash := cache.Hash(data)
	keys := make(map[string]string, len(formats))
	for _, f := range formats {
		keys[f] = r.Keyer.ArtifactKey(chartName, cache.ArtifactKeyOpts{
			ConfigHash: cfgHash,
			DataHash:   dataHash,
			Format:     f,
			Policy:     string(policy),
		})
	}
	return keys
}

// lookup fills res from the cache when every format is present.
func (r *Runner) lookup(ctx context.Context, keys map[string]string, res *Result) bool {
	hooks := observability.Cache()
	found := make(map[string][]byte, len(keys))
	for f, key := range keys {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		if !hit {
			hooks.OnCacheMiss(ctx, "artifact")
			return false
		}
		hooks.OnCacheHit(ctx, "artifact")
		found[f] = data
	}
	for f, data := range found {
		res.Artifacts[f] = data
	}
	return true
}

func (r *Runner) store(ctx context.Context, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "artifact", len(data))
}

func (r *Runner) plan(rd chart.Renderer, cfg *config.Node, policy style.Policy) (*style.Plan, error) {
	opts := []style.Option{style.WithChartDirectives(rd.Directives(cfg)...)}
	if policy != "" {
		opts = append(opts, style.WithPolicy(policy))
	}
	return style.Resolve(cfg, opts...)
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
