package hclust

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/hclust/cluster"
	"github.com/hupe1980/hclust/distance"
	"github.com/hupe1980/hclust/matrix"
	"github.com/hupe1980/hclust/resource"
	"golang.org/x/time/rate"
)

// Clusterer runs the clustering pipeline. It is safe for concurrent use; each
// Run works on its own matrix and cluster list.
type Clusterer struct {
	opts options
	runs atomic.Uint64
}

// New creates a Clusterer.
func New(optFns ...Option) *Clusterer {
	return &Clusterer{opts: applyOptions(optFns)}
}

// Run clusters ds with a Clusterer built from opts.
func Run(ctx context.Context, ds Dataset, cfg Config, opts ...Option) (*Result, error) {
	return New(opts...).Run(ctx, ds, cfg)
}

// Run validates cfg, builds the distance matrix for ds, merges clusters until
// a stop criterion holds and hands the result to the configured sinks.
//
// Fewer than two clustered items is not an error: the result holds one
// cluster per item.
func (c *Clusterer) Run(ctx context.Context, ds Dataset, cfg Config) (res *Result, err error) {
	start := time.Now()
	log := c.opts.logger.WithRun(c.runs.Add(1))
	merges := 0

	defer func() {
		err = translateError(err)
		clusters := 0
		if res != nil {
			clusters = len(res.Clusters)
		}
		c.opts.metricsCollector.RecordRun(clusters, time.Since(start), err)
		log.LogRun(ctx, clusters, merges, time.Since(start), err)
	}()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if (cfg.LoadMatrix != "" || cfg.SaveMatrix != "") && c.opts.matrixStore == nil {
		return nil, ErrNoMatrixStore
	}

	strat, err := cfg.strategy(ds)
	if err != nil {
		return nil, err
	}
	n := strat.Len()

	excluded := bitset.New(uint(n))
	for _, e := range cfg.Exclude {
		if e >= n {
			return nil, &ConfigError{Field: "exclude", Reason: fmt.Sprintf("item %d out of range [0,%d)", e, n)}
		}
		excluded.Set(uint(e))
	}

	rc := c.opts.resources
	if err := rc.AcquireRun(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleaseRun()

	items := sieve(n, cfg.Sieve)

	// The cluster list keeps a clone of the frame matrix as its distance cache.
	mem := 2 * resource.MatrixBytes(len(items))
	if err := rc.AcquireMemory(ctx, mem); err != nil {
		return nil, err
	}
	defer rc.ReleaseMemory(mem)

	m, err := c.buildMatrix(ctx, log, strat, items, cfg)
	if err != nil {
		return nil, err
	}
	for r, it := range items {
		if excluded.Test(uint(it)) {
			m.Ignore(r)
		}
	}

	list, err := cluster.New(m, strat, items)
	if err != nil {
		return nil, err
	}
	if _, err := list.Run(ctx, cfg.clusterConfig()); err != nil {
		return nil, err
	}
	history := list.Merges()
	merges = len(history)
	for _, mg := range history {
		log.LogMerge(ctx, mg.Kept, mg.Retired, mg.Distance, mg.Size)
		c.opts.metricsCollector.RecordMerge(mg.Distance)
	}
	list.Renumber()

	res, err = assemble(ctx, strat, list, items, excluded)
	if err != nil {
		return nil, err
	}
	res.Metric = strat.Kind()
	res.Linkage = cfg.Linkage
	res.Merges = history
	res.Elapsed = time.Since(start)

	for _, s := range c.opts.sinks {
		if err := s.Write(ctx, ds, res); err != nil {
			return nil, fmt.Errorf("sink: %w", err)
		}
	}
	return res, nil
}

// sieve returns every step-th item index below n.
func sieve(n, step int) []int {
	step = max(step, 1)
	items := make([]int, 0, (n+step-1)/step)
	for i := 0; i < n; i += step {
		items = append(items, i)
	}
	return items
}

func (c *Clusterer) buildMatrix(ctx context.Context, log *Logger, strat *distance.Strategy, items []int, cfg Config) (*matrix.Triangle, error) {
	if cfg.LoadMatrix != "" {
		m, err := c.loadMatrix(ctx, cfg.LoadMatrix)
		log.LogMatrix(ctx, "load", cfg.LoadMatrix, err)
		if err != nil {
			return nil, err
		}
		if m.Nrows() != len(items) {
			return nil, &ErrDimensionMismatch{Expected: len(items), Actual: m.Nrows(), What: "loaded matrix rows"}
		}
		return m, nil
	}

	m, err := matrix.New(len(items))
	if err != nil {
		return nil, err
	}

	if len(items) > 1 {
		popts := []distance.PairwiseOption{distance.WithWorkers(cfg.Workers)}
		if c.opts.progressInterval > 0 {
			every := &rate.Sometimes{Interval: c.opts.progressInterval}
			popts = append(popts, distance.WithProgress(func(done, total int) {
				every.Do(func() { log.LogProgress(ctx, done, total) })
			}))
		}

		start := time.Now()
		err := strat.PairwiseDist(ctx, m, items, popts...)
		c.opts.metricsCollector.RecordPairwise(len(items), time.Since(start), err)
		log.LogPairwise(ctx, len(items), time.Since(start), err)
		if err != nil {
			return nil, err
		}
	}

	if cfg.SaveMatrix != "" {
		err := c.saveMatrix(ctx, cfg.SaveMatrix, m, cfg.Compression)
		log.LogMatrix(ctx, "save", cfg.SaveMatrix, err)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (c *Clusterer) loadMatrix(ctx context.Context, name string) (*matrix.Triangle, error) {
	blob, err := c.opts.matrixStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	r, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return matrix.Decode(r)
}

func (c *Clusterer) saveMatrix(ctx context.Context, name string, m *matrix.Triangle, compression string) error {
	comp, err := matrix.ParseCompression(compression)
	if err != nil {
		return err
	}

	store := c.opts.matrixStore
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := matrix.Encode(resource.NewRateLimitedWriter(ctx, w, c.opts.resources), m, comp); err != nil {
		return errors.Join(err, w.Close(), store.Delete(ctx, name))
	}
	return w.Close()
}

// assemble turns a renumbered list into a Result. Items left out by sieving
// join the cluster whose centroid is closest, ties going to the lower
// cluster number.
func assemble(ctx context.Context, strat *distance.Strategy, list *cluster.List, items []int, excluded *bitset.BitSet) (*Result, error) {
	n := strat.Len()
	stats, err := list.Summary()
	if err != nil {
		return nil, err
	}

	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	inMatrix := bitset.New(uint(n))
	for r, num := range list.Assignments() {
		assign[items[r]] = num
		inMatrix.Set(uint(items[r]))
	}

	if len(stats) > 0 && len(items) < n {
		centroids := make([]*distance.Centroid, len(stats))
		for k, st := range stats {
			cen, err := list.Centroid(st.ID)
			if err != nil {
				return nil, err
			}
			centroids[k] = cen
		}
		for i := range n {
			if inMatrix.Test(uint(i)) || excluded.Test(uint(i)) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			best, bestDist := -1, 0.0
			for k, cen := range centroids {
				d, err := strat.FrameCentroidDist(i, cen)
				if err != nil {
					return nil, err
				}
				if best < 0 || d < bestDist {
					best, bestDist = k, d
				}
			}
			assign[i] = stats[best].Number
		}
	}

	res := &Result{
		Items:       n,
		Clustered:   items,
		Assignments: assign,
		Clusters:    make([]ClusterInfo, len(stats)),
	}
	assigned := 0
	for i, num := range assign {
		if num < 0 {
			continue
		}
		res.Clusters[num].Members = append(res.Clusters[num].Members, i)
		assigned++
	}
	for _, st := range stats {
		ci := &res.Clusters[st.Number]
		ci.Number = st.Number
		ci.Size = len(ci.Members)
		if assigned > 0 {
			ci.Fraction = float64(ci.Size) / float64(assigned)
		}
		ci.AvgDist = st.AvgDist
		ci.StdDev = st.StdDev
		ci.Representative = st.Representative
		ci.AvgCentroidDist = st.AvgCentroidDist
	}
	return res, nil
}
