package cluster

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/hclust/distance"
	"github.com/hupe1980/hclust/matrix"
)

var (
	// ErrRowMismatch is returned when the item list and matrix disagree in size.
	ErrRowMismatch = errors.New("cluster: item count does not match matrix rows")
	// ErrUnknownCluster is returned for ids that do not name a live cluster.
	ErrUnknownCluster = errors.New("cluster: unknown cluster")
)

// Metric supplies centroids and centroid distances. *distance.Strategy
// implements it.
type Metric interface {
	CalculateCentroid(c *distance.Centroid, items []int) error
	FrameCentroidDist(item int, c *distance.Centroid) (float64, error)
	CentroidDist(a, b *distance.Centroid) (float64, error)
}

// Merge records one merge step.
type Merge struct {
	// Kept is the surviving cluster id, Retired the id merged into it.
	Kept, Retired int
	Distance      float64
	// Size is the member count of the merged cluster.
	Size int
}

// Cluster is a read-only view of one live cluster.
type Cluster struct {
	ID int
	// Number is the final cluster number assigned by Renumber, or -1.
	Number int
	// Members holds item indices in ascending matrix row order.
	Members []int
}

// Size returns the number of members.
func (c Cluster) Size() int { return len(c.Members) }

type record struct {
	members  *roaring.Bitmap
	centroid *distance.Centroid
	fresh    bool
	number   int
}

// List is the evolving partition of the matrix rows.
//
// A List is not safe for concurrent use.
type List struct {
	frameDist *matrix.Triangle
	cache     *matrix.Triangle
	metric    Metric
	items     []int

	records []record
	live    *roaring.Bitmap
	retired *roaring.Bitmap

	merges []Merge
	order  []int
}

// New creates a List with one singleton cluster per non-ignored row of
// frameDist. Row r stands for item items[r]. frameDist must be complete and is
// not modified.
func New(frameDist *matrix.Triangle, metric Metric, items []int) (*List, error) {
	if frameDist.Nrows() != len(items) {
		return nil, fmt.Errorf("%w: %d items, %d rows", ErrRowMismatch, len(items), frameDist.Nrows())
	}
	if !frameDist.Complete() {
		return nil, matrix.ErrIncomplete
	}

	l := &List{
		frameDist: frameDist,
		cache:     frameDist.Clone(),
		metric:    metric,
		items:     slices.Clone(items),
		records:   make([]record, len(items)),
		live:      roaring.New(),
		retired:   roaring.New(),
	}
	for r := range l.records {
		l.records[r].number = -1
		if frameDist.Ignored(r) {
			continue
		}
		l.records[r].members = roaring.BitmapOf(uint32(r))
		l.live.Add(uint32(r))
	}
	return l, nil
}

// Len returns the number of live clusters.
func (l *List) Len() int { return int(l.live.GetCardinality()) }

// Rows returns the number of matrix rows, including ignored ones.
func (l *List) Rows() int { return len(l.items) }

// Item returns the item index of matrix row r.
func (l *List) Item(r int) int { return l.items[r] }

// Retired reports whether id was merged into another cluster.
func (l *List) Retired(id int) bool {
	return id >= 0 && id < len(l.records) && l.retired.Contains(uint32(id))
}

// Distance returns the cached distance between two live clusters.
func (l *List) Distance(a, b int) (float64, error) {
	if err := l.checkLive(a); err != nil {
		return 0, err
	}
	if err := l.checkLive(b); err != nil {
		return 0, err
	}
	return l.cache.GetElement(a, b)
}

func (l *List) checkLive(id int) error {
	if id < 0 || id >= len(l.records) || !l.live.Contains(uint32(id)) {
		return fmt.Errorf("%w: %d", ErrUnknownCluster, id)
	}
	return nil
}

// MergeClosest merges the two closest live clusters. It reports false, and
// changes nothing, when fewer than two clusters are live or the closest pair
// is farther apart than cfg.Epsilon. Ties resolve to the lowest pair of ids.
func (l *List) MergeClosest(cfg Config) (Merge, bool, error) {
	if l.live.GetCardinality() < 2 {
		return Merge{}, false, nil
	}

	d, keep, drop, ok := l.cache.FindMin()
	if !ok {
		return Merge{}, false, nil
	}
	// The cache stores float32, so epsilon is compared at that precision.
	if cfg.Epsilon > 0 && d > float64(float32(cfg.Epsilon)) {
		return Merge{}, false, nil
	}

	kept, gone := &l.records[keep], &l.records[drop]
	nk, nd := int(kept.members.GetCardinality()), int(gone.members.GetCardinality())

	it := l.live.Iterator()
	for it.HasNext() {
		k := int(it.Next())
		if k == keep || k == drop {
			continue
		}
		v := cfg.Linkage.update(l.cache.At(keep, k), l.cache.At(drop, k), nk, nd)
		if err := l.cache.SetElement(keep, k, v); err != nil {
			return Merge{}, false, err
		}
	}

	kept.members.Or(gone.members)
	kept.fresh = false
	gone.members = nil
	gone.centroid = nil
	gone.fresh = false

	l.cache.Ignore(drop)
	l.live.Remove(uint32(drop))
	l.retired.Add(uint32(drop))
	l.order = nil

	m := Merge{Kept: keep, Retired: drop, Distance: d, Size: nk + nd}
	l.merges = append(l.merges, m)
	return m, true, nil
}

// Run merges until cfg.TargetClusters clusters remain, the next merge is
// refused by cfg.Epsilon, or one cluster is left. It returns the number of
// merges performed. The target is checked before each merge, so a target of
// at least the current cluster count merges nothing.
func (l *List) Run(ctx context.Context, cfg Config) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		live := l.Len()
		if live <= 1 || (cfg.TargetClusters > 0 && live <= cfg.TargetClusters) {
			return n, nil
		}
		_, ok, err := l.MergeClosest(cfg)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}

// Merges returns the merge history in order.
func (l *List) Merges() []Merge { return slices.Clone(l.merges) }

// Renumber assigns final cluster numbers: largest cluster first, equal sizes
// by ascending id. Calling it again yields the same numbers.
func (l *List) Renumber() {
	ids := make([]int, 0, l.Len())
	it := l.live.Iterator()
	for it.HasNext() {
		ids = append(ids, int(it.Next()))
	}
	slices.SortStableFunc(ids, func(a, b int) int {
		sa := l.records[a].members.GetCardinality()
		sb := l.records[b].members.GetCardinality()
		if c := cmp.Compare(sb, sa); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	for n, id := range ids {
		l.records[id].number = n
	}
	l.order = ids
}

// Renumbered reports whether the current partition has final numbers.
func (l *List) Renumbered() bool { return l.order != nil || l.Len() == 0 }

// Clusters yields the live clusters, in final number order after Renumber and
// in id order before. The sequence can be ranged over repeatedly.
func (l *List) Clusters() iter.Seq[Cluster] {
	return func(yield func(Cluster) bool) {
		for _, id := range l.ids() {
			if !yield(l.view(id)) {
				return
			}
		}
	}
}

func (l *List) ids() []int {
	if l.order != nil {
		return l.order
	}
	ids := make([]int, 0, l.Len())
	it := l.live.Iterator()
	for it.HasNext() {
		ids = append(ids, int(it.Next()))
	}
	return ids
}

// Cluster returns the view of the live cluster id.
func (l *List) Cluster(id int) (Cluster, error) {
	if err := l.checkLive(id); err != nil {
		return Cluster{}, err
	}
	return l.view(id), nil
}

func (l *List) view(id int) Cluster {
	rec := &l.records[id]
	number := -1
	if l.order != nil {
		number = rec.number
	}
	return Cluster{ID: id, Number: number, Members: l.memberItems(rec)}
}

func (l *List) memberItems(rec *record) []int {
	out := make([]int, 0, rec.members.GetCardinality())
	it := rec.members.Iterator()
	for it.HasNext() {
		out = append(out, l.items[it.Next()])
	}
	return out
}

// Centroid returns the centroid of cluster id, computing it if membership has
// changed since it was last requested. The result is owned by the List.
func (l *List) Centroid(id int) (*distance.Centroid, error) {
	if err := l.checkLive(id); err != nil {
		return nil, err
	}
	rec := &l.records[id]
	if rec.fresh {
		return rec.centroid, nil
	}
	if rec.centroid == nil {
		rec.centroid = &distance.Centroid{}
	}
	if err := l.metric.CalculateCentroid(rec.centroid, l.memberItems(rec)); err != nil {
		return nil, err
	}
	rec.fresh = true
	return rec.centroid, nil
}

// Representative returns the member item closest to the cluster centroid.
// Ties resolve to the lowest item index.
func (l *List) Representative(id int) (int, error) {
	c, err := l.Centroid(id)
	if err != nil {
		return -1, err
	}
	best, bestDist := -1, 0.0
	for _, item := range l.memberItems(&l.records[id]) {
		d, err := l.metric.FrameCentroidDist(item, c)
		if err != nil {
			return -1, err
		}
		if best < 0 || d < bestDist || (d == bestDist && item < best) {
			best, bestDist = item, d
		}
	}
	return best, nil
}

// Assignments returns the final cluster number of every matrix row, or -1
// for ignored rows. It renumbers first if needed.
func (l *List) Assignments() []int {
	if l.order == nil {
		l.Renumber()
	}
	out := make([]int, len(l.records))
	for r := range out {
		out[r] = -1
	}
	for _, id := range l.order {
		rec := &l.records[id]
		it := rec.members.Iterator()
		for it.HasNext() {
			out[it.Next()] = rec.number
		}
	}
	return out
}
