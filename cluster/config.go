package cluster

import (
	"fmt"
	"strings"
)

// Linkage defines how the distance from a merged cluster to a third cluster
// is derived from the two pre-merge distances.
type Linkage int

const (
	// SingleLinkage keeps the smaller distance.
	SingleLinkage Linkage = iota
	// AverageLinkage takes the size-weighted mean.
	AverageLinkage
	// CompleteLinkage keeps the larger distance.
	CompleteLinkage
)

func (l Linkage) String() string {
	switch l {
	case SingleLinkage:
		return "single"
	case AverageLinkage:
		return "average"
	case CompleteLinkage:
		return "complete"
	default:
		return fmt.Sprintf("Unknown(%d)", int(l))
	}
}

// ParseLinkage returns the Linkage for a name as printed by String.
func ParseLinkage(name string) (Linkage, error) {
	switch strings.ToLower(name) {
	case "single", "singlelink":
		return SingleLinkage, nil
	case "average", "averagelink":
		return AverageLinkage, nil
	case "complete", "completelink":
		return CompleteLinkage, nil
	default:
		return 0, fmt.Errorf("cluster: unknown linkage %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Linkage) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Linkage) UnmarshalText(b []byte) error {
	v, err := ParseLinkage(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// update returns the distance from the union of clusters a and b (of sizes na
// and nb) to a third cluster.
func (l Linkage) update(da, db float64, na, nb int) float64 {
	switch l {
	case CompleteLinkage:
		return max(da, db)
	case AverageLinkage:
		return (float64(na)*da + float64(nb)*db) / float64(na+nb)
	default:
		return min(da, db)
	}
}

// Config controls one clustering run. It is passed by value and never
// modified by the List.
type Config struct {
	Linkage Linkage
	// Epsilon > 0 refuses merges of clusters farther apart than Epsilon.
	Epsilon float64
	// TargetClusters > 0 stops merging once that many clusters remain.
	TargetClusters int
}
