package hclust

import (
	"fmt"
	"os"
	"slices"

	"github.com/hupe1980/hclust/cluster"
	"github.com/hupe1980/hclust/distance"
	"github.com/hupe1980/hclust/matrix"
	"gopkg.in/yaml.v3"
)

// DefaultClusters is the target cluster count when neither Clusters nor
// Epsilon is set.
const DefaultClusters = 10

// Config holds the parameters of one clustering run.
type Config struct {
	// Metric names the distance strategy: scalar, multiscalar, rms,
	// rms-nofit or dme. Empty selects rms for coordinate data, scalar for one
	// series and multiscalar for several.
	Metric  string          `yaml:"metric"`
	Linkage cluster.Linkage `yaml:"linkage"`

	// Clusters and Epsilon are mutually exclusive stop criteria.
	Clusters int     `yaml:"clusters"`
	Epsilon  float64 `yaml:"epsilon"`

	// Mass weights atoms by mass. Coordinate metrics only.
	Mass bool `yaml:"mass"`
	// NoFit skips best-fit superposition for the rms metric.
	NoFit bool `yaml:"nofit"`
	// Period marks every series without its own period as periodic.
	Period float64 `yaml:"period"`

	// Sieve > 1 clusters every Sieve-th item and assigns the rest afterwards.
	Sieve int `yaml:"sieve"`
	// Exclude lists item indices left out of the clustering.
	Exclude []int `yaml:"exclude"`
	// Workers > 1 builds the matrix on that many goroutines.
	Workers int `yaml:"workers"`

	// LoadMatrix and SaveMatrix name matrices in the matrix store.
	LoadMatrix  string `yaml:"load_matrix"`
	SaveMatrix  string `yaml:"save_matrix"`
	Compression string `yaml:"compression"`
}

// DefaultConfig returns the configuration used when nothing is specified:
// average linkage, DefaultClusters clusters and LZ4 compressed matrices.
func DefaultConfig() Config {
	return Config{
		Linkage:     cluster.AverageLinkage,
		Compression: matrix.CompressionLZ4.String(),
	}
}

// LoadConfig reads a YAML configuration file. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Reason: err.Error(), cause: err}
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration without looking at any data.
func (c Config) Validate() error {
	if c.Clusters < 0 {
		return &ConfigError{Field: "clusters", Reason: fmt.Sprintf("must not be negative, got %d", c.Clusters)}
	}
	if c.Epsilon < 0 {
		return &ConfigError{Field: "epsilon", Reason: fmt.Sprintf("must not be negative, got %v", c.Epsilon)}
	}
	if c.Clusters > 0 && c.Epsilon > 0 {
		return &ConfigError{Field: "clusters", Reason: "clusters and epsilon are mutually exclusive"}
	}
	if c.Linkage < cluster.SingleLinkage || c.Linkage > cluster.CompleteLinkage {
		return &ConfigError{Field: "linkage", Reason: fmt.Sprintf("unknown linkage %d", int(c.Linkage))}
	}
	if c.Sieve < 0 {
		return &ConfigError{Field: "sieve", Reason: fmt.Sprintf("must not be negative, got %d", c.Sieve)}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "workers", Reason: fmt.Sprintf("must not be negative, got %d", c.Workers)}
	}
	if c.Period < 0 {
		return &ConfigError{Field: "period", Reason: fmt.Sprintf("must not be negative, got %v", c.Period)}
	}
	if slices.ContainsFunc(c.Exclude, func(i int) bool { return i < 0 }) {
		return &ConfigError{Field: "exclude", Reason: "item indices must not be negative"}
	}
	if _, err := matrix.ParseCompression(c.Compression); err != nil {
		return &ConfigError{Field: "compression", Reason: err.Error(), cause: err}
	}

	if c.Metric == "" {
		return nil
	}
	kind, err := distance.ParseKind(c.Metric)
	if err != nil {
		return &ConfigError{Field: "metric", Reason: err.Error(), cause: err}
	}
	return c.checkKind(kind)
}

// checkKind rejects coordinate-only settings for kind.
func (c Config) checkKind(kind distance.Kind) error {
	if !kind.Coordinate() {
		if c.Mass {
			return &ConfigError{Field: "mass", Reason: "only valid for coordinate metrics"}
		}
		if c.NoFit {
			return &ConfigError{Field: "nofit", Reason: "only valid for coordinate metrics"}
		}
	}
	if kind == distance.KindDME && c.Mass {
		return &ConfigError{Field: "mass", Reason: "dme is not mass weighted"}
	}
	return nil
}

// clusterConfig returns the merge engine settings, applying DefaultClusters
// when no stop criterion is given.
func (c Config) clusterConfig() cluster.Config {
	cc := cluster.Config{
		Linkage:        c.Linkage,
		Epsilon:        c.Epsilon,
		TargetClusters: c.Clusters,
	}
	if cc.TargetClusters == 0 && cc.Epsilon == 0 {
		cc.TargetClusters = DefaultClusters
	}
	return cc
}

// kind resolves the metric for a data set.
func (c Config) kind(ds Dataset) (distance.Kind, error) {
	var kind distance.Kind
	switch {
	case c.Metric != "":
		k, err := distance.ParseKind(c.Metric)
		if err != nil {
			return 0, &ConfigError{Field: "metric", Reason: err.Error(), cause: err}
		}
		kind = k
	case len(ds.Frames.Coords) > 0:
		kind = distance.KindCoordinateFit
	case len(ds.Series) == 1:
		kind = distance.KindScalar
	case len(ds.Series) > 1:
		kind = distance.KindMultiScalar
	default:
		return 0, &ConfigError{Field: "dataset", Reason: "no series or frames"}
	}
	if err := c.checkKind(kind); err != nil {
		return 0, err
	}
	if kind == distance.KindCoordinateFit && c.NoFit {
		kind = distance.KindCoordinateNoFit
	}
	return kind, nil
}

// strategy builds the distance strategy for ds.
func (c Config) strategy(ds Dataset) (*distance.Strategy, error) {
	kind, err := c.kind(ds)
	if err != nil {
		return nil, err
	}

	series := ds.Series
	if c.Period > 0 {
		series = slices.Clone(series)
		for i := range series {
			if series[i].Period == 0 {
				series[i].Period = c.Period
			}
		}
	}

	var s *distance.Strategy
	switch kind {
	case distance.KindScalar:
		if len(series) != 1 {
			return nil, &ConfigError{Field: "metric", Reason: fmt.Sprintf("scalar metric needs exactly one series, got %d", len(series))}
		}
		s, err = distance.NewScalar(series[0])
	case distance.KindMultiScalar:
		s, err = distance.NewMultiScalar(series...)
	case distance.KindCoordinateFit, distance.KindCoordinateNoFit:
		s, err = distance.NewRMSD(ds.Frames, kind == distance.KindCoordinateFit, c.Mass)
	case distance.KindDME:
		s, err = distance.NewDME(ds.Frames)
	}
	if err != nil {
		return nil, translateError(err)
	}
	return s, nil
}
