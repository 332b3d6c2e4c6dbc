package hclust

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/hclust/cluster"
	"github.com/hupe1980/hclust/distance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hclust.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
metric: rms
linkage: complete
clusters: 4
mass: true
sieve: 2
exclude: [3, 7]
workers: 4
save_matrix: run1/pairs.hctm
compression: zstd
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "rms", cfg.Metric)
	assert.Equal(t, cluster.CompleteLinkage, cfg.Linkage)
	assert.Equal(t, 4, cfg.Clusters)
	assert.True(t, cfg.Mass)
	assert.Equal(t, 2, cfg.Sieve)
	assert.Equal(t, []int{3, 7}, cfg.Exclude)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "run1/pairs.hctm", cfg.SaveMatrix)
	assert.Equal(t, "zstd", cfg.Compression)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "epsilon: 1.5\n"))
	require.NoError(t, err)

	assert.Equal(t, cluster.AverageLinkage, cfg.Linkage)
	assert.Equal(t, "lz4", cfg.Compression)
	assert.InDelta(t, 1.5, cfg.Epsilon, 0)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown linkage", "linkage: ward\n"},
		{"mutually exclusive", "clusters: 3\nepsilon: 0.5\n"},
		{"malformed", "clusters: [\n"},
		{"unknown metric", "metric: cosine\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid default", func(*Config) {}, ""},
		{"negative clusters", func(c *Config) { c.Clusters = -1 }, "clusters"},
		{"negative epsilon", func(c *Config) { c.Epsilon = -1 }, "epsilon"},
		{"both criteria", func(c *Config) { c.Clusters, c.Epsilon = 2, 1 }, "clusters"},
		{"unknown linkage", func(c *Config) { c.Linkage = cluster.Linkage(9) }, "linkage"},
		{"negative sieve", func(c *Config) { c.Sieve = -2 }, "sieve"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers"},
		{"negative period", func(c *Config) { c.Period = -360 }, "period"},
		{"negative exclude", func(c *Config) { c.Exclude = []int{1, -1} }, "exclude"},
		{"bad compression", func(c *Config) { c.Compression = "gzip" }, "compression"},
		{"bad metric", func(c *Config) { c.Metric = "cosine" }, "metric"},
		{"mass on scalar", func(c *Config) { c.Metric, c.Mass = "scalar", true }, "mass"},
		{"nofit on multiscalar", func(c *Config) { c.Metric, c.NoFit = "multiscalar", true }, "nofit"},
		{"mass on dme", func(c *Config) { c.Metric, c.Mass = "dme", true }, "mass"},
		{"mass on rms", func(c *Config) { c.Metric, c.Mass = "rms", true }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestConfig_ClusterConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, cluster.Config{Linkage: cluster.AverageLinkage, TargetClusters: DefaultClusters}, cfg.clusterConfig())

	cfg.Epsilon = 2
	assert.Equal(t, cluster.Config{Linkage: cluster.AverageLinkage, Epsilon: 2}, cfg.clusterConfig())

	cfg.Epsilon, cfg.Clusters = 0, 3
	assert.Equal(t, 3, cfg.clusterConfig().TargetClusters)
}

func TestConfig_Kind(t *testing.T) {
	frames := Dataset{Frames: distance.Frames{Coords: [][]float64{{0, 0, 0}}}}
	one := scalar(1)
	two := Dataset{Series: []distance.Series{{Values: []float64{1}}, {Values: []float64{2}}}}

	tests := []struct {
		name string
		cfg  Config
		ds   Dataset
		want distance.Kind
	}{
		{"frames default", Config{}, frames, distance.KindCoordinateFit},
		{"frames nofit", Config{NoFit: true}, frames, distance.KindCoordinateNoFit},
		{"explicit dme", Config{Metric: "dme"}, frames, distance.KindDME},
		{"one series", Config{}, one, distance.KindScalar},
		{"two series", Config{}, two, distance.KindMultiScalar},
		{"explicit multiscalar", Config{Metric: "multiscalar"}, one, distance.KindMultiScalar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.kind(tt.ds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
