package promcollector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/hclust"
	"github.com/hupe1980/hclust/distance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg, "hclust")
	require.NoError(t, err)

	c.RecordPairwise(10, time.Millisecond, nil)
	c.RecordPairwise(5, time.Millisecond, errors.New("boom"))
	c.RecordMerge(0.5)
	c.RecordMerge(1.5)
	c.RecordRun(3, time.Second, nil)
	c.RecordRun(7, time.Second, errors.New("boom"))

	assert.InDelta(t, 10, testutil.ToFloat64(c.pairwiseItems), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.merges), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(c.clusters), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.runLatency))
	assert.Equal(t, 2, testutil.CollectAndCount(c.pairwiseLatency))
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "hclust")
	require.NoError(t, err)

	_, err = New(reg, "hclust")
	var are prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &are)
}

func TestCollector_WithClusterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg, "hclust")
	require.NoError(t, err)

	cfg := hclust.DefaultConfig()
	cfg.Clusters = 2
	ds := hclust.Dataset{Series: []distance.Series{{Name: "x", Values: []float64{0, 1, 2, 10, 11}}}}

	_, err = hclust.Run(context.Background(), ds, cfg, hclust.WithMetricsCollector(c))
	require.NoError(t, err)

	assert.InDelta(t, 3, testutil.ToFloat64(c.merges), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.clusters), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(c.pairwiseItems), 0)
}
