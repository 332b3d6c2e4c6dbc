package dataset

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hupe1980/hclust"
	"github.com/hupe1980/hclust/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const water = `3
frame 0
O   0.0 0.0 0.0
H   0.96 0.0 0.0
H  -0.24 0.93 0.0
3
frame 1
O   0.1 0.0 0.0
H   1.06 0.0 0.0
H  -0.14 0.93 0.0
`

func TestReadXYZ(t *testing.T) {
	traj, err := ReadXYZ(strings.NewReader(water))
	require.NoError(t, err)

	assert.Equal(t, []string{"O", "H", "H"}, traj.Names)
	assert.Equal(t, 3, traj.Atoms())
	assert.Equal(t, []string{"frame 0", "frame 1"}, traj.Comments)
	require.Len(t, traj.Frames, 2)
	assert.Equal(t, []float64{0.1, 0, 0, 1.06, 0, 0, -0.14, 0.93, 0}, traj.Frames[1])
	assert.Len(t, traj.Coordinates().Coords, 2)
}

func TestReadXYZ_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"bad count", "x\n\n"},
		{"truncated", "2\ncomment\nC 0 0 0\n"},
		{"short line", "1\ncomment\nC 0 0\n"},
		{"bad number", "1\ncomment\nC 0 y 0\n"},
		{"atom count changes", "1\na\nC 0 0 0\n2\nb\nC 0 0 0\nC 1 1 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadXYZ(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestWriteXYZ_RoundTrip(t *testing.T) {
	traj, err := ReadXYZ(strings.NewReader(water))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXYZ(&buf, traj.Names, traj.Frames, traj.Comments))

	again, err := ReadXYZ(&buf)
	require.NoError(t, err)
	assert.Equal(t, traj, again)

	err = WriteXYZ(&buf, []string{"C"}, [][]float64{{0, 0}}, nil)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTrajectorySink(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	traj, err := ReadXYZ(strings.NewReader(water))
	require.NoError(t, err)

	sink := &TrajectorySink{
		Store:              store,
		Names:              traj.Names,
		ClusterPrefix:      "out/cluster",
		RepresentativeName: "out/reps.xyz",
	}
	ds := hclust.Dataset{Frames: traj.Coordinates()}
	res := &hclust.Result{
		Clusters: []hclust.ClusterInfo{
			{Number: 0, Size: 1, Members: []int{1}, Representative: 1},
			{Number: 1, Size: 1, Members: []int{0}, Representative: 0},
		},
	}
	require.NoError(t, sink.Write(ctx, ds, res))

	names, err := store.List(ctx, "out/")
	require.NoError(t, err)
	assert.Equal(t, []string{"out/cluster.c0", "out/cluster.c1", "out/reps.xyz"}, names)

	reps, err := LoadXYZ(ctx, store, "out/reps.xyz")
	require.NoError(t, err)
	require.Len(t, reps.Frames, 2)
	assert.Equal(t, traj.Frames[1], reps.Frames[0])
	assert.Equal(t, traj.Frames[0], reps.Frames[1])
	assert.Equal(t, fmt.Sprintf("cluster %d representative item %d", 0, 1), reps.Comments[0])
}

func TestTrajectorySink_NeedsFrames(t *testing.T) {
	sink := &TrajectorySink{Store: blobstore.NewMemoryStore(), ClusterPrefix: "c"}
	err := sink.Write(context.Background(), hclust.Dataset{}, &hclust.Result{})
	assert.ErrorIs(t, err, ErrFormat)
}
