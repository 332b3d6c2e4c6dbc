package matrix

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersist_RoundTrip(t *testing.T) {
	m := filled(t, 300, func(i, j int) float64 { return float64((i*7+j*3)%11) / 4 })
	m.Ignore(5)
	m.Ignore(299)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pairdist.hctm")
			require.NoError(t, Save(path, m, c))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, m.Nrows(), got.Nrows())
			assert.True(t, got.Complete())
			assert.Equal(t, m.elements, got.elements)
			assert.True(t, got.Ignored(5))
			assert.True(t, got.Ignored(299))
			assert.False(t, got.Ignored(6))
		})
	}
}

func TestPersist_Incomplete(t *testing.T) {
	m, err := New(4)
	require.NoError(t, err)
	require.NoError(t, m.AddElement(1))

	var buf bytes.Buffer
	assert.ErrorIs(t, Encode(&buf, m, CompressionNone), ErrIncomplete)
}

func TestPersist_BadFormat(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not a matrix file at all")))
	assert.ErrorIs(t, err, ErrBadFormat)

	m := filled(t, 5, func(i, j int) float64 { return 1 })
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m, CompressionNone))

	_, err = Decode(bytes.NewReader(buf.Bytes()[:buf.Len()-3]))
	assert.ErrorIs(t, err, ErrBadFormat)
}

func TestPersist_CorruptHeader(t *testing.T) {
	header := func(nrows, ignLen uint64) []byte {
		b := append([]byte("HCTM"), formatVersion, byte(CompressionNone), 0, 0)
		b = binary.LittleEndian.AppendUint64(b, nrows)
		return binary.LittleEndian.AppendUint64(b, ignLen)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "huge row count", data: header(2_000_000_000, ignoreSize(2_000_000_000))},
		{name: "row count above int32", data: header(1<<40, ignoreSize(1<<40))},
		{name: "ignore length mismatch", data: header(10, 1<<30)},
		{name: "truncated header", data: header(10, ignoreSize(10))[:20]},
		{name: "missing elements", data: append(header(3, ignoreSize(3)), 0, 0, 0, 0, 0, 0, 0, 3, 0, 0, 0, 0, 0, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				m   *Triangle
				err error
			)
			require.NotPanics(t, func() { m, err = Decode(bytes.NewReader(tt.data)) })
			assert.ErrorIs(t, err, ErrBadFormat)
			assert.Nil(t, m)
		})
	}
}

func TestPersist_Empty(t *testing.T) {
	m, err := New(1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, m, CompressionZSTD))
	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Nrows())
	assert.Equal(t, 0, got.Nelements())
}
