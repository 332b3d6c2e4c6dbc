package matrix

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/hclust/internal/compress"
	"github.com/hupe1980/hclust/internal/mmap"
)

// Compression selects how the element payload of a persisted matrix is stored.
type Compression = compress.Type

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

// ParseCompression returns the Compression for "none", "lz4" or "zstd".
// The empty name selects CompressionNone.
func ParseCompression(name string) (Compression, error) {
	return compress.Parse(name)
}

// File layout (little endian):
//
//	magic    [4]byte "HCTM"
//	version  uint8
//	codec    uint8   Compression
//	_        uint16
//	nrows    uint64
//	ignore   uint64 length + bitset bytes
//	payload  compressed blocks of float32 elements
var magic = [4]byte{'H', 'C', 'T', 'M'}

const formatVersion = 1

// elements per encode chunk
const chunkElems = 16 * 1024

// Encode writes a complete matrix to w.
func Encode(w io.Writer, m *Triangle, c Compression) error {
	if !m.Complete() {
		return ErrIncomplete
	}

	var ign bytes.Buffer
	if _, err := m.ignore.WriteTo(&ign); err != nil {
		return err
	}

	header := make([]byte, 0, 24)
	header = append(header, magic[:]...)
	header = append(header, formatVersion, byte(c), 0, 0)
	header = binary.LittleEndian.AppendUint64(header, uint64(m.nrows))
	header = binary.LittleEndian.AppendUint64(header, uint64(ign.Len()))
	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(ign.Bytes()); err != nil {
		return err
	}

	bw := compress.NewWriter(w, c, 0)
	buf := make([]byte, 4*chunkElems)
	for start := 0; start < len(m.elements); start += chunkElems {
		end := min(start+chunkElems, len(m.elements))
		out := buf[:4*(end-start)]
		for k, v := range m.elements[start:end] {
			binary.LittleEndian.PutUint32(out[4*k:], math.Float32bits(v))
		}
		if _, err := bw.Write(out); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode reads a matrix written by Encode.
func Decode(r io.Reader) (*Triangle, error) {
	header := make([]byte, 24)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadFormat, err)
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrBadFormat)
	}
	if header[4] != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadFormat, header[4])
	}
	c := Compression(header[5])
	nrows := binary.LittleEndian.Uint64(header[8:])
	ignLen := binary.LittleEndian.Uint64(header[16:])
	if nrows > math.MaxInt32 {
		return nil, fmt.Errorf("%w: row count %d", ErrBadFormat, nrows)
	}
	if want := ignoreSize(nrows); ignLen != want {
		return nil, fmt.Errorf("%w: ignore flags length %d, want %d", ErrBadFormat, ignLen, want)
	}

	// Buffers grow with the bytes actually read, so a corrupt header cannot
	// force a large allocation.
	raw, err := io.ReadAll(io.LimitReader(r, int64(ignLen)))
	if err != nil {
		return nil, fmt.Errorf("%w: ignore flags: %w", ErrBadFormat, err)
	}
	if uint64(len(raw)) != ignLen {
		return nil, fmt.Errorf("%w: ignore flags: %w", ErrBadFormat, io.ErrUnexpectedEOF)
	}
	if bitset.BinaryOrder().Uint64(raw) != nrows {
		return nil, fmt.Errorf("%w: ignore flags cover %d rows, want %d", ErrBadFormat, bitset.BinaryOrder().Uint64(raw), nrows)
	}
	ign := &bitset.BitSet{}
	if _, err := ign.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: ignore flags: %w", ErrBadFormat, err)
	}

	total := Size(int(nrows))
	elements := make([]float32, 0, min(total, chunkElems))
	br := compress.NewReader(r, c)
	buf := make([]byte, 4*chunkElems)
	for len(elements) < total {
		in := buf[:4*min(chunkElems, total-len(elements))]
		if _, err := io.ReadFull(br, in); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("%w: elements: %w", ErrBadFormat, err)
		}
		for k := 0; k < len(in); k += 4 {
			elements = append(elements, math.Float32frombits(binary.LittleEndian.Uint32(in[k:])))
		}
	}

	return &Triangle{
		elements: elements,
		nrows:    int(nrows),
		cursor:   len(elements),
		ready:    true,
		ignore:   ign,
	}, nil
}

// ignoreSize is the encoded size of the ignore bitset of an n-row matrix:
// a length word followed by one word per 64 rows.
func ignoreSize(n uint64) uint64 {
	return 8 + 8*((n+63)/64)
}

// Save writes a complete matrix to path.
func Save(path string, m *Triangle, c Compression) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriterSize(f, 1024*1024)
	if err := Encode(bw, m, c); err != nil {
		return err
	}
	return bw.Flush()
}

// Load reads a matrix file written by Save. The file is memory-mapped while
// it is decoded.
func Load(path string) (*Triangle, error) {
	mapped, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer mapped.Close()

	_ = mapped.Advise(mmap.AccessSequential)
	return Decode(bytes.NewReader(mapped.Bytes()))
}
