package dataset

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hupe1980/hclust/blobstore"
	"github.com/hupe1980/hclust/distance"
)

// Trajectory is a sequence of frames over the same atoms.
type Trajectory struct {
	// Names holds one element or atom name per atom.
	Names []string
	// Frames holds one flat x,y,z slice per frame.
	Frames [][]float64
	// Comments holds the comment line of every frame.
	Comments []string
}

// Atoms returns the number of atoms per frame.
func (t *Trajectory) Atoms() int { return len(t.Names) }

// Coordinates returns the frames as a distance.Frames value.
func (t *Trajectory) Coordinates() distance.Frames {
	return distance.Frames{Coords: t.Frames}
}

// ReadXYZ reads a multi-frame XYZ file. Every frame must have the same atom
// count.
func ReadXYZ(r io.Reader) (*Trajectory, error) {
	br := bufio.NewReader(r)
	t := &Trajectory{}
	line := 0

	next := func() (string, bool, error) {
		s, err := br.ReadString('\n')
		if err == io.EOF && s == "" {
			return "", false, nil
		}
		if err != nil && err != io.EOF {
			return "", false, err
		}
		line++
		return strings.TrimRight(s, "\r\n"), true, nil
	}

	for {
		head, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if strings.TrimSpace(head) == "" {
			continue
		}
		natoms, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil || natoms <= 0 {
			return nil, fmt.Errorf("%w: line %d: bad atom count %q", ErrFormat, line, head)
		}
		if len(t.Frames) > 0 && natoms != t.Atoms() {
			return nil, fmt.Errorf("%w: line %d: frame %d has %d atoms, want %d", ErrFormat, line, len(t.Frames), natoms, t.Atoms())
		}

		comment, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: truncated frame %d", ErrFormat, len(t.Frames))
		}

		first := len(t.Frames) == 0
		frame := make([]float64, 0, 3*natoms)
		for a := 0; a < natoms; a++ {
			text, ok, err := next()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%w: truncated frame %d", ErrFormat, len(t.Frames))
			}
			fields := strings.Fields(text)
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: want name x y z", ErrFormat, line)
			}
			for _, f := range fields[1:4] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
				}
				frame = append(frame, v)
			}
			if first {
				t.Names = append(t.Names, fields[0])
			}
		}
		t.Frames = append(t.Frames, frame)
		t.Comments = append(t.Comments, comment)
	}
	return t, nil
}

// LoadXYZ reads an XYZ file from a blob store.
func LoadXYZ(ctx context.Context, store blobstore.BlobStore, name string) (*Trajectory, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, err
	}
	return ReadXYZ(bytes.NewReader(data))
}

// WriteXYZ writes frames as a multi-frame XYZ file. comments may be shorter
// than frames; missing comments are left empty.
func WriteXYZ(w io.Writer, names []string, frames [][]float64, comments []string) error {
	bw := bufio.NewWriter(w)
	for i, f := range frames {
		if len(f) != 3*len(names) {
			return fmt.Errorf("%w: frame %d has %d coordinates for %d atoms", ErrFormat, i, len(f), len(names))
		}
		comment := ""
		if i < len(comments) {
			comment = comments[i]
		}
		fmt.Fprintf(bw, "%d\n%s\n", len(names), comment)
		for a, name := range names {
			fmt.Fprintf(bw, "%-4s %12.6f %12.6f %12.6f\n", name, f[3*a], f[3*a+1], f[3*a+2])
		}
	}
	return bw.Flush()
}
