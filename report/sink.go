package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/hupe1980/hclust"
	"github.com/hupe1980/hclust/blobstore"
	"github.com/hupe1980/hclust/codec"
	"github.com/hupe1980/hclust/resource"
)

// Blob names written by BlobSink below its prefix.
const (
	SummaryName   = "summary.dat"
	CnumVTimeName = "cnumvtime.dat"
	ReportName    = "report.json"
)

// Option configures a BlobSink.
type Option func(*BlobSink)

// WithCodec sets the codec of the JSON report.
func WithCodec(c codec.Codec) Option {
	return func(s *BlobSink) {
		s.codec = c
	}
}

// WithResourceController limits upload throughput with rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(s *BlobSink) {
		s.rc = rc
	}
}

// BlobSink stores the summary, cluster number series and JSON report of
// every result in a blob store.
type BlobSink struct {
	store  blobstore.BlobStore
	prefix string
	codec  codec.Codec
	rc     *resource.Controller
}

var _ hclust.Sink = (*BlobSink)(nil)

// NewBlobSink creates a sink that writes below prefix in store.
func NewBlobSink(store blobstore.BlobStore, prefix string, opts ...Option) *BlobSink {
	s := &BlobSink{
		store:  store,
		prefix: prefix,
		codec:  codec.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write implements hclust.Sink.
func (s *BlobSink) Write(ctx context.Context, _ hclust.Dataset, res *hclust.Result) error {
	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{SummaryName, func(w io.Writer) error { return WriteSummary(w, res) }},
		{CnumVTimeName, func(w io.Writer) error { return WriteCnumVTime(w, res) }},
		{ReportName, func(w io.Writer) error { return WriteJSON(w, s.codec, res) }},
	}
	for _, out := range outputs {
		if err := s.put(ctx, path.Join(s.prefix, out.name), out.write); err != nil {
			return fmt.Errorf("report: %s: %w", out.name, err)
		}
	}
	return nil
}

// put renders a report in memory and stores it with a single Put, so a failed
// render never leaves a partial blob behind.
func (s *BlobSink) put(ctx context.Context, name string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := s.rc.AcquireIO(ctx, buf.Len()); err != nil {
		return err
	}
	return s.store.Put(ctx, name, buf.Bytes())
}

// WriterSink prints the cluster members and summary of every result to an
// io.Writer, typically os.Stdout.
type WriterSink struct {
	W io.Writer
}

var _ hclust.Sink = WriterSink{}

// Write implements hclust.Sink.
func (s WriterSink) Write(_ context.Context, _ hclust.Dataset, res *hclust.Result) error {
	if err := WriteClusters(s.W, res); err != nil {
		return err
	}
	return WriteSummary(s.W, res)
}
