// Command hclust clusters scalar series or coordinate trajectories.
//
// Usage:
//
//	hclust [flags]                 cluster the data named by -input or -xyz
//	hclust matrix <file>           print a saved distance matrix
//
// Flags override values from the -config YAML file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/hclust"
	"github.com/hupe1980/hclust/blobstore"
	hminio "github.com/hupe1980/hclust/blobstore/minio"
	hs3 "github.com/hupe1980/hclust/blobstore/s3"
	"github.com/hupe1980/hclust/cluster"
	"github.com/hupe1980/hclust/codec"
	"github.com/hupe1980/hclust/dataset"
	"github.com/hupe1980/hclust/matrix"
	"github.com/hupe1980/hclust/promcollector"
	"github.com/hupe1980/hclust/report"
	"github.com/hupe1980/hclust/resource"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

type flags struct {
	config string

	input       string
	xyz         string
	columns     string
	indexColumn bool
	mask        string

	store    string
	root     string
	bucket   string
	prefix   string
	endpoint string
	insecure bool

	out          string
	clusterOut   string
	singleRepOut string
	codec        string

	metricsAddr string
	logLevel    string
	logJSON     bool
	memLimit    int64
	ioLimit     int64
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) > 0 && args[0] == "matrix" {
		return printMatrix(args[1:], stdout)
	}

	var f flags
	cfg := hclust.DefaultConfig()

	fs := flag.NewFlagSet("hclust", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "YAML configuration file")

	fs.StringVar(&f.input, "input", "", "column data file in the store")
	fs.StringVar(&f.xyz, "xyz", "", "multi-frame XYZ trajectory in the store")
	fs.StringVar(&f.columns, "columns", "", "comma separated column names to cluster on")
	fs.BoolVar(&f.indexColumn, "index-column", false, "first data column is a frame number")
	fs.StringVar(&f.mask, "mask", "", "comma separated atom indices used for comparisons")

	metric := fs.String("metric", "", "scalar, multiscalar, rms, rms-nofit or dme")
	linkage := fs.String("linkage", "", "single, average or complete")
	clusters := fs.Int("clusters", 0, "target number of clusters")
	epsilon := fs.Float64("epsilon", 0, "maximum merge distance")
	mass := fs.Bool("mass", false, "mass weighted coordinate metrics")
	nofit := fs.Bool("nofit", false, "skip best-fit superposition")
	period := fs.Float64("period", 0, "period of periodic series, e.g. 360")
	sieve := fs.Int("sieve", 0, "cluster every Nth item and assign the rest")
	exclude := fs.String("exclude", "", "comma separated item indices to leave out")
	workers := fs.Int("workers", 0, "goroutines used to build the distance matrix")
	loadMatrix := fs.String("load-matrix", "", "reuse a saved distance matrix from the store")
	saveMatrix := fs.String("save-matrix", "", "save the distance matrix to the store")
	compression := fs.String("compression", "", "matrix compression: none, lz4 or zstd")

	fs.StringVar(&f.store, "store", "local", "artifact store: local, s3 or minio")
	fs.StringVar(&f.root, "root", ".", "local store directory")
	fs.StringVar(&f.bucket, "bucket", "", "s3 or minio bucket")
	fs.StringVar(&f.prefix, "prefix", "", "key prefix inside the bucket")
	fs.StringVar(&f.endpoint, "endpoint", "", "s3 or minio endpoint override")
	fs.BoolVar(&f.insecure, "insecure", false, "plain http for minio")

	fs.StringVar(&f.out, "out", "", "prefix for summary, cnumvtime and JSON reports")
	fs.StringVar(&f.clusterOut, "clusterout", "", "prefix for per-cluster XYZ trajectories")
	fs.StringVar(&f.singleRepOut, "singlerepout", "", "XYZ file with one representative per cluster")
	fs.StringVar(&f.codec, "codec", "go-json", "JSON codec for reports: json or go-json")

	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.BoolVar(&f.logJSON, "log-json", false, "JSON formatted logs")
	fs.Int64Var(&f.memLimit, "mem-limit", 0, "matrix memory limit in bytes")
	fs.Int64Var(&f.ioLimit, "io-limit", 0, "upload limit in bytes per second")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if f.config != "" {
		loaded, err := hclust.LoadConfig(f.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	var err error
	fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "metric":
			cfg.Metric = *metric
		case "linkage":
			cfg.Linkage, err = cluster.ParseLinkage(*linkage)
		case "clusters":
			cfg.Clusters = *clusters
		case "epsilon":
			cfg.Epsilon = *epsilon
		case "mass":
			cfg.Mass = *mass
		case "nofit":
			cfg.NoFit = *nofit
		case "period":
			cfg.Period = *period
		case "sieve":
			cfg.Sieve = *sieve
		case "exclude":
			cfg.Exclude, err = parseInts(*exclude)
		case "workers":
			cfg.Workers = *workers
		case "load-matrix":
			cfg.LoadMatrix = *loadMatrix
		case "save-matrix":
			cfg.SaveMatrix = *saveMatrix
		case "compression":
			cfg.Compression = *compression
		}
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(f.logLevel, f.logJSON)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, f)
	if err != nil {
		return err
	}

	ds, names, err := loadDataset(ctx, store, f)
	if err != nil {
		return err
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   f.memLimit,
		IOLimitBytesPerSec: f.ioLimit,
	})

	jsonCodec, ok := codec.ByName(f.codec)
	if !ok {
		return fmt.Errorf("unknown codec %q", f.codec)
	}

	opts := []hclust.Option{
		hclust.WithLogger(logger),
		hclust.WithMatrixStore(store),
		hclust.WithResourceController(rc),
		hclust.WithSinks(report.WriterSink{W: stdout}),
	}
	if f.out != "" {
		opts = append(opts, hclust.WithSinks(report.NewBlobSink(store, f.out,
			report.WithCodec(jsonCodec), report.WithResourceController(rc))))
	}
	if f.clusterOut != "" || f.singleRepOut != "" {
		opts = append(opts, hclust.WithSinks(&dataset.TrajectorySink{
			Store:              store,
			Names:              names,
			ClusterPrefix:      f.clusterOut,
			RepresentativeName: f.singleRepOut,
			Resources:          rc,
		}))
	}

	if f.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector, err := promcollector.New(reg, "hclust")
		if err != nil {
			return err
		}
		opts = append(opts, hclust.WithMetricsCollector(collector))

		srv := serveMetrics(f.metricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	_, err = hclust.New(opts...).Run(ctx, ds, cfg)
	return err
}

func newLogger(level string, asJSON bool) (*hclust.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	if asJSON {
		return hclust.NewJSONLogger(lvl), nil
	}
	return hclust.NewTextLogger(lvl), nil
}

func openStore(ctx context.Context, f flags) (blobstore.BlobStore, error) {
	switch f.store {
	case "local":
		return blobstore.NewLocalStore(f.root), nil
	case "s3":
		if f.bucket == "" {
			return nil, errors.New("-bucket is required for the s3 store")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		var s3Opts []func(*s3.Options)
		if f.endpoint != "" {
			s3Opts = append(s3Opts, func(o *s3.Options) {
				o.BaseEndpoint = aws.String(f.endpoint)
				o.UsePathStyle = true
			})
		}
		return hs3.NewStore(s3.NewFromConfig(awsCfg, s3Opts...), f.bucket, f.prefix), nil
	case "minio":
		if f.bucket == "" || f.endpoint == "" {
			return nil, errors.New("-bucket and -endpoint are required for the minio store")
		}
		client, err := minio.New(f.endpoint, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: !f.insecure,
		})
		if err != nil {
			return nil, err
		}
		return hminio.NewStore(client, f.bucket, f.prefix), nil
	default:
		return nil, fmt.Errorf("unknown store %q", f.store)
	}
}

func loadDataset(ctx context.Context, store blobstore.BlobStore, f flags) (hclust.Dataset, []string, error) {
	switch {
	case f.input != "" && f.xyz != "":
		return hclust.Dataset{}, nil, errors.New("-input and -xyz are mutually exclusive")
	case f.xyz != "":
		traj, err := dataset.LoadXYZ(ctx, store, f.xyz)
		if err != nil {
			return hclust.Dataset{}, nil, err
		}
		frames := traj.Coordinates()
		if f.mask != "" {
			if frames.Mask, err = parseInts(f.mask); err != nil {
				return hclust.Dataset{}, nil, err
			}
		}
		return hclust.Dataset{Frames: frames}, traj.Names, nil
	case f.input != "":
		var opts []dataset.ColumnOption
		if f.indexColumn {
			opts = append(opts, dataset.WithIndexColumn())
		}
		if f.columns != "" {
			opts = append(opts, dataset.WithColumns(strings.Split(f.columns, ",")...))
		}
		series, err := dataset.LoadColumns(ctx, store, f.input, opts...)
		if err != nil {
			return hclust.Dataset{}, nil, err
		}
		return hclust.Dataset{Series: series}, nil, nil
	default:
		return hclust.Dataset{}, nil, errors.New("one of -input or -xyz is required")
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *hclust.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func printMatrix(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: hclust matrix <file>")
	}
	m, err := matrix.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "# %d rows, %d elements\n", m.Nrows(), m.Nelements())
	return m.Print(stdout)
}

func parseInts(list string) ([]int, error) {
	var out []int
	for _, s := range strings.Split(list, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}
