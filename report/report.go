package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hupe1980/hclust"
	"github.com/hupe1980/hclust/codec"
)

// WriteSummary writes one line per cluster: number, size, fraction of
// assigned items, average and standard deviation of intra-cluster distances,
// representative item and average distance to the other centroids.
func WriteSummary(w io.Writer, res *hclust.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#%-7s %8s %8s %8s %8s %10s %8s\n",
		"Cluster", "Items", "Frac", "AvgDist", "Stdev", "Centroid", "AvgCDist")
	for _, c := range res.Clusters {
		fmt.Fprintf(bw, "%8d %8d %8.3f %8.3f %8.3f %10d %8.3f\n",
			c.Number, c.Size, c.Fraction, c.AvgDist, c.StdDev, c.Representative, c.AvgCentroidDist)
	}
	return bw.Flush()
}

// WriteCnumVTime writes the cluster number of every item, one item per line.
// Excluded items have cluster number -1.
func WriteCnumVTime(w io.Writer, res *hclust.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "#%-7s %8s\n", "Item", "Cnum")
	for i, num := range res.Assignments {
		fmt.Fprintf(bw, "%8d %8d\n", i, num)
	}
	return bw.Flush()
}

// WriteClusters writes the members of every cluster, one cluster per line.
func WriteClusters(w io.Writer, res *hclust.Result) error {
	bw := bufio.NewWriter(w)
	for _, c := range res.Clusters {
		fmt.Fprintf(bw, "Cluster %d (%d items):", c.Number, c.Size)
		for _, m := range c.Members {
			fmt.Fprintf(bw, " %d", m)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

type document struct {
	Metric string `json:"metric"`
	*hclust.Result
}

// MarshalJSON encodes res as an indented JSON document with c, or with
// codec.Default when c is nil.
func MarshalJSON(c codec.Codec, res *hclust.Result) ([]byte, error) {
	return codec.Pretty(c, document{Metric: res.Metric.String(), Result: res})
}

// WriteJSON writes the JSON document of res to w.
func WriteJSON(w io.Writer, c codec.Codec, res *hclust.Result) error {
	data, err := MarshalJSON(c, res)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
