// Package matrix provides Triangle, a packed symmetric distance matrix.
//
// Only the strictly upper-triangular part of an N×N matrix is stored, in
// row-major order, so element (i, j) and element (j, i) share one slot and the
// zero diagonal costs nothing:
//
//	row 0: (0,1) (0,2) ... (0,N-1)
//	row 1:       (1,2) ... (1,N-1)
//	...
//
// Values are accepted and returned as float64 but held as float32, which halves
// the N²/2 footprint that dominates memory for large N.
//
// # Usage
//
//	m, _ := matrix.New(n)
//	for i := 0; i < n-1; i++ {
//	    for j := i + 1; j < n; j++ {
//	        _ = m.AddElement(dist(i, j))
//	    }
//	}
//	v, i, j, ok := m.FindMin()
//
// Rows can be flagged with Ignore so FindMin and Print skip them without
// resizing the storage. Save and Load persist a complete matrix with optional
// LZ4 or ZSTD compression.
package matrix
