// Package mmap provides read-only memory-mapped access to persisted matrix files.
//
// Distance matrices grow with N²; mapping the file lets the decoder stream the
// payload straight from the page cache instead of copying it through read
// buffers first.
//
//	m, err := mmap.Open("pairdist.hctm")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix platforms use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
package mmap
