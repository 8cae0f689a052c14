// Package readpos provides an io.Reader that tracks how many bytes have been consumed.
package readpos

import "io"

// ReadPos wraps an io.Reader and records the absolute position of the next byte to be read.
type ReadPos struct {
	R      io.Reader
	CurPos int
}

// Read implements io.Reader.
func (r *ReadPos) Read(p []byte) (int, error) {
	n, err := r.R.Read(p)
	r.CurPos += n
	return n, err
}

// ReadByte implements io.ByteReader.
func (r *ReadPos) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
