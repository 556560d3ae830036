package io

import (
	"io"
	"strconv"
)

// Console renders output onto a byte stream: numbers in decimal, one per
// line, and characters as raw bytes.
type Console struct {
	Output io.Writer

	Err error // First write error; later output is dropped.
}

var _ Output = (*Console)(nil)

// Number writes value in decimal followed by a newline.
func (con *Console) Number(value byte) {
	con.write(strconv.AppendUint(nil, uint64(value), 10), '\n')
}

// Char writes value as a single byte.
func (con *Console) Char(value byte) {
	con.write(nil, value)
}

// write sends text and a final byte as one write.
func (con *Console) write(text []byte, last byte) {
	if con.Err != nil || con.Output == nil {
		return
	}

	data := append(text, last)
	n, err := con.Output.Write(data)
	if err == nil && n != len(data) {
		err = ErrShortWrite
	}
	con.Err = err
}
