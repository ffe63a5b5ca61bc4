/*
Package transcript stores traces as a snappy-compressed stream of text
records, one line per step, so that a batch of exercises can be handed to a
renderer or kept next to the rendered output.
*/
package transcript

import (
	"fmt"
	"io"

	"github.com/cryingshadow/exercisegenerator-sub005/btree"
	"github.com/golang/snappy"
	"github.com/pingcap/errors"
)

// Writer assembles records and hands them to a snappy framed stream.
type Writer struct {
	dst     *snappy.Writer
	encoder *Encoder
	seq     int // number of operations written so far
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		dst:     snappy.NewBufferedWriter(w),
		encoder: NewEncoder(),
	}
}

// WriteTrace appends every step of trace as one record of a new operation.
func WriteTrace[K any](w *Writer, op OpKind, arg K, trace btree.Trace[K]) error {
	w.seq++
	for _, s := range trace {
		r := &Record{
			Seq:   w.seq,
			Op:    op,
			Arg:   fmt.Sprint(arg),
			Step:  s.Step.Kind,
			Key:   fmt.Sprint(s.Step.Key),
			Shape: s.Tree.String(),
		}
		if _, err := w.dst.Write(w.encoder.Encode(r)); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// Flush pushes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return errors.WithStack(w.dst.Flush())
}

// Close flushes the stream. The underlying writer is left open.
func (w *Writer) Close() error {
	return errors.WithStack(w.dst.Close())
}
