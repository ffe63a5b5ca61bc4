package transcript

import (
	"bufio"
	"io"

	"github.com/golang/snappy"
	"github.com/pingcap/errors"
)

// maxRecordSize bounds a single line, which is dominated by the shape of the
// tree after the step.
const maxRecordSize = 4 << 20 // 4 MiB

// Reader retrieves records from a transcript, one line at a time.
type Reader struct {
	scanner *bufio.Scanner
	encoder *Encoder
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(snappy.NewReader(r))
	s.Buffer(make([]byte, 0, 64<<10), maxRecordSize)
	return &Reader{scanner: s, encoder: NewEncoder()}
}

// Next returns the next record, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (*Record, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		return nil, io.EOF
	}
	return r.encoder.Parse(r.scanner.Bytes())
}

// ReadAll returns every remaining record.
func (r *Reader) ReadAll() ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
