package transcript

import (
	"bytes"
	"strconv"

	"github.com/cryingshadow/exercisegenerator-sub005/btree"
	"github.com/pingcap/errors"
)

// OpKind is the top-level operation a trace belongs to.
type OpKind uint8

const (
	OpKindDelete OpKind = iota
	OpKindInsert
)

func (k OpKind) String() string {
	switch k {
	case OpKindDelete:
		return "DELETE"
	case OpKindInsert:
		return "INSERT"
	}
	return "OpKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseOpKind is the inverse of OpKind.String.
func ParseOpKind(s string) (OpKind, error) {
	switch s {
	case "DELETE":
		return OpKindDelete, nil
	case "INSERT":
		return OpKindInsert, nil
	}
	return 0, errors.Errorf("unknown operation %q", s)
}

// Record is one step of one operation. Keys are kept in their printed form
// so a transcript can be read back without knowing the key type.
type Record struct {
	Seq   int // operation number within the transcript, starting at 1
	Op    OpKind
	Arg   string // key passed to the operation
	Step  btree.StepKind
	Key   string // key carried by the step
	Shape string // canonical shape of the tree after the step
}

const (
	fieldSep   = '\t'
	numFields  = 6
	recordTerm = '\n'
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode lays a record out as one tab-separated line. Free-text fields are
// quoted, so keys may hold tabs or newlines.
func (e *Encoder) Encode(r *Record) []byte {
	buf := make([]byte, 0, len(r.Shape)+len(r.Arg)+len(r.Key)+32)
	buf = strconv.AppendInt(buf, int64(r.Seq), 10)
	buf = append(buf, fieldSep)
	buf = append(buf, r.Op.String()...)
	buf = append(buf, fieldSep)
	buf = strconv.AppendQuote(buf, r.Arg)
	buf = append(buf, fieldSep)
	buf = append(buf, r.Step.String()...)
	buf = append(buf, fieldSep)
	buf = strconv.AppendQuote(buf, r.Key)
	buf = append(buf, fieldSep)
	buf = strconv.AppendQuote(buf, r.Shape)
	return append(buf, recordTerm)
}

// Parse decodes one line produced by Encode, with or without its
// terminating newline.
func (e *Encoder) Parse(line []byte) (*Record, error) {
	fields := bytes.Split(bytes.TrimSuffix(line, []byte{recordTerm}), []byte{fieldSep})
	if len(fields) != numFields {
		return nil, errors.Errorf("malformed record %q: %d fields", line, len(fields))
	}

	r := &Record{}
	var err error
	if r.Seq, err = strconv.Atoi(string(fields[0])); err != nil {
		return nil, errors.Annotate(err, "parse sequence number")
	}
	if r.Op, err = ParseOpKind(string(fields[1])); err != nil {
		return nil, err
	}
	if r.Arg, err = strconv.Unquote(string(fields[2])); err != nil {
		return nil, errors.Annotate(err, "parse operation key")
	}
	step, ok := btree.ParseStepKind(string(fields[3]))
	if !ok {
		return nil, errors.Errorf("unknown step %q", fields[3])
	}
	r.Step = step
	if r.Key, err = strconv.Unquote(string(fields[4])); err != nil {
		return nil, errors.Annotate(err, "parse step key")
	}
	if r.Shape, err = strconv.Unquote(string(fields[5])); err != nil {
		return nil, errors.Annotate(err, "parse shape")
	}
	return r, nil
}
