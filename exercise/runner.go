package exercise

import (
	"context"

	"github.com/cryingshadow/exercisegenerator-sub005/btree"
	"github.com/cryingshadow/exercisegenerator-sub005/transcript"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is a solved exercise: the start tree and, per operation, the trace
// leading to the next tree.
type Result struct {
	Exercise *Exercise
	Start    *btree.Tree[int]
	Traces   []btree.Trace[int]
}

// Final returns the tree after the last operation.
func (r *Result) Final() *btree.Tree[int] {
	if len(r.Traces) == 0 {
		return r.Start
	}
	return r.Traces[len(r.Traces)-1].Result()
}

// Steps returns the number of snapshots over all operations.
func (r *Result) Steps() int {
	n := 0
	for _, tr := range r.Traces {
		n += len(tr)
	}
	return n
}

// WriteTranscript appends every trace of r to a transcript.
func (r *Result) WriteTranscript(w *transcript.Writer) error {
	for i, op := range r.Exercise.Operations {
		if err := transcript.WriteTrace(w, op.Kind, op.Key, r.Traces[i]); err != nil {
			return err
		}
	}
	return nil
}

// Run builds the start tree and applies every operation, checking the tree
// after each one.
func Run(ex *Exercise) (*Result, error) {
	tree, err := btree.NewOrdered[int](ex.Degree)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Exercise: ex,
		Start:    tree.InsertAll(ex.Initial...),
		Traces:   make([]btree.Trace[int], 0, len(ex.Operations)),
	}
	if err := res.Start.Validate(); err != nil {
		return nil, errors.Annotate(err, "start tree")
	}

	tree = res.Start
	for _, op := range ex.Operations {
		var trace btree.Trace[int]
		switch op.Kind {
		case transcript.OpKindInsert:
			tree, trace = tree.Insert(op.Key)
		case transcript.OpKindDelete:
			tree, trace = tree.Delete(op.Key)
		default:
			return nil, errors.Errorf("unknown operation %s", op)
		}
		if err := tree.Validate(); err != nil {
			return nil, errors.Annotatef(err, "after %s", op)
		}
		res.Traces = append(res.Traces, trace)
	}
	return res, nil
}

// RunAll runs exercises on up to jobs goroutines. Results keep the order of
// exercises. The first failure, or ctx being done, stops dispatching.
func RunAll(ctx context.Context, exercises []*Exercise, jobs int) ([]*Result, error) {
	results := make([]*Result, len(exercises))
	eg, egCtx := errgroup.WithContext(ctx)
	if jobs > 0 {
		eg.SetLimit(jobs)
	}

	for i, ex := range exercises {
		if egCtx.Err() != nil {
			break
		}
		i, ex := i, ex
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res, err := Run(ex)
			if err != nil {
				log.Warn("exercise failed", zap.Int("index", i), zap.Stringer("exercise", ex), zap.Error(err))
				return errors.Annotatef(err, "exercise %d", i)
			}
			log.Debug("exercise solved",
				zap.Int("index", i),
				zap.Int("operations", len(ex.Operations)),
				zap.Int("steps", res.Steps()),
				zap.Stringer("final", res.Final()))
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return results, nil
}
