/*
Package exercise picks random operation sequences for a B-tree and runs them,
collecting the trace of every operation. Each exercise owns its trees, so
any number of exercises can run side by side.
*/
package exercise

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/cryingshadow/exercisegenerator-sub005/transcript"
	"github.com/go-faker/faker/v4"
	"github.com/pingcap/errors"
)

// Operation is one insert or delete the student has to perform.
type Operation struct {
	Kind transcript.OpKind
	Key  int
}

func (o Operation) String() string {
	return fmt.Sprintf("%s %d", o.Kind, o.Key)
}

// Exercise is a start tree, given by the keys inserted into an empty tree,
// followed by the operations to apply.
type Exercise struct {
	Degree     int
	Initial    []int
	Operations []Operation
}

func (ex *Exercise) String() string {
	ops := make([]string, len(ex.Operations))
	for i, op := range ex.Operations {
		ops[i] = op.String()
	}
	return fmt.Sprintf("degree %d, start %v, then %s", ex.Degree, ex.Initial, strings.Join(ops, ", "))
}

// Config describes the exercises a Selector draws.
type Config struct {
	Degree      int
	Initial     int     // keys in the start tree
	Operations  int     // operations per exercise
	MinKey      int     // smallest key, inclusive
	MaxKey      int     // largest key, inclusive
	DeleteRatio float64 // chance of an operation being a delete of a present key
	AbsentRatio float64 // chance of a delete being aimed at a key that is not there
}

// MaxKeySpan bounds the size of the key range: drawing keys may take a
// permutation of the whole range.
const MaxKeySpan = 1 << 16

// Validate checks that cfg can produce an exercise.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Degree < 1:
		return errors.Errorf("invalid degree %d", cfg.Degree)
	case cfg.MinKey > cfg.MaxKey:
		return errors.Errorf("empty key range [%d, %d]", cfg.MinKey, cfg.MaxKey)
	case uint64(cfg.MaxKey)-uint64(cfg.MinKey) >= MaxKeySpan:
		return errors.Errorf("key range [%d, %d] is wider than %d keys", cfg.MinKey, cfg.MaxKey, MaxKeySpan)
	case cfg.Initial < 0 || cfg.Operations < 0:
		return errors.Errorf("negative size: %d initial keys, %d operations", cfg.Initial, cfg.Operations)
	case cfg.Initial > cfg.span():
		return errors.Errorf("%d initial keys do not fit into [%d, %d]", cfg.Initial, cfg.MinKey, cfg.MaxKey)
	case cfg.DeleteRatio < 0 || cfg.DeleteRatio > 1 || cfg.AbsentRatio < 0 || cfg.AbsentRatio > 1:
		return errors.Errorf("ratios must lie in [0, 1], got %v and %v", cfg.DeleteRatio, cfg.AbsentRatio)
	}
	return nil
}

// span is the number of keys in the range. Only valid once the range is
// known to be bounded.
func (cfg *Config) span() int {
	return cfg.MaxKey - cfg.MinKey + 1
}

// AbsentKey is the key deletes of absent keys aim at: just above the range,
// or just below it when the range ends at the largest int.
func (cfg *Config) AbsentKey() int {
	if cfg.MaxKey == math.MaxInt {
		return cfg.MinKey - 1
	}
	return cfg.MaxKey + 1
}

// Source draws random integers for a Selector.
type Source interface {
	// Ints returns count distinct integers from [min, max] in random order.
	Ints(min, max, count int) ([]int, error)
}

// FakerSource draws from go-faker's random generator.
type FakerSource struct{}

// Ints returns count distinct integers from [min, max] via faker.RandomInt.
func (FakerSource) Ints(min, max, count int) ([]int, error) {
	return faker.RandomInt(min, max, count)
}

// Selector generates random exercises.
type Selector struct {
	cfg Config
	src Source
}

// NewSelector returns a selector drawing from src, or from go-faker if src
// is nil.
func NewSelector(cfg Config, src Source) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = FakerSource{}
	}
	return &Selector{cfg: cfg, src: src}, nil
}

func (s *Selector) intn(n int) (int, error) {
	v, err := s.src.Ints(0, n-1, 1)
	if err != nil {
		return 0, errors.Annotate(err, "draw random number")
	}
	return v[0], nil
}

func (s *Selector) chance(ratio float64) (bool, error) {
	if ratio <= 0 {
		return false, nil
	}
	roll, err := s.intn(100)
	return float64(roll) < ratio*100, err
}

/*
Generate draws a new exercise. Keys are distinct: the start tree and every
insert take fresh keys from the configured range, deletes pick one of the
keys present at that point. Once the range is used up, only deletes remain;
once the tree is empty, only inserts.
*/
func (s *Selector) Generate() (*Exercise, error) {
	cfg := s.cfg
	// No exercise uses more keys than its start tree and one per insert.
	need := cfg.span()
	if cfg.Operations < need-cfg.Initial {
		need = cfg.Initial + cfg.Operations
	}
	pool, err := s.src.Ints(cfg.MinKey, cfg.MaxKey, need)
	if err != nil {
		return nil, errors.Annotate(err, "draw keys")
	}

	ex := &Exercise{
		Degree:     cfg.Degree,
		Initial:    slices.Clone(pool[:cfg.Initial]),
		Operations: make([]Operation, 0, cfg.Operations),
	}
	present := slices.Clone(ex.Initial)
	fresh := pool[cfg.Initial:]

	for len(ex.Operations) < cfg.Operations {
		del, err := s.chance(cfg.DeleteRatio)
		if err != nil {
			return nil, err
		}
		switch {
		case len(fresh) == 0:
			del = true
		case len(present) == 0:
			del = false
		}

		if !del {
			ex.Operations = append(ex.Operations, Operation{Kind: transcript.OpKindInsert, Key: fresh[0]})
			present = append(present, fresh[0])
			fresh = fresh[1:]
			continue
		}

		absent, err := s.chance(cfg.AbsentRatio)
		if err != nil {
			return nil, err
		}
		if absent || len(present) == 0 {
			ex.Operations = append(ex.Operations, Operation{Kind: transcript.OpKindDelete, Key: cfg.AbsentKey()})
			continue
		}
		i, err := s.intn(len(present))
		if err != nil {
			return nil, err
		}
		ex.Operations = append(ex.Operations, Operation{Kind: transcript.OpKindDelete, Key: present[i]})
		present = slices.Delete(present, i, i+1)
	}
	return ex, nil
}

// GenerateN draws n exercises.
func (s *Selector) GenerateN(n int) ([]*Exercise, error) {
	exercises := make([]*Exercise, 0, n)
	for i := 0; i < n; i++ {
		ex, err := s.Generate()
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, ex)
	}
	return exercises, nil
}
