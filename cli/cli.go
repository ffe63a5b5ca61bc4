package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cryingshadow/exercisegenerator-sub005/btree"
	"github.com/cryingshadow/exercisegenerator-sub005/exercise"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

type Cli struct {
	scanner    *bufio.Scanner
	out        io.Writer
	tree       *btree.Tree[int]
	empty      *btree.Tree[int]
	visualizer *btree.Visualizer[int]
	source     exercise.Source
	done       bool
}

func NewCli(s *bufio.Scanner, out io.Writer, t *btree.Tree[int]) *Cli {
	return &Cli{
		scanner:    s,
		out:        out,
		tree:       t,
		empty:      t,
		visualizer: &btree.Visualizer[int]{Tree: t},
		source:     exercise.FakerSource{},
	}
}

// Start runs the read-eval-print loop until EXIT or the end of input.
func (c *Cli) Start() {
	c.printHelp()
	c.printPrompt()
	for !c.done && c.scanner.Scan() {
		c.processInput(c.scanner.Text())
		if !c.done {
			c.printPrompt()
		}
	}
}

func (c *Cli) printHelp() {
	fmt.Fprintf(c.out, `
B-Tree CLI (degree %d)

Available Commands:
  ADD <key>...    Insert keys one after another, showing every step
  DEL <key>...    Delete keys one after another, showing every step
  SEED <n>        Insert n random keys without showing the steps
  SHOW            Print the current tree
  RESET           Start over with an empty tree
  HELP            Print this message
  EXIT            Terminate this session
`, c.tree.Degree())
}

func (c *Cli) printPrompt() {
	fmt.Fprint(c.out, "> ")
}

func (c *Cli) processInput(line string) {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return
	}
	command := strings.ToLower(fields[0])
	switch command {
	default:
		fmt.Fprintf(c.out, "Unknown command \"%s\"\n", command)
	case "add":
		c.processAddCommand(fields[1:])
	case "del":
		c.processDeleteCommand(fields[1:])
	case "seed":
		c.processSeedCommand(fields[1:])
	case "show":
		c.printTree()
	case "reset":
		c.setTree(c.empty)
		c.printTree()
	case "help":
		c.printHelp()
	case "exit":
		c.done = true
	}
}

func parseKeys(args []string) ([]int, error) {
	keys := make([]int, 0, len(args))
	for _, arg := range args {
		k, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q", arg)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (c *Cli) processAddCommand(args []string) {
	keys, err := parseKeys(args)
	if err != nil || len(keys) == 0 {
		fmt.Fprintln(c.out, "Usage: ADD <key>...")
		return
	}
	for _, k := range keys {
		tree, trace := c.tree.Insert(k)
		c.printTrace(trace)
		c.setTree(tree)
	}
}

func (c *Cli) processDeleteCommand(args []string) {
	keys, err := parseKeys(args)
	if err != nil || len(keys) == 0 {
		fmt.Fprintln(c.out, "Usage: DEL <key>...")
		return
	}
	for _, k := range keys {
		if !c.tree.Contains(k) {
			fmt.Fprintf(c.out, "Key %d not found.\n", k)
		}
		tree, trace := c.tree.Delete(k)
		c.printTrace(trace)
		c.setTree(tree)
	}
}

func (c *Cli) processSeedCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: SEED <n>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		fmt.Fprintln(c.out, "Usage: SEED <n>")
		return
	}
	keys, err := c.source.Ints(1, 10*n, n)
	if err != nil {
		log.Error("drawing seed keys failed", zap.Int("count", n), zap.Error(err))
		fmt.Fprintln(c.out, "Seeding failed.")
		return
	}
	c.setTree(c.tree.InsertAll(keys...))
	c.printTree()
}

func (c *Cli) setTree(t *btree.Tree[int]) {
	c.tree = t
	c.visualizer.Tree = t
}

func (c *Cli) printTrace(trace btree.Trace[int]) {
	for i, s := range trace {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, s.Step)
		fmt.Fprintln(c.out, s.Tree)
		fmt.Fprint(c.out, (&btree.Visualizer[int]{Tree: s.Tree}).Visualize())
	}
}

func (c *Cli) printTree() {
	fmt.Fprintln(c.out, c.tree)
	fmt.Fprint(c.out, c.visualizer.Visualize())
}
