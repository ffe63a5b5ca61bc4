package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cryingshadow/exercisegenerator-sub005/btree"
	"github.com/cryingshadow/exercisegenerator-sub005/cli"
	"github.com/cryingshadow/exercisegenerator-sub005/config"
	"github.com/cryingshadow/exercisegenerator-sub005/exercise"
	"github.com/cryingshadow/exercisegenerator-sub005/transcript"
	"github.com/fatih/color"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "btreetrace",
		Short: "Step-by-step B-tree insertion and deletion",
	}
	rootCmd.AddCommand(newReplCommand(), newExerciseCommand())

	rootCmd.SetOutput(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newReplCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Insert and delete keys interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tree, err := btree.NewOrdered[int](cfg.Degree)
			if err != nil {
				return err
			}
			scanner := bufio.NewScanner(os.Stdin)
			demo := cli.NewCli(scanner, os.Stdout, tree)
			demo.Start()
			return nil
		},
	}
	config.AddFlags(cmd.Flags())
	return cmd
}

func newExerciseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exercise",
		Short: "Generate random exercises and print their solutions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runExercises(ctx, cfg, cmd.OutOrStdout())
		},
	}
	config.AddFlags(cmd.Flags())
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := cfg.Parse(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := cfg.SetupLogger(); err != nil {
		return nil, err
	}
	if cfg.NoColor {
		color.NoColor = true
	}
	return cfg, nil
}

func runExercises(ctx context.Context, cfg *config.Config, out io.Writer) (err error) {
	defer func() {
		if err != nil {
			log.Error("exercise run failed", zap.Error(err))
		}
		_ = log.Sync()
	}()

	selector, err := exercise.NewSelector(cfg.Exercise(), nil)
	if err != nil {
		return err
	}
	exercises, err := selector.GenerateN(cfg.Exercises)
	if err != nil {
		return err
	}
	log.Info("generated exercises",
		zap.Int("count", len(exercises)),
		zap.Int("degree", cfg.Degree),
		zap.Int("jobs", cfg.Jobs))

	results, err := exercise.RunAll(ctx, exercises, cfg.Jobs)
	if err != nil {
		return err
	}
	for i, res := range results {
		printResult(out, i+1, res)
	}

	if cfg.Transcript == "" {
		return nil
	}
	return writeTranscript(cfg.Transcript, results)
}

func printResult(out io.Writer, n int, res *exercise.Result) {
	fmt.Fprintf(out, "Exercise %d: %s\n\n", n, res.Exercise)
	fmt.Fprintf(out, "Start: %s\n", res.Start)
	fmt.Fprint(out, btree.Outline(res.Start))
	for i, op := range res.Exercise.Operations {
		fmt.Fprintf(out, "\n%s\n", op)
		for j, s := range res.Traces[i] {
			fmt.Fprintf(out, "  %d. %s: %s\n", j+1, s.Step, s.Tree)
		}
		fmt.Fprint(out, (&btree.Visualizer[int]{Tree: res.Traces[i].Result()}).Visualize())
	}
	fmt.Fprintln(out)
}

func writeTranscript(path string, results []*exercise.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Annotate(err, "create transcript")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = errors.WithStack(cerr)
		}
	}()

	w := transcript.NewWriter(f)
	for _, res := range results {
		if err := res.WriteTranscript(w); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	log.Info("wrote transcript", zap.String("path", path), zap.Int("exercises", len(results)))
	return nil
}
