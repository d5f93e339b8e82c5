package assembly

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// HaveParallel reports whether GNU parallel is available on PATH.
func HaveParallel() bool {
	_, err := exec.LookPath("parallel")
	return err == nil
}

// initialGeneCommands expands the per-gene SPAdes template for the built-in
// pool, one fully-formed command per gene.
func initialGeneCommands(genes []string, opts Options) []string {
	fileFlag := "--12"
	if !opts.Paired {
		fileFlag = "-s"
	}

	kArg := ""
	if len(opts.Kvals) > 0 {
		kArg = fmt.Sprintf("-k %s ", strings.Join(opts.Kvals, ","))
	}

	cmds := make([]string, 0, len(genes))
	for _, gene := range genes {
		cmds = append(cmds, fmt.Sprintf("spades.py --only-assembler %s--threads 1 --cov-cutoff %d %s %s/%s_interleaved.fasta -o %s/%s_spades",
			kArg, opts.CovCutoff, fileFlag, gene, gene, gene, gene))
	}
	return cmds
}

// runGeneCommands fans the commands out over a bounded in-process pool,
// appending each command's stdout to logPath. Individual failures never
// cancel sibling genes; they are counted and surfaced once as an aggregate
// error so the caller warns the same way it would for a nonzero parallel
// exit.
func runGeneCommands(cmds []string, jobs int, logPath string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()

	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	var failures atomic.Int64
	for _, cmdStr := range cmds {
		cmdStr := cmdStr // per-iteration copy; go directive predates Go 1.22 loop semantics
		g.Go(func() error {
			cmd := exec.Command("bash", "-c", cmdStr)
			cmd.Stdout = logFile
			cmd.Stderr = os.Stderr
			if runErr := cmd.Run(); runErr != nil {
				failures.Add(1)
			}
			return nil
		})
	}

	if wErr := g.Wait(); wErr != nil {
		return wErr
	}
	if n := failures.Load(); n > 0 {
		return fmt.Errorf("%d of %d assembly commands exited non-zero", n, len(cmds))
	}
	return nil
}
