// Command cliworker runs a list of shell commands across a worker pool,
// printing each one's captured stdout as it completes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/lxops/cliworker/cliexec"
	"github.com/lxops/cliworker/logger"
	"github.com/lxops/cliworker/pool"
)

type cmdGlobal struct {
	cmd      *cobra.Command
	flagJobs int
}

func main() {
	global := &cmdGlobal{}

	app := &cobra.Command{
		Use:   "cliworker <command>...",
		Short: "Run shell commands across a worker pool",
		Args:  cobra.MinimumNArgs(1),
		RunE:  global.run,
	}
	global.cmd = app
	app.Flags().IntVar(&global.flagJobs, "jobs", 0, "number of worker goroutines (0 = runtime.NumCPU)")

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (g *cmdGlobal) run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logger.New()

	work := cliexec.WorkFunc(func(command string) *cliexec.Controller {
		return &cliexec.Controller{
			CallString: command,
			StdoutMode: cliexec.Capture,
			StderrMode: cliexec.Capture,
		}
	})

	mgr := pool.New(work, g.flagJobs, pool.WithLogger(log))

	items := make(chan string, len(args))
	for _, a := range args {
		items <- a
	}
	close(items)

	for res := range mgr.Run(ctx, items) {
		fmt.Printf("job %d:\n%s", res.Label, res.Value.Stdout)
		if len(res.Value.Stderr) > 0 {
			fmt.Fprintf(os.Stderr, "job %d stderr:\n%s", res.Label, res.Value.Stderr)
		}
	}

	if err := mgr.Err(); err != nil {
		label, ok := mgr.FailedLabel()
		if ok {
			return fmt.Errorf("job %d failed: %w", label, err)
		}
		return err
	}

	return nil
}
