package commands

import (
	"runtime"

	"github.com/spf13/cobra"
	"go.trai.ch/fcomp/internal/adapters/config"
	"go.trai.ch/fcomp/internal/app"
)

func defaultJobs() int {
	if n := runtime.NumCPU() / 2; n > 1 {
		return n
	}
	return 1
}

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build all out-of-date targets from the build specification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, _ := cmd.Flags().GetString("spec")
			jobs, _ := cmd.Flags().GetInt("jobs")
			dry, _ := cmd.Flags().GetBool("dry")
			clocks, _ := cmd.Flags().GetBool("clocks")
			return c.app.Run(cmd.Context(), app.RunOptions{
				Spec:   spec,
				Jobs:   jobs,
				Dry:    dry,
				Clocks: clocks,
			})
		},
	}
	cmd.Flags().StringP("spec", "c", config.DefaultPath, "Path to the build specification (\"-\" for stdin)")
	cmd.Flags().IntP("jobs", "j", defaultJobs(), "Number of parallel compiler invocations")
	cmd.Flags().Bool("dry", false, "Scan and build the graph only; report the would-be dirty set")
	cmd.Flags().Bool("clocks", false, "Log the slowest compilations after the run")
	return cmd
}
