package cmd

import (
	"github.com/encodeous/weft/core"
	"github.com/encodeous/weft/state"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run weft",
	Long:  `This will run weft on the current host. The node will keep restarting itself whenever a newer central configuration is fetched from a repo.`,
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logPath, _ := cmd.Flags().GetString("log")
		core.Bootstrap(centralConfigPath, nodeConfigPath, logPath, verbose)
	},
	GroupID: "wf",
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Here you will define your flags and configuration settings.

	// Cobra supports Persistent Flags which will work for this command
	// and all subcommands, e.g.:
	// runCmd.PersistentFlags().String("foo", "", "A help for foo")

	// Cobra supports local flags which will only run when this command
	// is called directly, e.g.:
	// runCmd.Flags().BoolP("toggle", "t", false, "Help message for toggle")

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	runCmd.Flags().String("log", "", "Also log to this file")
	runCmd.Flags().BoolVarP(&state.DBG_log_topology, "ltopo", "t", false, "Write the rendered topology to console on changes")
	runCmd.Flags().BoolVarP(&state.DBG_log_repo_updates, "lrepo", "g", false, "Write snapshot repo polling to console")
	runCmd.Flags().BoolVarP(&state.DBG_trace, "trace", "x", false, "Write a runtime execution trace to trace.out")
	runCmd.Flags().BoolVarP(&state.DBG_debug, "pprof", "p", false, "Serve pprof and metrics on 0.0.0.0:6060")
}
