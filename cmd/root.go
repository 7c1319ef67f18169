package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	nodeConfigPath    = "node.yaml"
	centralConfigPath = "central.yaml"
	centralKeyPath    = "central.key"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "Weft Link-State Topology CLI",
	Long: `Weft maintains a live view of a mesh network's link-state topology.
Every node applies the shared topology snapshot and its own link health probes to a graph of confirmed bidirectional links.`,
	// Uncomment the following line if your bare application
	// has an action associated with it:
	// Run: func(cmd *cobra.Command, args []string) { },
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Here you will define your flags and configuration settings.
	// Cobra supports persistent flags, which, if defined here,
	// will be global for your application.

	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Initialize Weft",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "wf",
		Title: "Weft Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&nodeConfigPath, "node-config", "n", nodeConfigPath, "node-specific config")
	rootCmd.PersistentFlags().StringVarP(&centralConfigPath, "central-config", "c", centralConfigPath, "network-global config")
	rootCmd.PersistentFlags().StringVarP(&centralKeyPath, "central-key", "k", centralKeyPath, "network-global administration key")
}
