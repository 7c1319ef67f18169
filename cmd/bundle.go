package cmd

import (
	"bytes"
	"os"

	"github.com/encodeous/weft/state"
	"github.com/spf13/cobra"
)

// bundleCmd represents the bundle command
var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Bundles the current central configuration, ready for distribution across nodes",
	Run: func(cmd *cobra.Command, args []string) {
		cfgFile, err := os.ReadFile(centralConfigPath)
		if err != nil {
			panic(err)
		}
		keyFile, err := os.ReadFile(centralKeyPath)
		if err != nil {
			panic(err)
		}
		key := &state.WfPrivateKey{}
		err = key.UnmarshalText(bytes.TrimSpace(keyFile))
		if err != nil {
			panic(err)
		}
		bundle, err := state.BundleConfig(string(cfgFile), *key)
		if err != nil {
			panic(err)
		}

		err = os.WriteFile("central.wfbundle", []byte(bundle), 0700)
		if err != nil {
			panic(err)
		}
		println("Wrote bundle to central.wfbundle")
	},
	GroupID: "wf",
}

func init() {
	rootCmd.AddCommand(bundleCmd)
}
