package cmd

import (
	"os"

	"github.com/encodeous/weft/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var bundlePath string

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [public key]",
	Short: "Verifies the provided bundle against the public key",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 || args[0] == "" {
			panic("expecting argument public key")
		}
		pkey := &state.WfPublicKey{}
		err := pkey.UnmarshalText([]byte(args[0]))
		if err != nil {
			panic(err)
		}

		bundleStr, err := os.ReadFile(bundlePath)
		if err != nil {
			panic(err)
		}
		config, err := state.UnbundleConfig(string(bundleStr), *pkey)
		if err != nil {
			panic(err)
		}

		cfgYaml, err := yaml.Marshal(config)
		if err != nil {
			panic(err)
		}

		println("Bundle is valid")
		println(string(cfgYaml))
	},
	GroupID: "wf",
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&bundlePath, "bundle", "b", "central.wfbundle", "Path to bundle file")
}
