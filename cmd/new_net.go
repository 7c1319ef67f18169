package cmd

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/encodeous/weft/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// netCmd represents the new-net command
var netCmd = &cobra.Command{
	Use:   "new-net [name]",
	Short: "Create a new weft network with central configuration",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			_ = cmd.Usage()
			return
		}

		name := args[0]
		err := state.NameValidator(name)
		if err != nil {
			fmt.Printf("Invalid name: %s\n", name)
			os.Exit(-1)
		}

		nodeCfg := state.LocalCfg{
			Key: state.GenerateKey(),
			Id:  state.NodeId(name),
		}
		ncfg, err := yaml.Marshal(&nodeCfg)
		if err != nil {
			panic(err)
		}
		err = os.WriteFile(nodeConfigPath, ncfg, 0700)
		if err != nil {
			panic(err)
		}

		node := state.NodeCfg{
			Id:     nodeCfg.Id,
			PubKey: nodeCfg.Key.Pubkey(),
		}
		if prefix := cmd.Flag("prefix").Value.String(); prefix != "" {
			pfx, err := netip.ParsePrefix(prefix)
			if err != nil {
				panic(err)
			}
			node.Prefixes = []netip.Prefix{pfx}
		}

		rootKey := state.GenerateKey()
		centralConfig := state.CentralCfg{
			Nodes:     []state.NodeCfg{node},
			Timestamp: 0,
		}

		ccfg, err := yaml.Marshal(&centralConfig)
		if err != nil {
			panic(err)
		}
		err = os.WriteFile(centralConfigPath, ccfg, 0700)
		if err != nil {
			panic(err)
		}

		key, err := rootKey.MarshalText()
		if err != nil {
			panic(err)
		}
		err = os.WriteFile(centralKeyPath, key, 0700)
		if err != nil {
			panic(err)
		}

		fmt.Printf("Wrote node config to %s\n", nodeConfigPath)
		fmt.Printf("Wrote central config to %s\n", centralConfigPath)
		fmt.Printf("Wrote central key to %s, keep it safe!\n", centralKeyPath)
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(netCmd)
	netCmd.Flags().StringP("prefix", "r", "", "primary prefix originated by this node, e.g. 10.1.0.1/32")
}
