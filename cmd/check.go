package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/weft/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validates the central and node configuration files",
	Run: func(cmd *cobra.Command, args []string) {
		var centralCfg state.CentralCfg
		file, err := os.ReadFile(centralConfigPath)
		if err != nil {
			panic(err)
		}
		err = yaml.Unmarshal(file, &centralCfg)
		if err != nil {
			panic(err)
		}
		state.ExpandCentralConfig(&centralCfg)
		err = state.CentralConfigValidator(&centralCfg)
		if err != nil {
			panic(err)
		}
		claims := 0
		for _, node := range centralCfg.Nodes {
			claims += len(node.Adjacencies)
		}
		fmt.Printf("%s is valid, %d nodes, %d adjacency claims\n", centralConfigPath, len(centralCfg.Nodes), claims)

		file, err = os.ReadFile(nodeConfigPath)
		if os.IsNotExist(err) {
			fmt.Printf("%s does not exist, skipping node config check\n", nodeConfigPath)
			return
		}
		if err != nil {
			panic(err)
		}
		var nodeCfg state.LocalCfg
		err = yaml.Unmarshal(file, &nodeCfg)
		if err != nil {
			panic(err)
		}
		err = state.NodeConfigValidator(&nodeCfg)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s is valid, node %s, %d health monitors\n", nodeConfigPath, nodeCfg.Id, len(nodeCfg.Health))

		if !centralCfg.IsNode(nodeCfg.Id) {
			fmt.Printf("warning: node %s is not part of the central config\n", nodeCfg.Id)
		}
	},
	GroupID: "wf",
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
