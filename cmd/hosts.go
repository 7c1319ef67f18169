package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/encodeous/weft/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Generates a static hosts override for nodes on the network",
	Run: func(cmd *cobra.Command, args []string) {
		cfgFile, err := os.ReadFile(centralConfigPath)
		if err != nil {
			panic(err)
		}
		cfg := state.CentralCfg{}
		err = yaml.Unmarshal(cfgFile, &cfg)
		if err != nil {
			panic(err)
		}
		hosts := make(map[string][]string)
		for _, node := range cfg.Nodes {
			if len(node.Prefixes) == 0 {
				continue
			}
			primaryIp := node.Prefixes[0].Addr().String()
			hosts[primaryIp] = append(hosts[primaryIp], string(node.Id))
		}
		sb := strings.Builder{}
		for _, ip := range slices.Sorted(maps.Keys(hosts)) {
			sb.WriteString(ip)
			names := hosts[ip]
			for _, name := range slices.Sorted(slices.Values(names)) {
				sb.WriteString(fmt.Sprintf("\t%s", name))
			}
			sb.WriteString("\n")
		}
		fmt.Print(sb.String())
	},
	GroupID: "wf",
}

func init() {
	rootCmd.AddCommand(hostsCmd)
}
