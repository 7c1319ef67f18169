package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect [address]",
	Aliases: []string{"i"},
	Short:   "Inspects the topology of a running weft node",
	Long:    `Fetches the rendered topology from a running node. The node must have metrics_bind set in its node config.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println("Usage: weft inspect <metrics_bind address>")
			return
		}
		addr := args[0]
		res, err := http.Get(fmt.Sprintf("http://%s/debug/topology", addr))
		if err != nil {
			fmt.Println("Error:", err.Error())
			return
		}
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		if err != nil {
			fmt.Println("Error:", err.Error())
			return
		}
		fmt.Print(string(body))
	},
	GroupID: "wf",
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
