package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/encodeous/weft/state"
	"github.com/spf13/cobra"
)

var genKey = false

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Generates a new Weft Keypair. Outputs Private Key to stdout, Public Key to Stderr.",
	Run: func(cmd *cobra.Command, args []string) {
		privKey := state.WfPrivateKey{}
		if !genKey {
			in := bufio.NewReader(os.Stdin)
			ln, err := in.ReadString('\n')
			if err != nil {
				panic(err)
			}

			err = privKey.UnmarshalText([]byte(ln))
			if err != nil {
				return
			}
		} else {
			privKey = state.GenerateKey()
			privKeyStr, err := privKey.MarshalText()
			if err != nil {
				panic(err)
			}
			fmt.Println(string(privKeyStr))
		}

		pubKeyStr, err := privKey.Pubkey().MarshalText()
		if err != nil {
			panic(err)
		}
		_, err = fmt.Fprintln(os.Stderr, string(pubKeyStr))
		if err != nil {
			panic(err)
		}
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.Flags().BoolVarP(&genKey, "gen", "g", true, "generate a new keypair")
}
