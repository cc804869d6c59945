package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mocon/nvm"
	"mocon/params"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [start [end]]",
	Short: "print raw parameter store records",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("nvm")
		if path == "" {
			return fmt.Errorf("dump needs a store file, set --nvm")
		}
		store, err := nvm.Open(path, params.Count())
		if err != nil {
			return err
		}
		defer store.Close()

		start, end := 0, params.Count()
		if len(args) > 0 {
			if start, err = strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("bad start index %q", args[0])
			}
		}
		if len(args) > 1 {
			if end, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("bad end index %q", args[1])
			}
		}
		return nvm.Dump(os.Stdout, store, start, end)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
