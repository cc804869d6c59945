package main

import (
	"os"

	"github.com/spf13/cobra"
)

// stdio adapts the terminal to the controller's transport surface.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

var getCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "read one parameter or group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := bootController(stdio{})
		if err != nil {
			return err
		}
		defer closeStore()
		return c.Engine().Exec("$" + args[0])
	},
}

var setCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "set one parameter and persist it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := bootController(stdio{})
		if err != nil {
			return err
		}
		defer closeStore()
		return c.Engine().Exec("$" + args[0] + "=" + args[1])
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "print every parameter group",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := bootController(stdio{})
		if err != nil {
			return err
		}
		defer closeStore()
		return c.Engine().PrintAll()
	},
}

func init() {
	rootCmd.AddCommand(getCmd, setCmd, listCmd)
}
