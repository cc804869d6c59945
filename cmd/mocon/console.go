package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "interactive parameter and gcode console",
	Long: `Interactive console against a local engine instance.

Commands:
  get <name>            read a parameter or group ($x, $xfr, sys, ...)
  set <name> <value>    set and persist a parameter
  gcode "<block>"       run one gcode block
  sr                    emit a status report
  list                  print every group
  quit                  leave the console

Anything else is dispatched verbatim, so "$xvm=600" and "G1 X10 F600"
work exactly as they do over serial.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeStore, err := bootController(stdio{})
		if err != nil {
			return err
		}
		defer closeStore()

		sc := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				fmt.Print("> ")
				continue
			}

			words, err := shlex.Split(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "parse: %v\n", err)
				fmt.Print("> ")
				continue
			}

			switch words[0] {
			case "quit", "exit":
				return nil
			case "get":
				if len(words) == 2 {
					c.Dispatch("$" + words[1])
				} else {
					fmt.Fprintln(os.Stderr, "usage: get <name>")
				}
			case "set":
				if len(words) == 3 {
					c.Dispatch("$" + words[1] + "=" + words[2])
				} else {
					fmt.Fprintln(os.Stderr, "usage: set <name> <value>")
				}
			case "gcode":
				if len(words) == 2 {
					c.Dispatch(words[1]) // quoted block arrives as one word
				} else {
					fmt.Fprintln(os.Stderr, `usage: gcode "<block>"`)
				}
			case "sr":
				c.Dispatch("$sr")
			case "list":
				c.Dispatch("$$")
			default:
				c.Dispatch(line)
			}
			fmt.Print("> ")
		}
		return sc.Err()
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
