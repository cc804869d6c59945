// mocon is the motion controller configuration engine: it owns the
// parameter table, the durable settings store and the gcode front end, over
// a serial transport or an interactive console.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
