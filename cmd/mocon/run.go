package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mocon/serialio"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "serve the command loop over a serial device",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := serialio.DefaultConfig(viper.GetString("device"))
		cfg.Baud = viper.GetInt("baud")

		port, err := serialio.Open(cfg)
		if err != nil {
			return err
		}
		defer port.Close()

		c, closeStore, err := bootController(port)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, stop := signal.NotifyContext(context.Background(),
			os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = c.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	},
}

func init() {
	runCmd.Flags().String("device", "/dev/ttyACM0", "serial device path")
	runCmd.Flags().Int("baud", 115200, "serial baud rate")
	viper.BindPFlag("device", runCmd.Flags().Lookup("device"))
	viper.BindPFlag("baud", runCmd.Flags().Lookup("baud"))
	rootCmd.AddCommand(runCmd)
}
