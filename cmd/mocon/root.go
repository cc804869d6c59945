package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mocon/controller"
	"mocon/nvm"
	"mocon/params"
	"mocon/profile"
)

var rootCmd = &cobra.Command{
	Use:           "mocon",
	Short:         "motion controller parameter engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("nvm", "mocon.nvm", "path of the parameter store file (empty for volatile)")
	pf.String("profile", "", "settings profile to apply after boot")
	pf.String("config", "", "config file (default mocon.yaml in the working directory)")

	viper.BindPFlag("nvm", pf.Lookup("nvm"))
	viper.BindPFlag("profile", pf.Lookup("profile"))

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if cfg, _ := rootCmd.PersistentFlags().GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.SetConfigName("mocon")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/mocon")
	}
	viper.SetEnvPrefix("MOCON")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
	}
}

// openStore opens the configured parameter store, or returns nil for a
// volatile instance.
func openStore() (nvm.Store, func(), error) {
	path := viper.GetString("nvm")
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := nvm.Open(path, params.Count())
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// bootController builds and boots a controller over rw, applying the
// configured profile when one is set.
func bootController(rw io.ReadWriter) (*controller.Controller, func(), error) {
	store, closeStore, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	c := controller.New(rw, store, os.Stderr)
	if err := c.Boot(); err != nil {
		closeStore()
		return nil, nil, err
	}
	if path := viper.GetString("profile"); path != "" {
		p, err := profile.Load(path)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		if err := p.Apply(c.Engine()); err != nil {
			closeStore()
			return nil, nil, err
		}
	}
	return c, closeStore, nil
}
