package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/cpd/internal/buildinfo"
	"github.com/darmiel/cpd/internal/logging"
)

// userConfig is the CLI defaults file, not the server configuration (see -f).
var userConfig string

const (
	CPDAddrKey  = "addr"
	CPDTokenKey = "token"
)

var rootCmd = &cobra.Command{
	Use:   "cpd",
	Short: fmt.Sprintf("cpd (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `cpd resolves client keys into verified site identities.

A key starts with the prefix of the site that issued it (ok, vk, mm, ...),
followed by a payload signed by that site. cpd checks the signature with the
site's shared secret and returns the site together with the user id on it.

Commands talk to a running server when --server (or CPD_ADDR) is set and
otherwise work on the server configuration file given with -f.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, configErr := readUserConfig()
		logging.Init(nil)
		if configErr != nil {
			return configErr
		}
		if configPath != "" {
			log.Debug().Msgf("using user config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var quiet BeQuietError
		if !errors.As(err, &quiet) {
			log.Error().Err(err).Msg("execution failed")
		}
		os.Exit(1)
	}
}

// persistentFlag is a global flag whose value can also come from the user config or CPD_* env.
type persistentFlag struct {
	name, key, value, usage string
}

var persistentFlags = []persistentFlag{
	{name: "log-level", key: logging.LevelKey, value: "info", usage: "Log level (debug, info, warn, error)"},
	{name: "log-format", key: logging.FormatKey, value: "console", usage: "Log format (console, json)"},
	{name: "server", key: CPDAddrKey, usage: "Address of the remote cpd server, e.g. http://localhost:8080"},
}

func init() {
	logging.InitDefault()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&userConfig, "user-config", "",
		"User configuration file for default values (default is .cpd.yaml in the current or home directory)")

	for _, f := range persistentFlags {
		flags.String(f.name, f.value, f.usage)
		_ = viper.BindPFlag(f.key, flags.Lookup(f.name))
	}
	flags.Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, flags.Lookup("no-color"))

	// CPD_ADDR, CPD_TOKEN, CPD_LOG_LEVEL, ...
	viper.SetEnvPrefix("CPD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// readUserConfig reads the optional CLI defaults file and returns its path if one was used.
func readUserConfig() (string, error) {
	if userConfig != "" {
		viper.SetConfigFile(userConfig)
	} else {
		viper.SetConfigName(".cpd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "cpd"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading user config: %w", err)
	}
	return viper.ConfigFileUsed(), nil
}
