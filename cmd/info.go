package cmd

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/cpd/internal/buildinfo"
	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/sites"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the cpd version and the sites keys are resolved for",
	Long: `Shows build information and bound sites of the remote server (--server).
Without a server, the local build is shown together with the sites bound
in the configuration file, if one is given with -f.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString(CPDAddrKey) == "" {
			return infoLocally(cmd)
		}
		return infoRemote(cmd)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)

	addConfigFlag(infoCmd.Flags())
}

func infoRemote(cmd *cobra.Command) error {
	cli, err := getClient()
	if err != nil {
		return err
	}
	log.Debug().Msg("Fetching build info from server...")
	about, correlation, err := cli.Info(cmd.Context())
	if err != nil {
		return logError(err, correlation, "failed to get info from server")
	}
	printInfo("Server", &about.Info, about.Sites)
	return nil
}

func infoLocally(cmd *cobra.Command) error {
	info := buildinfo.GetBuildInfo()
	if !cmd.Flags().Changed("config") {
		printInfo("Local", &info, nil)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	resolver, err := sites.BuildResolver(cfg.Sites)
	if err != nil {
		return err
	}
	bound := resolver.Sites()
	if len(bound) == 0 {
		log.Warn().Msgf("no sites bound in '%s', every key will be rejected", configPath())
	}
	printInfo("Local", &info, bound)
	return nil
}

func printInfo(origin string, info *buildinfo.Info, bound []core.SiteCode) {
	fmt.Println(bold(fmt.Sprintf("\n── %s cpd ──", origin)))
	fmt.Printf("  %s: %s (%s)\n", faint("Version"), info.Version, info.CommitHash)
	if bound == nil {
		fmt.Println()
		return
	}
	names := make([]string, 0, len(bound))
	for _, site := range bound {
		names = append(names, fmt.Sprintf("%s (%s)", site.Prefix(), site.Name()))
	}
	if len(names) == 0 {
		names = append(names, red("none"))
	}
	fmt.Printf("  %s:   %s\n\n", faint("Sites"), strings.Join(names, ", "))
}
