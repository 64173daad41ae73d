package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/sites"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List known sites and whether keys can be resolved for them",
	RunE: func(cmd *cobra.Command, args []string) error {
		var bound []core.SiteCode
		if viper.GetString(CPDAddrKey) != "" {
			cli, err := getClient()
			if err != nil {
				return err
			}
			log.Debug().Msg("Fetching bound sites from server...")
			var correlation string
			bound, correlation, err = cli.Sites(cmd.Context())
			if err != nil {
				return logError(err, correlation, "failed to get sites from server")
			}
		} else {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			resolver, err := sites.BuildResolver(cfg.Sites)
			if err != nil {
				return err
			}
			bound = resolver.Sites()
		}
		renderSites(bound)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)

	addConfigFlag(sitesCmd.Flags())
}

func renderSites(bound []core.SiteCode) {
	isBound := make(map[core.SiteCode]bool, len(bound))
	for _, code := range bound {
		isBound[code] = true
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Prefix", "Site", "Bound"})
	for _, code := range core.Sites() {
		status := redCross
		if isBound[code] {
			status = greenCheck
		}
		t.AppendRow(table.Row{code.Prefix(), code.Name(), status})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
