package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/service"
	"github.com/darmiel/cpd/pkg/client"
)

var identifyOutputJSON bool

var identifyCmd = &cobra.Command{
	Use:   "identify <key>",
	Short: "Resolve a key into a site identity",
	Long: `Resolves the key using a remote server (--server) or locally using the
server configuration file (-f).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString(CPDAddrKey) == "" {
			return identifyLocally(cmd, args[0])
		}
		return identifyRemote(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	addConfigFlag(identifyCmd.Flags())
	identifyCmd.Flags().BoolVar(&identifyOutputJSON, "json", false, "Print the identity as JSON")
}

func identifyRemote(cmd *cobra.Command, key string) error {
	cli, err := getClient()
	if err != nil {
		return err
	}
	log.Debug().Msg("Resolving key on server...")
	identity, correlation, err := cli.Identify(cmd.Context(), key)
	switch {
	case errors.Is(err, client.ErrKeyRejected):
		return logError(err, correlation, "key was rejected")
	case errors.Is(err, client.ErrNotAccepted):
		return logError(err, correlation, "key is valid but the identity is not accepted")
	case err != nil:
		return logError(err, correlation, "failed to resolve key on server")
	}
	return printIdentity(identity, correlation)
}

func identifyLocally(cmd *cobra.Command, key string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	identityService, auditor, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = auditor.Close()
	}()

	correlation := xid.New().String()
	ctx := core.WithCorrelationID(cmd.Context(), correlation)
	ctx = log.With().Str("correlation_id", correlation).Logger().WithContext(ctx)

	resp, err := identityService.Identify(ctx, service.IdentifyRequest{Key: key})
	if err != nil {
		return logError(err, correlation, "key was rejected")
	}
	return printIdentity(&resp.Identity, correlation)
}

func printIdentity(identity *core.ClientIdentity, correlation string) error {
	if identifyOutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(identity)
	}
	fmt.Println(bold("\n── Identity ──"))
	fmt.Printf("  %s:        %s (%s)\n", faint("Site"), identity.Site.Prefix(), identity.Site.Name())
	fmt.Printf("  %s: %s\n", faint("External ID"), identity.ExternalID)
	fmt.Printf("  %s: %s\n", faint("Correlation"), correlation)
	fmt.Println()
	logSuccess("key is valid")
	return nil
}
