package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/sites"
)

type parsedKey struct {
	Prefix  string
	Site    string
	Payload string
	Fields  []string

	// only set if verified against a configuration
	Identity *core.ClientIdentity
	Error    string
}

var debugParseVerify bool

var debugParseCmd = &cobra.Command{
	Use:   "parse <key>",
	Short: "Show how a key is split into its parts",
	Long: `Dumps the prefix, site and payload fields of a key.
With --verify the key is also resolved against the configuration file (-f)
and the exact reason of a rejection is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		prefix, payload, ok := core.SplitKey(key)
		if !ok {
			return fmt.Errorf("key is too short: %w", core.ErrMalformedKey)
		}

		parsed := parsedKey{
			Prefix:  prefix,
			Payload: payload,
		}
		if code, err := core.ParseSite(parsed.Prefix); err == nil {
			parsed.Site = code.Name()
		} else {
			parsed.Site = err.Error()
		}
		parsed.Fields = strings.SplitN(parsed.Payload, "-", 3)

		if debugParseVerify {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			resolver, err := sites.BuildResolver(cfg.Sites)
			if err != nil {
				return err
			}
			identity, err := resolver.Identify(key)
			if err != nil {
				var invalid *core.InvalidKeyError
				if errors.As(err, &invalid) {
					err = invalid.Cause
				}
				parsed.Error = err.Error()
			} else {
				parsed.Identity = &identity
			}
		}

		spew.Dump(parsed)
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugParseCmd)

	addConfigFlag(debugParseCmd.Flags())
	debugParseCmd.Flags().BoolVar(&debugParseVerify, "verify", false, "Resolve the key against the configuration file")
}
