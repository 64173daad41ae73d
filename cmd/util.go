package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/darmiel/cpd/internal/cliconfig"
	"github.com/darmiel/cpd/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()

	greenCheck = green("✔")
	redCross   = red("✘")
)

// BeQuietError signals that the error was already reported to the user.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "command failed"
}

func logError(err error, correlation, msg string) error {
	if correlation != "" {
		log.Error().Err(err).Str("correlation_id", correlation).Msgf("%s %s", redCross, msg)
	} else {
		log.Error().Err(err).Msgf("%s %s", redCross, msg)
	}
	return BeQuietError{}
}

func logSuccess(format string, args ...any) {
	log.Info().Msgf("%s %s", greenCheck, fmt.Sprintf(format, args...))
}

func serverAddr() (string, error) {
	// we need the user to provide some server address first
	server := viper.GetString(CPDAddrKey)
	if server == "" {
		return "", fmt.Errorf("server address not configured, provide via --server or CPD_ADDR")
	}
	return server, nil
}

func getClient() (*client.Client, error) {
	server, err := serverAddr()
	if err != nil {
		return nil, err
	}

	var token string
	if store, err := cliconfig.DefaultStore(); err == nil {
		cfg, err := store.Load()
		if err != nil {
			log.Warn().Err(err).Msg("ignoring saved credentials")
		} else if credential, err := cfg.GetCredential(server); err == nil {
			token = credential.Token // token prio 1: saved credential
		} else if !errors.Is(err, cliconfig.ErrCredentialNotFound) {
			return nil, err
		}
	}
	if envToken := viper.GetString(CPDTokenKey); envToken != "" { // token prio 2: CPD_TOKEN
		token = envToken
	}

	return client.New(server, client.WithAuthToken(token)), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
