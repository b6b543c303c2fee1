package main

import (
	"fmt"
	"net"
	"os"

	handlers "github.com/de-tools/ems-atlas/pkg/handlers/report"
	"github.com/de-tools/ems-atlas/pkg/runtime/environment"
	"github.com/de-tools/ems-atlas/pkg/server"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	profile string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for the EMS report views",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the settings file (EMS_* variables otherwise)")
	rootCmd.Flags().StringVarP(&profile, "profile", "p", "", "Backend profile from ~/.emscfg")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	env, err := environment.Load(ctx, environment.Options{ConfigPath: cfgPath, Profile: profile})
	if err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	defer func() {
		if err := env.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close session database")
		}
	}()

	logger.Info().Msgf("Using backend `%s` from profile `%s`.", env.Profile.Host, env.Profile.String())
	logger.Info().Msgf("Serving the following reports:")
	for _, def := range env.Reports.List() {
		logger.Info().Msgf("Type: `%s`, Entity: `%s`", def.Type, def.EntityKind)
	}

	manager := env.NewManager()

	settings := env.Settings.Server
	api := server.NewWebAPI(server.Config{
		Addr:            net.JoinHostPort(settings.Host, settings.Port),
		ShutdownTimeout: settings.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Views:      handlers.FromManager(manager),
			Translator: env.Translator,
			Redirects:  env.Redirect,
			Logger:     logger,
			OnShutdown: manager.Close,
		},
	})

	return api.Start()
}
