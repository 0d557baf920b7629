package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/aussiebroadwan/workouttracker/internal/auth/app"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func main() {
	// A missing .env is fine; real deployments use the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app.ApplyDefaults(viper.GetViper())

	root := &cobra.Command{
		Use:          "identity",
		Short:        "WorkoutTracker identity service",
		Version:      app.BuildVersion,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return initConfig()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(*cobra.Command, []string) error {
			cfg, err := app.LoadConfig(viper.GetViper())
			if err != nil {
				return err
			}

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
	serve.Flags().Int("port", 8080, "HTTP listen port")
	bindFlag(serve, "http.port", "port")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			file := viper.GetString("database.file")
			st, err := app.OpenStore(file)
			if err != nil {
				return err
			}
			defer st.Close()

			version, dirty, err := st.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (dirty=%t)\n", file, version, dirty)
			return nil
		},
	}

	encrypt := &cobra.Command{
		Use:   "encrypt-secret <plaintext>",
		Short: "Encrypt a secret with the configured encryption key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := app.DecodeEncryptionKey(viper.GetString("encryption.key"))
			if err != nil {
				return err
			}

			envelope, err := app.EncryptSecret(key, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), envelope)
			return nil
		},
	}

	root.AddCommand(serve, migrate, encrypt)
	return root
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile == "" {
		return nil
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return nil
}
