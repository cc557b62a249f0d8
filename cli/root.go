// Package cli holds the cobra commands of the server binary.
package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/config"
	"github.com/Mukhsinh/manajemenresiko-sub007/database"
	"github.com/Mukhsinh/manajemenresiko-sub007/logger"
	"github.com/Mukhsinh/manajemenresiko-sub007/store/mongostore"
)

var (
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "manajemen-risiko",
	Short: "Hospital risk management backend",
	Long: `Backend for the hospital risk management application: risk register,
SWOT/TOWS strategic planning, monitoring and evaluation, and reports.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")

	rootCmd.AddCommand(serveCmd, seedCmd, checkCmd, indexesCmd)
}

// env is what every database-backed command needs.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	client *mongo.Client
	store  *mongostore.Store
}

func bootstrap(ctx context.Context) (*env, error) {
	cfg := config.Load(envFile)
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build logger")
	}
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	client, err := database.Connect(ctx, cfg.MongoURI, log)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:    cfg,
		log:    log,
		client: client,
		store:  mongostore.New(client.Database(cfg.DatabaseName)),
	}, nil
}

func (e *env) close() {
	database.Disconnect(e.client, e.log)
	_ = e.log.Sync()
}
