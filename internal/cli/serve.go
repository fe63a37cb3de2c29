package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/hongyanca/coding-plan-quota-query/internal/config"
	"github.com/hongyanca/coding-plan-quota-query/internal/logging"
	"github.com/hongyanca/coding-plan-quota-query/internal/quota"
	"github.com/hongyanca/coding-plan-quota-query/internal/server"
)

// runServer is replaced in tests so the command does not bind a port.
var runServer = server.Run

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP quota API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if cmd.Flags().Changed("host") {
			cfg.Server.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		return serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().String("host", "", "Address to listen on (default from config, 127.0.0.1)")
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config, 8000)")
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := serverLogger(ctx)
	if verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := quota.New(cfg, serviceOptions()...)
	router := server.NewRouter(svc, logger)

	logger.Info("Starting quota API", "account_file", cfg.AccountPath(), "debounce", cfg.DebounceWindow())
	if err := runServer(logging.WithLogger(ctx, logger), cfg.Addr(), router); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// serverLogger derives a timestamped logger from the command's one. A long
// running server reports at info level unless --quiet or --verbose says
// otherwise.
func serverLogger(ctx context.Context) *log.Logger {
	l := logging.FromContext(ctx).With()
	f := logFlags()
	f.Timestamps = true
	logging.Configure(l, f)
	if !quiet && !verbose {
		l.SetLevel(log.InfoLevel)
	}
	return l
}

func serviceOptions() []quota.Option {
	if noColor {
		return []quota.Option{quota.WithNoColor()}
	}
	return nil
}
