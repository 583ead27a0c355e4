package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/mcapidx/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the mcapidx REST API server. Scans can be requested and the
catalog browsed over HTTP. Prometheus metrics are exposed on /metrics.

Examples:
  mcapidx serve
  mcapidx serve --port 9000 --bind 0.0.0.0 --api-key mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}

		e := envFrom(cmd)
		cfg := e.cfg
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.Security.APIKey, _ = cmd.Flags().GetString("api-key")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		cat, err := openCatalog(e)
		if err != nil {
			return err
		}
		defer cat.Close()

		if cfg.Security.APIKey == "" {
			e.logger.Warn("no api key configured, authentication is disabled")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverConfig := api.ServerConfig{
			Bind:           cfg.Bind,
			Port:           cfg.Port,
			APIKey:         cfg.Security.APIKey,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Scan:           scanOptions(cmd, cfg),
		}

		e.logger.Info("starting server",
			zap.String("bind", cfg.Bind),
			zap.Int("port", cfg.Port),
			zap.String("data_dir", cfg.DataDir))

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, cat, newScanner(e), serverConfig, e.logger,
			container.GetMetrics(), container.GetRegistry())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("api-key", "", "API key for authentication")
	serveCmd.Flags().Bool("strict", false, "Fail scans of files that end without the footer magic")
}
