package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/site-parser/internal/logging"
	"github.com/rohmanhakim/site-parser/internal/webapi"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server.",
	Long: `serve exposes the parser over HTTP: POST /api/parse runs a crawl,
GET /api/health answers liveness probes and GET /api/logs returns recent
log entries.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if level == "" {
			level = "INFO"
		}
		logger, buffer, err := logging.NewLogger(level)
		if err != nil {
			return inputError(err)
		}
		defer logger.Sync()

		host := serveHost
		if env := os.Getenv("SITE_PARSER_API_HOST"); host == "" && env != "" {
			host = env
		}
		if host == "" {
			host = "127.0.0.1"
		}
		port := servePort
		if port == 0 {
			if env := os.Getenv("SITE_PARSER_API_PORT"); env != "" {
				fmt.Sscanf(env, "%d", &port)
			}
		}
		if port == 0 {
			port = 8000
		}

		server := webapi.NewServer(logger, buffer)
		return server.Run(fmt.Sprintf("%s:%d", host, port))
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "interface to bind (default 127.0.0.1)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default 8000)")
	rootCmd.AddCommand(serveCmd)
}
