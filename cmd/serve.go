package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/defectlens-cli/internal/analysis"
	"github.com/KaramelBytes/defectlens-cli/internal/server"
)

var (
	srvAddr    string
	srvOrigins []string
	srvMaxMB   int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve analysis and simulation over HTTP",
	Example: `  defectlens serve --addr 127.0.0.1:8080
  curl --data-binary @defects.csv -H 'Content-Type: text/csv' localhost:8080/api/analyze
  curl -N --data-binary @defects.csv 'localhost:8080/api/simulate?stream=1&seed=7'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := analysisOptions(analyzeCmd)
		if err != nil {
			return err
		}
		addr := srvAddr
		if !cmd.Flags().Changed("addr") && cfg != nil && cfg.ListenAddr != "" {
			addr = cfg.ListenAddr
		}
		sc := server.Config{
			Addr:           addr,
			AllowedOrigins: srvOrigins,
			MaxUploadBytes: int64(srvMaxMB) << 20,
			Analysis:       opt,
		}
		ttl := analysis.DefaultCacheTTL
		if cfg != nil {
			sc.Simulation = cfg.Simulation()
			if cfg.CacheTTLSec > 0 {
				ttl = cfg.CacheTTL()
			}
		}
		cache := analysis.NewCache(ttl, 128)
		cache.Start()
		defer cache.Stop()
		sc.Cache = cache

		log := logrus.WithField("component", "server")
		return server.New(sc, log).ListenAndServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	f := serveCmd.Flags()
	f.StringVar(&srvAddr, "addr", "127.0.0.1:8080", "listen address (default from config listen_addr)")
	f.StringSliceVar(&srvOrigins, "cors-origin", nil, "allowed CORS origins (default localhost)")
	f.IntVar(&srvMaxMB, "max-upload-mb", 32, "maximum request body size in MB")
}
