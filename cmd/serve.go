package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Shrike-Security/shrike-guard-go/internal/audit"
	"github.com/Shrike-Security/shrike-guard-go/internal/dashboard"
	"github.com/Shrike-Security/shrike-guard-go/internal/proxy"
)

var (
	serveConfigFile string
	serveEndpoint   string
	serveFailMode   string
	serveTimeout    time.Duration
	listenAddr      string
	upstreamURL     string
	auditFile       string
	noDashboard     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Shrike Guard reverse proxy",
	Long: `Start an HTTP reverse proxy in front of an OpenAI-compatible server.
Chat prompts are scanned before they are forwarded; blocked prompts never
reach the upstream.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "Path to shrike.yaml config file")
	serveCmd.Flags().StringVar(&serveEndpoint, "endpoint", "", "Scan backend URL (overrides config)")
	serveCmd.Flags().StringVar(&serveFailMode, "fail-mode", "", "Fail mode: open or closed (overrides config)")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 0, "Scan timeout (overrides config)")
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "Address to listen on")
	serveCmd.Flags().StringVar(&upstreamURL, "upstream", "http://localhost:11434", "Upstream LLM server URL")
	serveCmd.Flags().StringVar(&auditFile, "audit-log", "", "Path to audit log file (default: stderr)")
	serveCmd.Flags().BoolVar(&noDashboard, "no-dashboard", false, "Disable the real-time dashboard")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("component", "shrike-guard").Logger()

	cfg, err := loadConfig(serveConfigFile, serveEndpoint, serveFailMode, serveTimeout)
	if err != nil {
		return err
	}
	scanner, err := newScanClient(cfg)
	if err != nil {
		return err
	}
	defer scanner.Close()

	logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("fail_mode", string(cfg.FailMode)).
		Dur("scan_timeout", cfg.ScanTimeout).
		Msg("configuration loaded")

	var auditLogger *audit.Logger
	if auditFile != "" {
		auditLogger, err = audit.NewFileLogger(auditFile)
		if err != nil {
			return fmt.Errorf("creating audit logger: %w", err)
		}
		logger.Info().Str("path", auditFile).Msg("audit log enabled")
	} else {
		auditLogger = audit.NewStderrLogger()
	}

	guardProxy, err := proxy.New(scanner, cfg.FailMode, upstreamURL, logger)
	if err != nil {
		return fmt.Errorf("creating proxy: %w", err)
	}
	guardProxy.AddObserver(auditLogger.OnEvent)

	var handler http.Handler = guardProxy

	if !noDashboard {
		hub := dashboard.NewHub(dashboard.ProxyInfo{
			Endpoint: cfg.Endpoint,
			FailMode: string(cfg.FailMode),
			Upstream: upstreamURL,
		})
		guardProxy.AddObserver(hub.OnEvent)
		dashboard.Run(context.Background(), hub)

		dashHandler := dashboard.Handler(hub)
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/_shrike") {
				dashHandler.ServeHTTP(w, r)
				return
			}
			guardProxy.ServeHTTP(w, r)
		})
	}

	logger.Info().
		Str("listen", listenAddr).
		Str("upstream", upstreamURL).
		Msg("starting shrike guard proxy")

	fmt.Fprintf(os.Stderr, "\n  Shrike Guard v%s\n", Version)
	fmt.Fprintf(os.Stderr, "  Listen:    %s\n", listenAddr)
	fmt.Fprintf(os.Stderr, "  Upstream:  %s\n", upstreamURL)
	fmt.Fprintf(os.Stderr, "  Backend:   %s\n", cfg.Endpoint)
	fmt.Fprintf(os.Stderr, "  Fail mode: %s\n", cfg.FailMode)
	if !noDashboard {
		dashAddr := listenAddr
		if strings.HasPrefix(dashAddr, ":") {
			dashAddr = "localhost" + dashAddr
		}
		fmt.Fprintf(os.Stderr, "  Dashboard: http://%s/_shrike/\n", dashAddr)
	}
	fmt.Fprintln(os.Stderr)

	return http.ListenAndServe(listenAddr, handler)
}
