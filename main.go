// Command acrohunt runs the Acronym Hunt game server.
//
// Commands:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "generate" – prints one generated grid and the terms hidden in it
//
// Flags control host/port, config directory, term catalog, results database,
// logging, and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/acrohunt/api"
	"github.com/wricardo/acrohunt/game/catalog"
	"github.com/wricardo/acrohunt/game/config"
	"github.com/wricardo/acrohunt/game/engine"
	"github.com/wricardo/acrohunt/game/results"
	"github.com/wricardo/acrohunt/game/service"
	"github.com/wricardo/acrohunt/game/session"
	"github.com/wricardo/acrohunt/transport/mcp"
	"github.com/wricardo/acrohunt/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Acrohunt Server"
)

const (
	sessionMaxAge       = 24 * time.Hour
	sessionCleanupEvery = time.Hour
	resultAttempts      = 5
)

// settings are the process-wide options shared by every command.
type settings struct {
	ConfigDir   string
	CatalogFile string
	ResultsDB   string
	SessionsDir string
}

func settingsFrom(cmd *cli.Command) settings {
	return settings{
		ConfigDir:   cmd.String("config-dir"),
		CatalogFile: cmd.String("catalog"),
		ResultsDB:   cmd.String("results-db"),
		SessionsDir: cmd.String("sessions-dir"),
	}
}

// main loads .env, builds the command tree and runs it.
func main() {
	// Load .env file if it exists, before flags read their env sources
	envErr := godotenv.Load()

	cmd := newRootCommand()
	cmd.Before = func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if err := setupLogging(cmd.String("log-level"), cmd.Bool("debug")); err != nil {
			return ctx, err
		}
		if envErr == nil {
			log.Debug().Msg("loaded environment variables from .env file")
		} else if !os.IsNotExist(envErr) {
			log.Warn().Err(envErr).Msg("error loading .env file")
		}
		return ctx, nil
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("acrohunt failed")
	}
}

func newRootCommand() *cli.Command {
	serverFlags := []cli.Flag{
		&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
		&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
		&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
		&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
		&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
	}

	return &cli.Command{
		Name:    "acrohunt",
		Usage:   "find tech abbreviations hidden in a letter grid before time runs out",
		Version: Version,
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "catalog", Usage: "Term catalog file (.json, .yaml); empty uses the built-in catalog", Sources: cli.EnvVars("CATALOG_FILE")},
			&cli.StringFlag{Name: "results-db", Usage: "SQLite file for finished games; empty keeps them in memory", Sources: cli.EnvVars("RESULTS_DB")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for session snapshots", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level (debug, info, warn, error)", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.BoolFlag{Name: "debug", Usage: "Human readable debug logging"},
		}, serverFlags...),
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  runServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, reusing a running API server or starting an internal one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "API server to reuse when reachable", Sources: cli.EnvVars("ACROHUNT_API_URL")},
				},
				Action: runStdioMCP,
			},
			{
				Name:  "generate",
				Usage: "Print a generated grid and its hidden terms",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "seed", Usage: "Random seed (0 picks one)"},
					&cli.IntFlag{Name: "size", Value: engine.DefaultGridSize, Usage: "Grid edge length"},
					&cli.IntFlag{Name: "max-terms", Value: engine.DefaultMaxTerms, Usage: "Terms to try to hide"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cat, err := loadCatalog(cmd.String("catalog"))
					if err != nil {
						return err
					}
					return generate(os.Stdout, cat, generateOptions{
						Seed:     uint64(cmd.Int("seed")),
						Size:     cmd.Int("size"),
						MaxTerms: cmd.Int("max-terms"),
					})
				},
			},
		},
	}
}

// setupLogging configures the global zerolog logger.
func setupLogging(level string, debug bool) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if debug {
		lvl = zerolog.DebugLevel
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// loadCatalog reads path, or returns the built-in catalog when path is empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if skipped := cat.Skipped(); len(skipped) > 0 {
		log.Warn().Int("skipped", len(skipped)).Str("file", path).Msg("catalog has invalid terms")
	}
	return cat, nil
}

// services bundles everything a command needs to serve games.
type services struct {
	game     service.GameService
	provider *catalog.AsyncProvider
	store    results.Store
}

// Close stops session drivers and releases the results store.
func (s *services) Close() {
	s.game.Close()
	if err := s.store.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close results store")
	}
}

// initializeServices wires catalog, session/config managers, result storage and the game service.
// The catalog loads in the background; until it is ready submits count as catalog_unavailable misses.
func initializeServices(ctx context.Context, opts settings, publisher service.Publisher) (*services, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	provider := catalog.NewAsyncProvider(func(ctx context.Context) (*catalog.Catalog, error) {
		return loadCatalog(opts.CatalogFile)
	})
	provider.OnError = func(attempt int, err error) {
		log.Warn().Err(err).Int("attempt", attempt).Msg("catalog load failed, retrying")
	}
	provider.Start(ctx)

	persistence, err := session.NewFilePersistence(opts.SessionsDir, configManager, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(provider, persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted sessions")
	}

	var store results.Store
	if opts.ResultsDB != "" {
		sqlite, err := results.OpenSQLite(opts.ResultsDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open results database: %w", err)
		}
		store = sqlite
	} else {
		store = results.NewMemoryStore()
	}

	serviceOpts := []service.Option{
		service.WithResultSink(results.NewSubmitter(store, resultAttempts)),
		service.WithLeaderboard(store),
	}
	if publisher != nil {
		serviceOpts = append(serviceOpts, service.WithPublisher(publisher))
	}

	return &services{
		game:     service.NewGameService(sessionManager, configManager, serviceOpts...),
		provider: provider,
		store:    store,
	}, nil
}

// sessionCleanupRoutine periodically drops sessions that have not been accessed
// within sessionMaxAge.
func sessionCleanupRoutine(ctx context.Context, svc service.GameService) {
	ticker := time.NewTicker(sessionCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := svc.CleanupExpired(sessionMaxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	svcs, err := initializeServices(ctx, settingsFrom(cmd), hub)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svcs.Close()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient("http://" + addr)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(svcs.game, hub))
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("version", Version).Str("addr", addr).Msg("starting " + AppName)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		sessionCleanupRoutine(gctx, svcs.game)
		return nil
	})

	g.Go(func() error {
		log.Info().
			Str("api", "http://"+addr+"/api").
			Str("websocket", "ws://"+addr+"/ws?session=<session_id>").
			Str("mcp", "http://"+addr+"/mcp").
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
		return nil
	})

	if cmd.Bool("ngrok") {
		g.Go(func() error {
			runTunnel(gctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
			return nil
		})
	}

	err = g.Wait()
	log.Info().Msg("server stopped")
	return err
}

// runTunnel serves handler through an ngrok tunnel until ctx is cancelled.
// Tunnel failures are logged and never stop the local server.
func runTunnel(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server.
// It tries to reuse an external API; if unavailable, it starts a minimal internal
// HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseURL := cmd.String("api-url")
	if apiReachable(baseURL) {
		log.Info().Str("url", baseURL).Msg("external API server found, using it for MCP")
	} else {
		log.Info().Str("url", baseURL).Msg("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)

		svcs, err := initializeServices(ctx, settingsFrom(cmd), hub)
		if err != nil {
			listener.Close()
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svcs.Close()

		httpServer := &http.Server{Handler: api.NewServer(svcs.game, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("url", baseURL).Msg("internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiReachable reports whether an Acrohunt API answers at baseURL.
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type generateOptions struct {
	Seed     uint64
	Size     int
	MaxTerms int
}

// generate prints one board from cat. A zero seed picks a random one.
func generate(w io.Writer, cat *catalog.Catalog, opts generateOptions) error {
	if opts.Size < 2 || opts.Size > engine.MaxGridSize {
		return fmt.Errorf("size must be between 2 and %d, got %d", engine.MaxGridSize, opts.Size)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	terms, err := cat.FetchAll(context.Background())
	if err != nil {
		return err
	}

	board := engine.NewGenerator(opts.Size, opts.MaxTerms, engine.DefaultPlacementAttempts, rng).Generate(terms)

	fmt.Fprintf(w, "seed: %d\n\n", seed)
	for _, row := range board.Grid.Rows() {
		fmt.Fprintf(w, "  %s\n", strings.Join(strings.Split(row, ""), " "))
	}
	fmt.Fprintf(w, "\nhidden terms (%d):\n", len(board.Placements))
	for _, p := range board.Placements {
		fmt.Fprintf(w, "  %-6s at (%d,%d) %-2s  %s\n", p.Term.Abbreviation, p.Row, p.Col, p.Direction, p.Term.FullName)
	}
	return nil
}
