package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Vallehtelia/StupidHack25/internal/config"
	"github.com/Vallehtelia/StupidHack25/internal/gate"
	"github.com/Vallehtelia/StupidHack25/internal/llm"
	"github.com/Vallehtelia/StupidHack25/internal/utils"
	"github.com/Vallehtelia/StupidHack25/pkg/verdict"
)

const shutdownTimeout = 15 * time.Second

// ServerCmd represents the server command
var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the swamp gate HTTP API",
	Long: `Start the HTTP API used by the web frontend.

Endpoints:
- POST /api/shrek   {"message": "...", "conversationHistory": [...]} -> verdict JSON
- GET  /api/health  service status

Examples:
  swampgate server                          # Listen on 0.0.0.0:3001 (or $PORT)
  swampgate server --port 8080              # Custom port
  swampgate server --static-dir dist        # Also serve the built frontend
  swampgate server --cors-origins http://localhost:5173`,
	Run: runServer,
}

func init() {
	ServerCmd.Flags().IntP("port", "p", 3001, "Server port (env PORT)")
	ServerCmd.Flags().StringP("host", "H", "0.0.0.0", "Server host")
	ServerCmd.Flags().StringSlice("cors-origins", []string{"*"}, "CORS allowed origins")
	ServerCmd.Flags().String("static-dir", "", "Directory with the built frontend to serve at / (optional)")

	_ = config.BindFlags(viper.GetViper(), ServerCmd.Flags())
}

func runServer(cmd *cobra.Command, args []string) {
	env, err := gate.NewEnv(viper.GetViper())
	if err != nil {
		os.Exit(gate.WriteFatal(cmd.OutOrStdout(), err.Error()))
	}
	defer env.Close()
	log := env.Logger

	// Same fatal document as the CLI, before the port is opened.
	apiKey, err := env.Config.APIKey()
	if err != nil {
		log.Errorf("Configuration error: %v", err)
		os.Exit(gate.WriteFatal(cmd.OutOrStdout(), err.Error()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shaper, err := env.NewShaper(ctx, env.Config, apiKey, log)
	if err != nil {
		log.Errorf("Failed to initialize LLM: %v", err)
		os.Exit(gate.WriteFatal(cmd.OutOrStdout(), err.Error()))
	}

	provider, _ := llm.ValidateProvider(env.Config.Provider)
	api := NewShrekAPI(env.Config, shaper, provider, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", env.Config.Server.Host, env.Config.Server.Port),
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 30,
		IdleTimeout:  time.Second * 120,
		Handler:      api.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Infof("Server started on %s (provider: %s, model: %s)", srv.Addr, provider, llm.GetProfile(provider).ModelID)
	log.Infof("API endpoint: http://%s/api/shrek", srv.Addr)

	select {
	case err, ok := <-errCh:
		if ok {
			log.Errorf("Server failed to start: %v", err)
			_ = env.Close()
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
		return
	}

	log.Info("Server shutdown complete")
}

// ShrekAPI serves the verdict endpoint over HTTP.
type ShrekAPI struct {
	config   config.Config
	shaper   *verdict.Shaper
	provider llm.Provider
	logger   utils.ExtendedLogger
}

// NewShrekAPI creates the HTTP API around a ready shaper.
func NewShrekAPI(cfg config.Config, shaper *verdict.Shaper, provider llm.Provider, logger utils.ExtendedLogger) *ShrekAPI {
	return &ShrekAPI{
		config:   cfg,
		shaper:   shaper,
		provider: provider,
		logger:   logger,
	}
}

// Router builds the route table.
func (api *ShrekAPI) Router() *mux.Router {
	router := mux.NewRouter()

	router.Use(api.requestIDMiddleware)
	router.Use(api.corsMiddleware)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/shrek", api.handleShrek).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/health", api.handleHealth).Methods("GET")

	if dir := api.config.Server.StaticDir; dir != "" {
		router.PathPrefix("/").Handler(spaHandler{staticPath: dir, indexPath: "index.html"})
	}

	return router
}
