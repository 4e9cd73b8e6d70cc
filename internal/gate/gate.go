// Package gate wires configuration, logging and the LLM layer into the
// verdict shaper used by the CLI commands and the HTTP server.
package gate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/Vallehtelia/StupidHack25/internal/config"
	"github.com/Vallehtelia/StupidHack25/internal/llm"
	"github.com/Vallehtelia/StupidHack25/internal/utils"
	"github.com/Vallehtelia/StupidHack25/pkg/logger"
	"github.com/Vallehtelia/StupidHack25/pkg/verdict"
)

// ShaperFactory builds a shaper for the configured provider. It is only
// called once every local check has passed.
type ShaperFactory func(ctx context.Context, cfg config.Config, apiKey string, log utils.ExtendedLogger) (*verdict.Shaper, error)

// Env is everything a command needs to serve a request.
type Env struct {
	Config    config.Config
	Logger    utils.ExtendedLogger
	NewShaper ShaperFactory
}

// NewEnv builds an Env from v. Log lines go to stderr unless a log file is
// configured.
func NewEnv(v *viper.Viper) (*Env, error) {
	cfg := config.Load(v)

	log, err := logger.CreateLogger(cfg.LogFile, cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &Env{
		Config:    cfg,
		Logger:    log,
		NewShaper: DefaultShaperFactory,
	}, nil
}

// Close releases the log file, if any.
func (e *Env) Close() error {
	if e.Logger == nil {
		return nil
	}
	return e.Logger.Close()
}

// DefaultShaperFactory initializes the provider model and applies its fixed
// request profile.
func DefaultShaperFactory(ctx context.Context, cfg config.Config, apiKey string, log utils.ExtendedLogger) (*verdict.Shaper, error) {
	provider, err := llm.ValidateProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	model, err := llm.InitializeLLM(llm.Config{
		Provider:    provider,
		APIKey:      apiKey,
		CountTokens: cfg.CountTokens,
		Logger:      log,
		Context:     ctx,
	})
	if err != nil {
		return nil, err
	}

	profile := llm.GetProfile(provider)
	return verdict.NewShaper(model,
		verdict.WithCallOptions(profile.CallOptions()...),
		verdict.WithErrorLabel(provider.Label()),
		verdict.WithLogger(log),
	), nil
}

// WriteFatal prints a failed verdict carrying msg to w and returns its exit code.
func WriteFatal(w io.Writer, msg string) int {
	return WriteVerdict(w, verdict.Failure(msg))
}

// WriteVerdict prints v to w and returns its exit code.
func WriteVerdict(w io.Writer, v verdict.Verdict) int {
	if err := v.Write(w); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write result: %v\n", err)
		return 1
	}
	return v.ExitCode()
}
