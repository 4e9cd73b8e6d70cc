package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Viper keys shared by the command tree and Load.
const (
	KeyProvider     = "provider"
	KeyInstructions = "instructions"
	KeyOpenAIAPIKey = "openai-api-key"
	KeyGeminiAPIKey = "gemini-api-key"
	KeyLogFile      = "log-file"
	KeyLogLevel     = "log-level"
	KeyLogFormat    = "log-format"
	KeyCountTokens  = "count-tokens"
	KeyHost         = "host"
	KeyPort         = "port"
	KeyCORSOrigins  = "cors-origins"
	KeyStaticDir    = "static-dir"
)

var flagKeys = map[string]struct{}{
	KeyProvider: {}, KeyInstructions: {}, KeyLogFile: {}, KeyLogLevel: {}, KeyLogFormat: {},
	KeyCountTokens: {}, KeyHost: {}, KeyPort: {}, KeyCORSOrigins: {}, KeyStaticDir: {},
}

// DefaultInstructionsPath is where the persona file lives relative to the
// working directory.
const DefaultInstructionsPath = "prompts/ShrekInstructions.txt"

// dotEnvPaths are tried in order; the second matches running from a
// sub-directory of the checkout.
var dotEnvPaths = []string{".env", "../.env"}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host        string   `json:"host"`
	Port        int      `json:"port"`
	CORSOrigins []string `json:"cors_origins"`
	StaticDir   string   `json:"static_dir"`
}

// Config is the explicit configuration handed to every component.
type Config struct {
	Provider         string `json:"provider"`
	OpenAIAPIKey     string `json:"-"`
	GeminiAPIKey     string `json:"-"`
	InstructionsPath string `json:"instructions_path"`
	LogFile          string `json:"log_file"`
	LogLevel         string `json:"log_level"`
	LogFormat        string `json:"log_format"`
	CountTokens      bool   `json:"count_tokens"`

	Server ServerConfig `json:"server"`
}

// MissingCredentialError reports that the provider's API key env var is unset.
type MissingCredentialError struct {
	EnvVar string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s not found in environment variables", e.EnvVar)
}

// LoadDotEnv loads the first .env file found. Existing environment variables
// are never overridden. It reports the file used, or "" when none was found.
func LoadDotEnv() string {
	for _, path := range dotEnvPaths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// SetDefaults registers defaults and env bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyProvider, "openai")
	v.SetDefault(KeyInstructions, DefaultInstructionsPath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyCountTokens, false)
	v.SetDefault(KeyHost, "0.0.0.0")
	v.SetDefault(KeyPort, 3001)
	v.SetDefault(KeyCORSOrigins, []string{"*"})

	_ = v.BindEnv(KeyOpenAIAPIKey, "OPENAI_API_KEY")
	_ = v.BindEnv(KeyGeminiAPIKey, "GEMINI_API_KEY")
	_ = v.BindEnv(KeyProvider, "SWAMPGATE_PROVIDER")
	_ = v.BindEnv(KeyInstructions, "SWAMPGATE_INSTRUCTIONS")
	_ = v.BindEnv(KeyPort, "PORT")
}

// BindFlags binds every flag in flags whose name is a config key. Other flags
// are left alone. Credentials have no flags and only come from the environment.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		if _, ok := flagKeys[f.Name]; ok {
			err = v.BindPFlag(f.Name, f)
		}
	})
	return err
}

// Load builds a Config from v.
func Load(v *viper.Viper) Config {
	return Config{
		Provider:         strings.ToLower(strings.TrimSpace(v.GetString(KeyProvider))),
		OpenAIAPIKey:     strings.TrimSpace(v.GetString(KeyOpenAIAPIKey)),
		GeminiAPIKey:     strings.TrimSpace(v.GetString(KeyGeminiAPIKey)),
		InstructionsPath: v.GetString(KeyInstructions),
		LogFile:          v.GetString(KeyLogFile),
		LogLevel:         v.GetString(KeyLogLevel),
		LogFormat:        v.GetString(KeyLogFormat),
		CountTokens:      v.GetBool(KeyCountTokens),
		Server: ServerConfig{
			Host:        v.GetString(KeyHost),
			Port:        v.GetInt(KeyPort),
			CORSOrigins: v.GetStringSlice(KeyCORSOrigins),
			StaticDir:   v.GetString(KeyStaticDir),
		},
	}
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() (string, error) {
	switch c.Provider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return "", &MissingCredentialError{EnvVar: "GEMINI_API_KEY"}
		}
		return c.GeminiAPIKey, nil
	default:
		if c.OpenAIAPIKey == "" {
			return "", &MissingCredentialError{EnvVar: "OPENAI_API_KEY"}
		}
		return c.OpenAIAPIKey, nil
	}
}
