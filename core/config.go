package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values
type Config struct {
	// Server Configuration
	Port               int  `env:"PORT" envDefault:"3001"`
	DevMode            bool `env:"DEV_MODE" envDefault:"false"`
	AuthOnly           bool `env:"AUTH_ONLY" envDefault:"false"`
	RequestTimeoutSecs int  `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"300"`
	MaxUploadMB        int  `env:"MAX_UPLOAD_MB" envDefault:"20"`
	ShutdownTimeoutSec int  `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"60"`

	// Storage
	DataDir              string `env:"DATA_DIR"`
	DBPath               string `env:"DB_PATH"`
	LogFile              string `env:"LOG_FILE" envDefault:"dreamink.log"`
	LogLevel             string `env:"LOG_LEVEL"`
	HistoryAsync         bool   `env:"HISTORY_ASYNC" envDefault:"false"`
	HistoryRetentionDays int    `env:"HISTORY_RETENTION_DAYS" envDefault:"0"`

	// Model locations. Empty per-style paths fall back to MODEL_DIR defaults.
	ModelDir         string   `env:"MODEL_DIR" envDefault:"./models"`
	PixarModelPath   string   `env:"PIXAR_MODEL_PATH"`
	CartoonModelPath string   `env:"CARTOON_MODEL_PATH"`
	ComicModelPath   string   `env:"COMIC_MODEL_PATH"`
	GhibliModelPath  string   `env:"GHIBLI_MODEL_PATH"`
	StyleCatalogPath string   `env:"STYLE_CATALOG_PATH"`
	PreloadStyles    []string `env:"PRELOAD_STYLES" envSeparator:","`

	// Expected SHA256 of the diffusion weights. Empty skips verification.
	PixarModelSHA256   string `env:"PIXAR_MODEL_SHA256"`
	CartoonModelSHA256 string `env:"CARTOON_MODEL_SHA256"`
	ComicModelSHA256   string `env:"COMIC_MODEL_SHA256"`

	// Runtime backends
	OnnxRuntimeDylib  string `env:"ONNX_RUNTIME_DYLIB"`
	SDDevice          string `env:"SD_DEVICE" envDefault:"auto"`
	SDMaxConcurrent   int    `env:"SD_MAX_CONCURRENT" envDefault:"1"`
	StyleNetSerialize bool   `env:"STYLENET_SERIALIZE" envDefault:"true"`

	// Auth
	BcryptCost        int `env:"BCRYPT_COST" envDefault:"12"`
	SigninMaxAttempts int `env:"SIGNIN_MAX_ATTEMPTS" envDefault:"5"`
	SigninWindowMin   int `env:"SIGNIN_WINDOW_MINUTES" envDefault:"15"`
	SigninBlockMin    int `env:"SIGNIN_BLOCK_MINUTES" envDefault:"30"`
}

// LoadConfig loads .env (if present) and parses the environment into a Config.
// Derived paths (DATA_DIR, DB_PATH) are filled in and the result is validated.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	return ParseConfig()
}

// ParseConfig parses the current environment without touching .env files.
func ParseConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, envParseError(err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = GetDataDirectory()
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "dreamink.db")
	}
	cfg.SDDevice = strings.ToLower(strings.TrimSpace(cfg.SDDevice))
	for _, sum := range []*string{&cfg.PixarModelSHA256, &cfg.CartoonModelSHA256, &cfg.ComicModelSHA256} {
		*sum = strings.ToLower(strings.TrimSpace(*sum))
	}
	for i, s := range cfg.PreloadStyles {
		cfg.PreloadStyles[i] = strings.ToLower(strings.TrimSpace(s))
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envParseError converts an env parse failure into a ConfigError naming the
// variable rather than the struct field.
func envParseError(err error) error {
	var pe env.ParseError
	if !errors.As(err, &pe) {
		return &ConfigError{
			Code:    ErrCodeInvalidValue,
			Message: fmt.Sprintf("Invalid environment: %v", err),
			Action:  "Fix the value in your .env file or environment",
		}
	}
	name := pe.Name
	if f, ok := reflect.TypeOf(Config{}).FieldByName(pe.Name); ok {
		if tag, _, _ := strings.Cut(f.Tag.Get("env"), ","); tag != "" {
			name = tag
		}
	}
	return ErrInvalidValue(name, os.Getenv(name), fmt.Sprintf("expected %s", pe.Type))
}

// RequestTimeout returns the outer timeout applied to HTTP requests.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// MaxUploadBytes returns the multipart upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// ModelPath resolves the model location for a model-backed style name.
// Explicit per-style paths win over the MODEL_DIR layout.
func (c *Config) ModelPath(style string) string {
	var explicit, fallback string
	switch style {
	case "pixar":
		explicit, fallback = c.PixarModelPath, "classic_anim_diffusion.safetensors"
	case "cartoon":
		explicit, fallback = c.CartoonModelPath, "classic_anim_diffusion.safetensors"
	case "comic":
		explicit, fallback = c.ComicModelPath, "dreamshaper_8.safetensors"
	case "ghibli":
		explicit, fallback = c.GhibliModelPath, "AnimeGANv3_large_Ghibli_c1_e299.onnx"
	default:
		return ""
	}
	if explicit != "" {
		return explicit
	}
	return filepath.Join(c.ModelDir, fallback)
}

// ModelChecksum returns the configured SHA256 for a diffusion style's
// weights, or "" when none is set.
func (c *Config) ModelChecksum(style string) string {
	switch style {
	case "pixar":
		return c.PixarModelSHA256
	case "cartoon":
		return c.CartoonModelSHA256
	case "comic":
		return c.ComicModelSHA256
	}
	return ""
}
