package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"imagestudio/internal/domain"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	ImageProvider    string
	GeminiAPIKey     string
	GeminiModel      string
	ImageOutputMIME  string
	SyntheticDelay   time.Duration
	GenerateTimeout  time.Duration
	SessionTTL       time.Duration
	DefaultPrompt    string
	DefaultAspect    domain.AspectRatio
	DefaultLocale    string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
	TrustProxy       bool
	MaxSessions      int
	MetricsEnabled   bool
}

// LookupFunc resolves a configuration key, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(os.LookupEnv)
}

// LoadConfigFrom loads configuration through lookup. Callers layer their own
// sources, such as command line flags, over the environment this way.
func LoadConfigFrom(lookup LookupFunc) (*Config, error) {
	env := source{lookup: lookup}
	cfg := &Config{
		AppEnv:           env.get("APP_ENV", "development"),
		Port:             env.get("PORT", "8080"),
		ImageProvider:    strings.ToLower(env.get("IMAGE_PROVIDER", "imagen")),
		GeminiAPIKey:     strings.TrimSpace(env.get("GEMINI_API_KEY", "")),
		GeminiModel:      env.get("GEMINI_MODEL", ""),
		ImageOutputMIME:  env.get("IMAGE_OUTPUT_MIME", "image/jpeg"),
		SyntheticDelay:   time.Millisecond * time.Duration(env.getInt("SYNTHETIC_DELAY_MS", 1500)),
		GenerateTimeout:  time.Second * time.Duration(env.getInt("GENERATE_TIMEOUT_SECONDS", 120)),
		SessionTTL:       time.Minute * time.Duration(env.getInt("SESSION_TTL_MINUTES", 60)),
		DefaultPrompt:    env.get("DEFAULT_PROMPT", domain.DefaultPrompt),
		DefaultLocale:    env.get("DEFAULT_LOCALE", "en"),
		HTTPReadTimeout:  time.Second * time.Duration(env.getInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(env.getInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(env.getInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  env.getInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      env.getList("CORS_ALLOWED_ORIGINS"),
		TrustProxy:       env.getBool("TRUST_PROXY_HEADERS", false),
		MaxSessions:      env.getInt("MAX_SESSIONS", 10000),
		MetricsEnabled:   env.getBool("METRICS_ENABLED", true),
	}

	aspect, err := domain.ParseAspectRatio(env.get("DEFAULT_ASPECT_RATIO", string(domain.DefaultAspectRatio)))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_ASPECT_RATIO: %w", err)
	}
	cfg.DefaultAspect = aspect

	switch cfg.ImageProvider {
	case "imagen", "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for IMAGE_PROVIDER=%s", cfg.ImageProvider)
		}
	case "synthetic":
	default:
		return nil, fmt.Errorf("IMAGE_PROVIDER %q is not supported", cfg.ImageProvider)
	}

	return cfg, nil
}

type source struct {
	lookup LookupFunc
}

func (s source) get(key, fallback string) string {
	if v, ok := s.lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

func (s source) getInt(key string, fallback int) int {
	if v, ok := s.lookup(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func (s source) getBool(key string, fallback bool) bool {
	if v, ok := s.lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func (s source) getList(key string) []string {
	var out []string
	for _, part := range strings.Split(s.get(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
