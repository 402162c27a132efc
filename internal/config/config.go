package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds runtime configuration for a moderation run. Credentials and
// course/assignment identifiers are explicit values here; nothing is read from
// package-level state.
type Config struct {
	BaseURL       string `validate:"required,url"`
	Token         string `validate:"required"`
	CourseID      int64  `validate:"gt=0"`
	AssignmentID  int64  `validate:"gt=0"`
	OutputDir     string
	SessionCookie string
	Annotate      bool
	Anonymize     bool
	Summary       bool
	HTTPTimeout   time.Duration
}

// Load reads configuration from environment variables, an optional .env file,
// and an optional bound flag set. Flags take precedence over the environment.
func Load(flags *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CANVAS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("output.dir", ".")
	v.SetDefault("http.timeout", "30s")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	timeoutString := v.GetString("http.timeout")
	timeout, err := time.ParseDuration(timeoutString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid http timeout: %w", err)
	}

	cfg := Config{
		BaseURL:       strings.TrimRight(v.GetString("base.url"), "/"),
		Token:         v.GetString("token"),
		CourseID:      v.GetInt64("course.id"),
		AssignmentID:  v.GetInt64("assignment.id"),
		OutputDir:     v.GetString("output.dir"),
		SessionCookie: v.GetString("session.cookie"),
		Annotate:      v.GetBool("annotate"),
		Anonymize:     v.GetBool("anonymise"),
		Summary:       v.GetBool("summary"),
		HTTPTimeout:   timeout,
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Annotate && cfg.SessionCookie == "" {
		return Config{}, fmt.Errorf("annotation scraping requires a session cookie")
	}

	return cfg, nil
}
