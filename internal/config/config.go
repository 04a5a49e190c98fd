package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig is a struct that contains configuration values for the server.
type ServerConfig struct {
	// AllowedOrigins is a list of URLs that the server will accept requests from.
	AllowedOrigins []string
	// AllowedEmailDomains is a list of email domains that the server will allow account registrations from. If empty,
	// all domains will be allowed.
	AllowedEmailDomains []string
	// SessionCookieName is the name to use for the session cookie.
	SessionCookieName string
	// SessionCookieExpiration is the amount of time a session cookie is valid. Firebase caps this at 14 days.
	SessionCookieExpiration time.Duration
	// Port is the port the server should run on.
	Port int
	// FirebaseCredentialsFile is the path to the Firebase service account key.
	FirebaseCredentialsFile string
	// OpenAIAPIKey authenticates against the completion service used for
	// rubric generation and grading suggestions.
	OpenAIAPIKey string
	// OpenAIModel is the chat completion model to use.
	OpenAIModel string
	// BulkGradingConcurrency is the ceiling on outstanding grading calls
	// during a bulk grading run.
	BulkGradingConcurrency int
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *ServerConfig {
	v := viper.New()
	v.SetEnvPrefix("gradebetter")
	v.AutomaticEnv()

	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("allowed_email_domains", []string{})
	v.SetDefault("session_cookie_name", "gradebetter-session")
	v.SetDefault("session_cookie_expiration", time.Hour*24*14)
	v.SetDefault("port", 8080)
	v.SetDefault("firebase_credentials_file", "firebase-config.json")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("bulk_grading_concurrency", 3)

	cfg := &ServerConfig{
		AllowedOrigins:          v.GetStringSlice("allowed_origins"),
		AllowedEmailDomains:     v.GetStringSlice("allowed_email_domains"),
		SessionCookieName:       v.GetString("session_cookie_name"),
		SessionCookieExpiration: v.GetDuration("session_cookie_expiration"),
		Port:                    v.GetInt("port"),
		FirebaseCredentialsFile: v.GetString("firebase_credentials_file"),
		OpenAIAPIKey:            v.GetString("openai_api_key"),
		OpenAIModel:             v.GetString("openai_model"),
		BulkGradingConcurrency:  v.GetInt("bulk_grading_concurrency"),
	}

	if cfg.OpenAIAPIKey == "" {
		log.Println("⚠️ No OpenAI API key configured. AI grading and rubric generation are disabled.")
	}

	return cfg
}
