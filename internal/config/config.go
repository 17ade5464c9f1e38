package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Operating modes. Switching mode starts a fresh analyst identity and
// a fresh conversation.
const (
	ModeNewProduct     = "new-product"
	ModeAPIIntegration = "api-integration"
	ModeReporting      = "reporting"
)

// DefaultMode is used when an unrecognized mode string is supplied.
const DefaultMode = ModeNewProduct

// Config holds application configuration
type Config struct {
	Mode      string
	SessionID string // resume an existing session when non-empty
	Debug     bool

	DBPath      string
	GeminiKey   string
	GeminiModel string

	// Confluence publishing (optional; empty values mean demo mode)
	ConfluenceURL   string
	ConfluenceUser  string
	ConfluenceToken string
	ConfluenceSpace string
}

// Modes lists the recognized operating modes.
func Modes() []string {
	return []string{ModeNewProduct, ModeAPIIntegration, ModeReporting}
}

// LoadEnv fills the environment-sourced fields from the process
// environment, loading a .env file first when one is present.
func (c *Config) LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to load .env file", "error", err)
		}
	}

	c.GeminiKey = os.Getenv("GEMINI_API_KEY")
	if c.GeminiModel == "" {
		c.GeminiModel = getEnv("GEMINI_MODEL", "gemini-2.5-pro")
	}
	c.ConfluenceURL = os.Getenv("CONFLUENCE_URL")
	c.ConfluenceUser = os.Getenv("CONFLUENCE_USER")
	c.ConfluenceToken = os.Getenv("CONFLUENCE_API_TOKEN")
	c.ConfluenceSpace = getEnv("CONFLUENCE_SPACE", "DS")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
