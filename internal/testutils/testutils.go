package testutils

import (
	"testing"

	"github.com/nfrund/eventhub/internal/config"
)

// testEnv is the environment the server tests run with. Nothing in it
// reaches the network: stores are in memory and email goes to the log.
var testEnv = map[string]string{
	"SERVER_ADDR":        "127.0.0.1:0",
	"APP_BASE_URL":       "http://eventhub.test",
	"SESSION_SECRET":     "a-very-secret-key-for-testing-!",
	"AUTH_TOKEN_TTL":     "1h",
	"SURREAL_URL":        "ws://localhost:8000/rpc",
	"SURREAL_NS":         "test",
	"SURREAL_DB":         "test",
	"EMAIL_PROVIDER":     "log",
	"EMAIL_SENDER":       "noreply@eventhub.test",
	"CHAT_POLL_INTERVAL": "50ms",
	"DEEPSEEK_API_KEY":   "",
	"OPENAI_API_KEY":     "",
	"GEMINI_API_KEY":     "",
}

// ConfigForTests sets a complete test environment and returns the config
// loaded from it. File storage points at a per-test temporary directory.
func ConfigForTests(t *testing.T) *config.Config {
	t.Helper()

	for key, value := range testEnv {
		t.Setenv(key, value)
	}
	t.Setenv("STORAGE_DIR", t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}
	return cfg
}
