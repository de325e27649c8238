package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lojasmm/quickreplies/internal/quickreply"
)

type Config struct {
	WAAPIURL        string
	WAPhoneNumberID string
	WAAccessToken   string
	WAVerifyToken   string

	APIToken string

	QRColor    string
	QRSendText string
	QRMenuText string

	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	BaseURL string
	Port    string
	DataDir string
}

func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		WAAPIURL:        os.Getenv("WA_API_URL"),
		WAPhoneNumberID: os.Getenv("WA_PHONE_NUMBER_ID"),
		WAAccessToken:   os.Getenv("WA_ACCESS_TOKEN"),
		WAVerifyToken:   os.Getenv("WA_VERIFY_TOKEN"),
		APIToken:        os.Getenv("API_TOKEN"),
		QRColor:         envOr("QR_COLOR", quickreply.DefaultColor),
		QRSendText:      envOr("QR_SEND_TEXT", quickreply.DefaultSendText),
		QRMenuText:      envOr("QR_MENU_TEXT", "Options"),
		LogFile:         os.Getenv("LOG_FILE"),
		LogMaxSizeMB:    parseIntEnv("LOG_MAX_SIZE_MB", 15),
		LogMaxBackups:   parseIntEnv("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays:   parseIntEnv("LOG_MAX_AGE_DAYS", 28),
		BaseURL:         os.Getenv("BASE_URL"),
		Port:            envOr("PORT", "8080"),
		DataDir:         envOr("DATA_DIR", "."),
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%s", cfg.Port)
	}

	if cfg.WAVerifyToken == "" {
		token, err := randomHex(16)
		if err != nil {
			return nil, fmt.Errorf("generating verify token: %w", err)
		}
		cfg.WAVerifyToken = token
	}

	for _, req := range []struct {
		name, val string
	}{
		{"WA_PHONE_NUMBER_ID", cfg.WAPhoneNumberID},
		{"WA_ACCESS_TOKEN", cfg.WAAccessToken},
		{"API_TOKEN", cfg.APIToken},
	} {
		if req.val == "" {
			return nil, fmt.Errorf("required env var %s is not set", req.name)
		}
	}

	return cfg, nil
}

// LogWriter returns where the process log goes: stderr, plus a rotated file
// when LOG_FILE is set. The returned closer flushes the file.
func (c *Config) LogWriter() (io.Writer, io.Closer) {
	if c.LogFile == "" {
		return os.Stderr, nopCloser{}
	}
	file := &lumberjack.Logger{
		Filename:   c.LogFile,
		MaxSize:    c.LogMaxSizeMB, // megabytes
		MaxBackups: c.LogMaxBackups,
		MaxAge:     c.LogMaxAgeDays, // days
		Compress:   true,
	}
	return io.MultiWriter(os.Stderr, file), file
}

// SetupLog points the standard logger at LogWriter.
func (c *Config) SetupLog() io.Closer {
	w, closer := c.LogWriter()
	log.SetOutput(w)
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
