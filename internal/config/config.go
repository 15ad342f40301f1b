package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Cfg struct {
	Database   Database
	Logger     Logger
	OpenAI     OpenAI
	Browser    Browser
	Agent      Agent
	Capture    Capture
	Server     Server
	Migrations Migrations
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

type Migrations struct {
	Path string
}

type Logger struct {
	Env   string
	Level string
}

type OpenAI struct {
	KeyAI          string
	Model          string
	VisionModel    string
	MaxTokens      int
	CallsPerMinute int
}

type Browser struct {
	Display     string
	Headless    bool
	ProfilesDir string
}

type Agent struct {
	MaxSteps          int
	SettleWait        time.Duration
	LoginPollInterval time.Duration
	LoginMaxWait      time.Duration
}

type Capture struct {
	Dir string
}

type Server struct {
	Host string
	Port string
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
		},
		Logger: Logger{
			Env:   env("ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
		},
		OpenAI: OpenAI{
			KeyAI:          os.Getenv("OPENAI_API_KEY"),
			Model:          env("OPENAI_MODEL", "gpt-4o"),
			VisionModel:    env("OPENAI_VISION_MODEL", "gpt-4o"),
			MaxTokens:      envInt("OPENAI_MAX_TOKENS", 2000),
			CallsPerMinute: envInt("OPENAI_CALLS_PER_MINUTE", 15),
		},
		Browser: Browser{
			Display:     env("DISPLAY", ":0"),
			Headless:    envBool("PW_HEADLESS"),
			ProfilesDir: env("PW_PROFILES_DIR", "./browser_profiles"),
		},
		Agent: Agent{
			MaxSteps:          envInt("AGENT_MAX_STEPS", 20),
			SettleWait:        envDuration("AGENT_SETTLE_WAIT", 1*time.Second),
			LoginPollInterval: envDuration("AGENT_LOGIN_POLL", 5*time.Second),
			LoginMaxWait:      envDuration("AGENT_LOGIN_MAX_WAIT", 5*time.Minute),
		},
		Capture: Capture{
			Dir: env("CAPTURE_DIR", "./captures"),
		},
		Server: Server{
			Host: env("HTTP_HOST", "127.0.0.1"),
			Port: env("HTTP_PORT", "8080"),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
	}

	return cfg, nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
