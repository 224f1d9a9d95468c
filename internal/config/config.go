package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   []byte
	CORSOrigins []string
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	SMTPFromName  string
	SMTPFromEmail string
	AppPublicURL     string
	BackendPublicURL string
	// Link público do formulário de anamnese
	FormTokenTTLHours int
	// Proxy IBGE (BrasilAPI)
	IBGEBaseURL       string
	RequestTimeoutSec int
}

func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		jwtSecret = "default-secret-min-32-chars-required!!"
	}
	cors := os.Getenv("CORS_ORIGINS")
	if cors == "" {
		cors = "http://localhost:3000"
	}
	var origins []string
	for _, o := range strings.Split(cors, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	return &Config{
		Port:              port,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         []byte(jwtSecret),
		CORSOrigins:       origins,
		SMTPHost:          getEnv("SMTP_HOST", "localhost"),
		SMTPPort:          getEnv("SMTP_PORT", "1025"),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPass:          os.Getenv("SMTP_PASS"),
		SMTPFromName:      getEnv("SMTP_FROM_NAME", "Gerência Clínica"),
		SMTPFromEmail:     getEnv("SMTP_FROM_EMAIL", "noreply@localhost"),
		AppPublicURL:      getEnv("APP_PUBLIC_URL", "http://localhost:3000"),
		BackendPublicURL:  getEnv("BACKEND_PUBLIC_URL", "http://localhost:8080"),
		FormTokenTTLHours: getEnvInt("FORM_TOKEN_TTL_HOURS", 168),
		IBGEBaseURL:       getEnv("IBGE_BASE_URL", "https://brasilapi.com.br/api/ibge"),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 30),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return d
}
