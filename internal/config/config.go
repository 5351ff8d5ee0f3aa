package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Email    EmailConfig
	Auth     AuthConfig
	Flights  FlightsConfig
	App      AppConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	// DSN selects the driver: "postgres://..." uses lib/pq, anything else is
	// opened as a SQLite file path (":memory:" included).
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr    string
	Enabled bool
}

type KafkaConfig struct {
	Brokers     []string
	GroupID     string
	TicketTopic string
	Enabled     bool
}

type EmailConfig struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type FlightsConfig struct {
	APIURL       string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type AppConfig struct {
	// BaseURL is used to build the ticket download fallback link embedded in
	// the e-mail, FrontendURL the password reset link.
	BaseURL     string
	FrontendURL string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:          getEnv("DATABASE_DSN", "nudem.db"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
			Enabled: getEnvBool("REDIS_ENABLED", false),
		},
		Kafka: KafkaConfig{
			Brokers:     []string{getEnv("KAFKA_ADDR", "localhost:9092")},
			GroupID:     getEnv("KAFKA_GROUP_ID", "nudem-mailer"),
			TicketTopic: getEnv("KAFKA_TOPIC_TICKET_EMAIL", "nudem.ticket.email"),
			Enabled:     getEnvBool("KAFKA_ENABLED", false),
		},
		Email: EmailConfig{
			SMTPHost: getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort: getEnvInt("SMTP_PORT", 587),
			Username: getEnv("EMAIL_USER", ""),
			Password: getEnv("EMAIL_PASS", ""),
			From:     getEnv("EMAIL_FROM", "Ñu Dem <no-reply@nudem.com>"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		},
		Flights: FlightsConfig{
			APIURL:       getEnv("FLIGHT_API_URL", ""),
			TokenURL:     getEnv("FLIGHT_TOKEN_URL", ""),
			ClientID:     getEnv("FLIGHT_CLIENT_ID", ""),
			ClientSecret: getEnv("FLIGHT_CLIENT_SECRET", ""),
			Timeout:      time.Duration(getEnvInt("FLIGHT_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		App: AppConfig{
			BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
