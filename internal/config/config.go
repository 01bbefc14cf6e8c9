package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppPort string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	DBURL      string

	CognitoRegion             string
	CognitoUserPoolID         string
	CognitoClientID           string
	CognitoDomain             string
	CognitoLogoutURI          string
	CognitoIdentityPoolID     string
	CognitoIdentityPoolRegion string

	AWSRegion            string
	UploadsBucket        string
	UploadsPublicBaseURL string
	UploadsPrefix        string

	WebOrigin         string
	AllowMockPayments bool
	InternalSecretKey string

	RedisURL       string
	IdempotencyTTL time.Duration

	KafkaBrokers    []string
	KafkaOrderTopic string
}

// LoadConfig reads the process environment once. Nothing below cmd/ should
// read environment variables directly; components receive this struct.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:  os.Getenv("APP_ENV"),
		AppPort: getEnv("APP_PORT", "8080"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBURL:      os.Getenv("DB_URL"),

		CognitoRegion:             firstNonEmpty(os.Getenv("COGNITO_REGION"), os.Getenv("AWS_REGION")),
		CognitoUserPoolID:         os.Getenv("COGNITO_USER_POOL_ID"),
		CognitoClientID:           os.Getenv("COGNITO_CLIENT_ID"),
		CognitoDomain:             strings.TrimRight(os.Getenv("COGNITO_DOMAIN"), "/"),
		CognitoLogoutURI:          os.Getenv("COGNITO_LOGOUT_URI"),
		CognitoIdentityPoolID:     os.Getenv("COGNITO_IDENTITY_POOL_ID"),
		CognitoIdentityPoolRegion: firstNonEmpty(os.Getenv("COGNITO_IDENTITY_POOL_REGION"), os.Getenv("COGNITO_REGION"), os.Getenv("AWS_REGION")),

		AWSRegion: firstNonEmpty(
			strings.TrimSpace(os.Getenv("AWS_REGION")),
			strings.TrimSpace(os.Getenv("AWS_DEFAULT_REGION")),
			strings.TrimSpace(os.Getenv("COGNITO_REGION")),
			"us-west-2",
		),
		UploadsBucket:        os.Getenv("UPLOADS_BUCKET"),
		UploadsPublicBaseURL: strings.TrimRight(os.Getenv("UPLOADS_PUBLIC_BASE_URL"), "/"),
		UploadsPrefix:        getEnv("UPLOADS_PREFIX", "designs"),

		WebOrigin:         getEnv("WEB_ORIGIN", "http://localhost:5173"),
		AllowMockPayments: strings.EqualFold(os.Getenv("ALLOW_MOCK_PAYMENTS"), "true"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),

		RedisURL:       os.Getenv("REDIS_URL"),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order.events"),
	}

	if cfg.DBHost == "" && cfg.DBURL == "" {
		log.Fatal("Environment variables not loaded properly: DB_HOST or DB_URL is required")
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CognitoIssuer is empty when the pool is not configured.
func (c *Config) CognitoIssuer() string {
	if c.CognitoRegion == "" || c.CognitoUserPoolID == "" {
		return ""
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.CognitoRegion, c.CognitoUserPoolID)
}

func (c *Config) JWKSURL() string {
	issuer := c.CognitoIssuer()
	if issuer == "" {
		return ""
	}
	return issuer + "/.well-known/jwks.json"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
