package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		t.Setenv("DB_HOST", "localhost")
		t.Setenv("DB_USER", "testuser")
		t.Setenv("DB_PASSWORD", "testpass")
		t.Setenv("DB_NAME", "testdb")
		t.Setenv("DB_PORT", "5433")
		t.Setenv("APP_PORT", "9090")
		t.Setenv("APP_ENV", "test")
		t.Setenv("COGNITO_REGION", "us-west-2")
		t.Setenv("COGNITO_USER_POOL_ID", "us-west-2_abc")
		t.Setenv("COGNITO_CLIENT_ID", "client-1")
		t.Setenv("COGNITO_DOMAIN", "https://auth.example.com/")
		t.Setenv("UPLOADS_BUCKET", "bucket")
		t.Setenv("UPLOADS_PUBLIC_BASE_URL", "https://cdn.example.com/")
		t.Setenv("ALLOW_MOCK_PAYMENTS", "TRUE")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
		t.Setenv("IDEMPOTENCY_TTL", "90")

		cfg := LoadConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5433", cfg.DBPort)
		assert.Equal(t, "disable", cfg.DBSSLMode)
		assert.Equal(t, "9090", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "https://auth.example.com", cfg.CognitoDomain)
		assert.Equal(t, "https://cdn.example.com", cfg.UploadsPublicBaseURL)
		assert.Equal(t, "designs", cfg.UploadsPrefix)
		assert.True(t, cfg.AllowMockPayments)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, "order.events", cfg.KafkaOrderTopic)
		assert.Equal(t, 90*time.Second, cfg.IdempotencyTTL)
		assert.Equal(t, "http://localhost:5173", cfg.WebOrigin)
	})

	t.Run("Region fallback chain", func(t *testing.T) {
		t.Setenv("DB_URL", "postgres://localhost/db")
		t.Setenv("AWS_REGION", "")
		t.Setenv("AWS_DEFAULT_REGION", "")
		t.Setenv("COGNITO_REGION", "eu-central-1")

		cfg := LoadConfig()
		assert.Equal(t, "eu-central-1", cfg.AWSRegion)

		t.Setenv("COGNITO_REGION", "")
		cfg = LoadConfig()
		assert.Equal(t, "us-west-2", cfg.AWSRegion)
	})
}

func TestCognitoIssuer(t *testing.T) {
	cfg := &Config{CognitoRegion: "us-west-2", CognitoUserPoolID: "us-west-2_pool"}
	assert.Equal(t, "https://cognito-idp.us-west-2.amazonaws.com/us-west-2_pool", cfg.CognitoIssuer())
	assert.Equal(t, "https://cognito-idp.us-west-2.amazonaws.com/us-west-2_pool/.well-known/jwks.json", cfg.JWKSURL())

	empty := &Config{}
	assert.Empty(t, empty.CognitoIssuer())
	assert.Empty(t, empty.JWKSURL())
}
