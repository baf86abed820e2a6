package config

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/farellandr/influencehub/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("USE_SQLITE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "influencehub.db", cfg.SQLitePath)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 30*time.Second, cfg.PaymentLockTTL)
	assert.Equal(t, "topsecret", cfg.ReceiptSecret)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "topsecret")
	t.Setenv("RECEIPT_SECRET", "receipts")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "hub")
	t.Setenv("DB_NAME", "hub")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRATION", "2h")
	t.Setenv("PAYMENT_LOCK_TTL", "5s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "receipts", cfg.ReceiptSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 5*time.Second, cfg.PaymentLockTTL)
	assert.True(t, cfg.IsProduction())
	assert.Contains(t, cfg.postgresDSN(), "host=db.internal")
	assert.Contains(t, cfg.postgresDSN(), "sslmode=disable")
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"missing jwt secret": {"USE_SQLITE": "true"},
		"missing db host":    {"JWT_SECRET": "s"},
		"zero lock ttl":      {"JWT_SECRET": "s", "USE_SQLITE": "true", "PAYMENT_LOCK_TTL": "0s"},
		"bad duration":       {"JWT_SECRET": "s", "USE_SQLITE": "true", "JWT_EXPIRATION": "soon"},
		"admin email alone":  {"JWT_SECRET": "s", "USE_SQLITE": "true", "ADMIN_EMAIL": "root@example.com"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv("DB_HOST", "")
			t.Setenv("ADMIN_PASSWORD", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestInitDatabaseSQLiteSeedsRolesOnce(t *testing.T) {
	cfg := &Config{
		UseSQLite:  true,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}

	db, err := InitDatabase(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))

	var roles []models.Role
	require.NoError(t, db.Order("name").Find(&roles).Error)
	require.Len(t, roles, len(models.RoleNames))
	assert.Equal(t, models.RoleAdmin, roles[0].Name)
	assert.Equal(t, models.RoleBrand, roles[1].Name)
	assert.Equal(t, models.RoleCreator, roles[2].Name)
}

func TestInitDatabaseSeedsAdminOnce(t *testing.T) {
	cfg := &Config{
		UseSQLite:     true,
		SQLitePath:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		AdminEmail:    "root@example.com",
		AdminPassword: "secret123",
	}

	db, err := InitDatabase(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, SeedAdmin(db, cfg.AdminEmail, "another-password"))

	var admins []models.User
	require.NoError(t, db.Preload("Role").Where("email = ?", cfg.AdminEmail).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, models.RoleAdmin, admins[0].Role.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins[0].Password), []byte("secret123")))
}

func TestInitRedisDisabledWithoutURL(t *testing.T) {
	client, err := InitRedis(context.Background(), &Config{})
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = InitRedis(context.Background(), &Config{RedisURL: "::not a url"})
	assert.Error(t, err)
}
