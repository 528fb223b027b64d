package config

import (
	"fmt"
	"os"
	"strconv"
)

type GlobalConfig struct {
	Host string
	Port string

	// DistrictHost is the single supported district endpoint; tokens carry
	// it per-record for forward compatibility.
	DistrictHost  string
	VersionKeyURL string

	CacheEnabled    bool
	CacheTTLSeconds int
	Database        DatabaseConfig
}

type DatabaseConfig struct {
	host     string
	port     int
	user     string
	password string
	dbName   string
}

func (c DatabaseConfig) GetHost() string     { return c.host }
func (c DatabaseConfig) GetPort() int        { return c.port }
func (c DatabaseConfig) GetUser() string     { return c.user }
func (c DatabaseConfig) GetPassword() string { return c.password }
func (c DatabaseConfig) GetDBName() string   { return c.dbName }

func (c GlobalConfig) GetDatabaseConfig() DatabaseConfig {
	return c.Database
}

func NewConfig() (GlobalConfig, error) {
	host := os.Getenv("HOST")
	if host == "" {
		return GlobalConfig{}, fmt.Errorf("HOST environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		return GlobalConfig{}, fmt.Errorf("PORT environment variable is required")
	}

	// ENKEY is deliberately not validated here: the token codec loads it
	// per call and reports its absence as a distinct server-error
	// condition.

	districtHost := os.Getenv("DISTRICT_HOST")
	if districtHost == "" {
		districtHost = "md-mcps-psv.edupoint.com"
	}

	versionKeyURL := os.Getenv("VERSION_KEY_URL")
	if versionKeyURL == "" {
		versionKeyURL = "https://axum-svue.fly.dev/akey"
	}

	cfg := GlobalConfig{
		Host:            host,
		Port:            port,
		DistrictHost:    districtHost,
		VersionKeyURL:   versionKeyURL,
		CacheTTLSeconds: 300,
	}

	if ttlStr := os.Getenv("CACHE_TTL_SECONDS"); ttlStr != "" {
		ttl, err := strconv.Atoi(ttlStr)
		if err != nil {
			return GlobalConfig{}, fmt.Errorf("CACHE_TTL_SECONDS must be a valid integer: %w", err)
		}
		cfg.CacheTTLSeconds = ttl
	}

	cfg.CacheEnabled = os.Getenv("CACHE_ENABLED") == "true"
	if !cfg.CacheEnabled {
		return cfg, nil
	}

	dbHost := os.Getenv("DATABASE_HOST")
	if dbHost == "" {
		return GlobalConfig{}, fmt.Errorf("DATABASE_HOST environment variable is required")
	}

	dbPortStr := os.Getenv("DATABASE_PORT")
	if dbPortStr == "" {
		return GlobalConfig{}, fmt.Errorf("DATABASE_PORT environment variable is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return GlobalConfig{}, fmt.Errorf("DATABASE_PORT must be a valid integer: %w", err)
	}

	dbUser := os.Getenv("DATABASE_USER")
	if dbUser == "" {
		return GlobalConfig{}, fmt.Errorf("DATABASE_USER environment variable is required")
	}

	dbPass := os.Getenv("DATABASE_PASSWORD")
	if dbPass == "" {
		return GlobalConfig{}, fmt.Errorf("DATABASE_PASSWORD environment variable is required")
	}

	dbName := os.Getenv("DATABASE_NAME")
	if dbName == "" {
		return GlobalConfig{}, fmt.Errorf("DATABASE_NAME environment variable is required")
	}

	cfg.Database = DatabaseConfig{
		host:     dbHost,
		port:     dbPort,
		user:     dbUser,
		password: dbPass,
		dbName:   dbName,
	}
	return cfg, nil
}
