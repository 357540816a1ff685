package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	Storage     string // mysql|memory
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CORSOrigins []string

	PlacesBase     string
	PlacesKey      string
	PlacesRPS      int
	PlacesLocation string // "lat,lng" bias for autocomplete
	PlacesRadius   int    // meters
	PlacesTypes    string
	PlacesCacheTTL time.Duration

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	ImportWorkers  int
	ImportUserID   string
	ImportUserName string
}

// Load reads the environment, after merging an optional .env file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		Storage:     strings.ToLower(env("STORAGE_DRIVER", "mysql")),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/barmap?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),
		CORSOrigins: splitList(env("CORS_ORIGINS", "http://localhost:3000")),

		PlacesBase:     env("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesKey:      env("PLACES_API_KEY", ""),
		PlacesRPS:      atoi("PLACES_RPS", 5),
		PlacesLocation: env("PLACES_LOCATION", "40.4168,-3.7038"),
		PlacesRadius:   atoi("PLACES_RADIUS_M", 20000),
		PlacesTypes:    env("PLACES_TYPES", "bar|cafe|restaurant|night_club"),
		PlacesCacheTTL: time.Duration(atoi("PLACES_CACHE_TTL_SECONDS", 3600)) * time.Second,

		JWTSecret:   env("JWT_SECRET", ""),
		JWTIssuer:   env("JWT_ISSUER", "barmap"),
		JWTAudience: env("JWT_AUDIENCE", "barmap-api"),

		ImportWorkers:  atoi("IMPORT_WORKERS", 4),
		ImportUserID:   env("IMPORT_USER_ID", "importer"),
		ImportUserName: env("IMPORT_USER_NAME", "Importer"),
	}
	if c.PlacesKey == "" {
		log.Warn().Msg("PLACES_API_KEY is empty")
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; authenticated routes will reject every request")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
