package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
// The value is constructed once at startup and passed by value; nothing
// mutates it afterwards.
type Config struct {
    Env          string // application environment (e.g. "dev", "prod")
    Port         string // HTTP port to listen on
    Version      string // reported by the health endpoint
    DBDriver     string // "mysql" (default) or "sqlite3"
    DBUser       string // database username
    DBPass       string // database password (optional)
    DBHost       string // database host address
    DBPort       string // database port number
    DBName       string // database name (file path for sqlite3)
    SecretKey    string // secret used to sign access tokens
    AccessTTLMin int    // access token time‑to‑live in minutes
    BcryptCost   int    // bcrypt cost for password hashing
    AuditEvents  bool   // publish entity-change events to the broker
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The sqlite3 driver
// only needs DB_NAME, so the MySQL connection variables become optional
// when it is selected.
func Load() Config {
    driver := envOr("DB_DRIVER", "mysql")
    cfg := Config{
        Env:          must("APP_ENV"),              // environment (dev/test/prod)
        Port:         must("APP_PORT"),             // port to bind the HTTP server
        Version:      envOr("APP_VERSION", "1.0.0"),
        DBDriver:     driver,
        DBName:       must("DB_NAME"),              // database name or sqlite file
        SecretKey:    must("SECRET_KEY"),           // secret used for signing JWTs
        AccessTTLMin: intOr("ACCESS_TOKEN_TTL_MIN", 30), // TTL for access tokens in minutes
        BcryptCost:   intOr("BCRYPT_COST", 10),     // bcrypt cost factor
        AuditEvents:  envOr("AUDIT_EVENTS_ENABLED", "false") == "true",
    }
    if driver == "mysql" {
        cfg.DBUser = must("DB_USER")        // database user
        cfg.DBPass = os.Getenv("DB_PASS")   // database password (empty allowed)
        cfg.DBHost = must("DB_HOST")        // database host
        cfg.DBPort = must("DB_PORT")        // database port
    }
    return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// envOr returns the variable's value or a default when unset.
func envOr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// intOr is like envOr but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func intOr(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
