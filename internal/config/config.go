package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Dependencies are constructed from this
// struct in main and passed down explicitly; nothing reads the
// environment after startup.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	JWTSecret        string // secret used to sign JWTs
	AccessTTLMin     int    // access token time-to-live in minutes
	RefreshTTLDays   int    // refresh token time-to-live in days
	BcryptCost       int    // bcrypt cost for password hashing
	ListingFee       int64  // credits debited when a seller lists a product
	SignupBonus      int64  // credits granted when a user verifies their email
	LockoutThreshold int    // consecutive failed logins before lockout
	LockoutMinutes   int    // lockout window length in minutes
	SignupAutoVerify bool   // skip the email code and grant the bonus at registration
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Business knobs
// (fee, bonus, lockout) have defaults matching production behavior.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:   mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:       mustInt("BCRYPT_COST"),
		ListingFee:       int64(defaultInt("LISTING_FEE_CREDITS", 50)),
		SignupBonus:      int64(defaultInt("VERIFICATION_BONUS_CREDITS", 100)),
		LockoutThreshold: defaultInt("LOGIN_LOCKOUT_THRESHOLD", 5),
		LockoutMinutes:   defaultInt("LOGIN_LOCKOUT_MINUTES", 30),
		SignupAutoVerify: os.Getenv("SIGNUP_AUTO_VERIFY") == "true",
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// defaultInt reads an optional integer variable, falling back to def when
// unset. Invalid values are fatal rather than silently ignored.
func defaultInt(key string, def int) int {
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
