package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strings" // strings splits list-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The backend host and service allow-list are the
// fixed scope every session grant is requested for; the treasury account is
// optional and its absence disables real-transfer mode rather than erroring.
type Config struct {
    Env              string   // application environment (e.g. "dev", "prod")
    Port             string   // HTTP port to listen on
    BackendHost      string   // marketplace backend host URL
    ServiceIDs       []string // allow-list of backend service identifiers
    TreasuryAccount  string   // destination account for real transfers (optional)
    IssuerURL        string   // delegated identity issuer URL
    DelegationSecret string   // HS256 secret shared with the issuer
    WalletAgentURL   string   // wallet agent base URL (optional; empty = no wallet)
    DBUser           string   // database username (delegation store)
    DBPass           string   // database password (optional)
    DBHost           string   // database host address
    DBPort           string   // database port number
    DBName           string   // database name
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:              must("APP_ENV"),
        Port:             must("APP_PORT"),
        BackendHost:      must("BACKEND_HOST"),
        ServiceIDs:       mustList("BACKEND_SERVICE_IDS"),
        TreasuryAccount:  os.Getenv("TREASURY_ACCOUNT_ID"), // empty disables real transfers
        IssuerURL:        must("IDENTITY_ISSUER_URL"),
        DelegationSecret: must("DELEGATION_SECRET"),
        WalletAgentURL:   os.Getenv("WALLET_AGENT_URL"), // empty means no wallet in this environment
        DBUser:           must("DB_USER"),
        DBPass:           os.Getenv("DB_PASS"),
        DBHost:           must("DB_HOST"),
        DBPort:           must("DB_PORT"),
        DBName:           must("DB_NAME"),
    }
}

// PrimaryServiceID returns the first allow-listed service, the one the
// gateway's own calls target.  The remaining entries are authorized in
// wallet grants so sibling services can be called through the same grant.
func (c Config) PrimaryServiceID() string {
    return c.ServiceIDs[0]
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

// mustList is like must() but splits the value on commas and trims blanks.
func mustList(key string) []string {
    var out []string
    for _, p := range strings.Split(must(key), ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    if len(out) == 0 {
        log.Fatalf("env var %s must list at least one service id", key)
    }
    return out
}
