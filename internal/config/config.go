package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"agri-credit-engine/internal/domain/borrower"

	"github.com/joho/godotenv"
)

const (
	BackendMySQL  = "mysql"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	SinkLog   = "log"
	SinkRedis = "redis"
	SinkKafka = "kafka"
)

type Config struct {
	AppPort      string
	StoreBackend string
	LogLevel     string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	SQLitePath string

	RedisAddr     string
	RedisDB       int
	RedisPassword string

	IdempTTLSecs int
	ScanBatch    int
	CASAttempts  int

	NotifySinks   []string
	NotifyChannel string
	NotifyTimeout time.Duration
	KafkaBrokers  []string
	KafkaTopic    string

	Policy borrower.Policy
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func getlist(k, d string) []string {
	var out []string
	for _, p := range strings.Split(getenv(k, d), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads the environment, after applying an optional .env file from
// the working directory. Variables already set win over the file.
func Load() *Config {
	_ = godotenv.Load()

	def := borrower.DefaultPolicy()
	c := &Config{
		AppPort:      getenv("APP_PORT", "8080"),
		StoreBackend: strings.ToLower(getenv("STORE_BACKEND", BackendMySQL)),
		LogLevel:     getenv("LOG_LEVEL", "info"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "agri"),
		MySQLUser: getenv("MYSQL_USER", "agri"),
		MySQLPass: getenv("MYSQL_PASS", "agri"),

		SQLitePath: getenv("SQLITE_PATH", "agri.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisDB:       getint("REDIS_DB", 0),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),
		ScanBatch:    getint("SCAN_BATCH_SIZE", 200),
		CASAttempts:  getint("CAS_MAX_ATTEMPTS", 3),

		NotifySinks:   getlist("NOTIFY_SINK", SinkLog),
		NotifyChannel: getenv("NOTIFY_CHANNEL", "loan-events"),
		NotifyTimeout: time.Duration(getint("NOTIFY_TIMEOUT_MS", 2000)) * time.Millisecond,
		KafkaBrokers:  getlist("KAFKA_BROKERS", ""),
		KafkaTopic:    getenv("KAFKA_TOPIC", "loan-events"),

		Policy: borrower.Policy{
			ProcessingFee:     int64(getint("PROCESSING_FEE", int(def.ProcessingFee))),
			ApprovalThreshold: getint("APPROVAL_THRESHOLD", def.ApprovalThreshold),
			LoanTerm:          time.Duration(getint("LOAN_TERM_DAYS", int(def.LoanTerm/(24*time.Hour)))) * 24 * time.Hour,
			EnforceCeiling:    getbool("ENFORCE_CEILING", def.EnforceCeiling),
		},
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.StoreBackend {
	case BackendMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("missing REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	for _, s := range c.NotifySinks {
		switch s {
		case SinkLog:
		case SinkRedis:
			if c.RedisAddr == "" {
				return errors.New("NOTIFY_SINK=redis needs REDIS_ADDR")
			}
		case SinkKafka:
			if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
				return errors.New("NOTIFY_SINK=kafka needs KAFKA_BROKERS and KAFKA_TOPIC")
			}
		default:
			return fmt.Errorf("unknown NOTIFY_SINK %q", s)
		}
	}
	if c.Policy.ApprovalThreshold < 0 || c.Policy.ApprovalThreshold > 100 {
		return fmt.Errorf("APPROVAL_THRESHOLD %d out of range 0..100", c.Policy.ApprovalThreshold)
	}
	if c.Policy.ProcessingFee < 0 {
		return errors.New("PROCESSING_FEE must not be negative")
	}
	if c.Policy.LoanTerm <= 0 {
		return errors.New("LOAN_TERM_DAYS must be positive")
	}
	if c.CASAttempts < 1 {
		return errors.New("CAS_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// UsesRedis reports whether a Redis connection is configured. The redis
// backend and sink require it; the idempotency middleware uses it when present.
func (c *Config) UsesRedis() bool { return c.RedisAddr != "" }

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
