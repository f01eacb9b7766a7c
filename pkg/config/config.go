package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"votetopics/pkg/domain"
)

const (
	configPathEnv      = "VOTETOPICS_CONFIG"
	storeDriverEnv     = "STORE_DRIVER"
	supabaseURLEnv     = "SUPABASE_URL"
	supabaseKeyEnv     = "SUPABASE_SERVICE_ROLE_KEY"
	databaseDSNEnv     = "DATABASE_DSN"
	mongoURIEnv        = "MONGODB_URI"
	redisAddrEnv       = "REDIS_ADDR"
	kafkaBrokersEnv    = "KAFKA_BROKERS"
	logLevelEnv        = "LOG_LEVEL"
	serverAddrEnv      = "SERVER_ADDR"
	scheduleCronEnv    = "SCHEDULE_CRON"
	readabilityEnv     = "ENRICHER_READABILITY"
	defaultTable       = "voting_topics"
	defaultMongoDBName = "votetopics"
)

// Store drivers.
const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// ErrMissingStoreConfig is returned when the storage endpoint or credential is absent.
var ErrMissingStoreConfig = errors.New("missing storage configuration")

// Config holds every setting of the ingestion service.
type Config struct {
	Logging  LoggingConfig   `yaml:"logging"`
	HTTP     HTTPConfig      `yaml:"http"`
	Server   ServerConfig    `yaml:"server"`
	Schedule ScheduleConfig  `yaml:"schedule"`
	Pipeline PipelineConfig  `yaml:"pipeline"`
	Enricher EnricherConfig  `yaml:"enricher"`
	Store    StoreConfig     `yaml:"store"`
	Cache    CacheConfig     `yaml:"cache"`
	Events   EventsConfig    `yaml:"events"`
	Sweep    SweepConfig     `yaml:"sweep"`
	Rules    Rules           `yaml:"rules"`
	Sources  []domain.Source `yaml:"sources"`
}

// LoggingConfig selects level and output format ("json" or "console").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig bounds every outbound request.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// ServerConfig configures the trigger API.
type ServerConfig struct {
	Addr           string  `yaml:"addr"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	Release        bool    `yaml:"release"`
}

// ScheduleConfig holds the cron expression for periodic runs. Empty disables the schedule.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// PipelineConfig holds the caps and thresholds applied during a run.
type PipelineConfig struct {
	RunBudget         time.Duration `yaml:"run_budget"`
	MaxItemsPerSource int           `yaml:"max_items_per_source"`
	MinTitleLength    int           `yaml:"min_title_length"`
	DescriptionLimit  int           `yaml:"description_limit"`
	ContentLimit      int           `yaml:"content_limit"`
	MaxFacts          int           `yaml:"max_facts"`
	MinFacts          int           `yaml:"min_facts"`
}

// EnricherConfig toggles the optional readability strategy.
type EnricherConfig struct {
	ReadabilityFallback bool `yaml:"readability_fallback"`
}

// StoreConfig selects and configures the topic storage backend.
type StoreConfig struct {
	Driver        string `yaml:"driver"`
	Table         string `yaml:"table"`
	SupabaseURL   string `yaml:"supabase_url"`
	SupabaseKey   string `yaml:"supabase_key"`
	DSN           string `yaml:"dsn"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	MaxOpenConns  int    `yaml:"max_open_conns"`
}

// CacheConfig enables the Redis article cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// EventsConfig enables topic.created events when brokers are set.
type EventsConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	Topic        string   `yaml:"topic"`
}

// SweepConfig describes the stale-topic signature as ILIKE patterns.
type SweepConfig struct {
	TitlePatterns       []string `yaml:"title_patterns"`
	DescriptionPatterns []string `yaml:"description_patterns"`
}

// Rules are the keyword tables driving the heuristics. They are data, not code,
// so they can be tuned from the YAML file.
type Rules struct {
	Debatable       []string       `yaml:"debatable"`
	Exclude         []string       `yaml:"exclude"`
	Stale           []string       `yaml:"stale"`
	PastYears       []int          `yaml:"past_years"`
	PastYearContext []string       `yaml:"past_year_context"`
	Retrospective   []string       `yaml:"retrospective"`
	TitleBlocklist  []string       `yaml:"title_blocklist"`
	QuestionMarkers []string       `yaml:"question_markers"`
	Categories      []CategoryRule `yaml:"categories"`
}

// CategoryRule maps a category to the title keywords that select it.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Load reads .env, the YAML file (path argument wins over VOTETOPICS_CONFIG) and env overrides.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Validate checks that the selected store has its endpoint and credential.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSupabase:
		if c.Store.SupabaseURL == "" || c.Store.SupabaseKey == "" {
			return fmt.Errorf("%w: %s and %s are required", ErrMissingStoreConfig, supabaseURLEnv, supabaseKeyEnv)
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: %s is required", ErrMissingStoreConfig, databaseDSNEnv)
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("%w: %s is required", ErrMissingStoreConfig, mongoURIEnv)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if len(c.Sources) == 0 {
		return errors.New("no feed sources configured")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(storeDriverEnv); v != "" {
		c.Store.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(supabaseURLEnv); v != "" {
		c.Store.SupabaseURL = v
	}
	if v := os.Getenv(supabaseKeyEnv); v != "" {
		c.Store.SupabaseKey = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv(mongoURIEnv); v != "" {
		c.Store.MongoURI = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(kafkaBrokersEnv); v != "" {
		c.Events.KafkaBrokers = splitList(v)
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(scheduleCronEnv); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv(readabilityEnv); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enricher.ReadabilityFallback = b
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
