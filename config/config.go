// Package config loads and validates the frozen run configuration: the
// ordered list of source and target definitions plus diagnostics settings
// (spec §3, §6). Configuration is read once from an INI file via viper and
// handed down by value/pointer-to-immutable-struct through the context —
// there is no package-level mutable singleton (spec §9, "ambient
// configuration").
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/xbond-analytics/market-etl/xerrors"
)

// Source type tags recognized by the extractor factory (spec §4.4).
const (
	SourceTypeObjectStore = "object-store"
	SourceTypeSQL         = "sql"
)

// Source category discriminators recognized by the extractor factory.
const (
	CategoryAllPriceDepth  = "AllPriceDepth"
	CategoryXbondCfetsDeal = "XbondCfetsDeal"
	CategoryBondFutureQuote = "BondFutureQuote"
)

// Target type tag; the core only ever wires one kind of target store.
const TargetTypeColumnar = "columnar"

// SourceConfig is one `[source<N>]` section: a name, a type/category pair
// selecting the concrete extractor, a connection string, and a bag of
// type-specific properties (spec §6).
type SourceConfig struct {
	Name             string
	Type             string
	Category         string
	ConnectionString string

	// Object-store properties.
	Endpoint        string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	MaxObjectBytes  int64
	DateFormat      string // default "20060102"; some families use "2006-01-02"

	// SQL properties.
	DBURL       string
	DBUser      string
	DBPassword  string
	SQLTemplate string
	PoolMin     int
	PoolMax     int
	QueryTimeout time.Duration
}

// Anonymous reports whether this object-store source should connect without
// static credentials (spec §6: "either both credentials or neither").
func (s SourceConfig) Anonymous() bool {
	return s.AccessKeyID == "" && s.SecretAccessKey == ""
}

// Validate checks the required-property bullets in spec §6 for this source's
// type, returning a ConfigError naming the missing property.
func (s SourceConfig) Validate() error {
	if s.Name == "" {
		return xerrors.Config(xerrors.SubprocessNone, time.Time{}, "source: name is required", nil)
	}
	switch s.Type {
	case SourceTypeObjectStore:
		if s.Category != CategoryAllPriceDepth && s.Category != CategoryXbondCfetsDeal {
			return xerrors.Config(xerrors.SubprocessNone, time.Time{}, fmt.Sprintf("source %q: unsupported object-store category %q", s.Name, s.Category), nil)
		}
		if s.Endpoint == "" || s.Bucket == "" || s.Region == "" {
			return xerrors.Config(xerrors.SubprocessNone, time.Time{}, fmt.Sprintf("source %q: endpoint, bucket and region are required", s.Name), nil)
		}
		if (s.AccessKeyID == "") != (s.SecretAccessKey == "") {
			return xerrors.Config(xerrors.SubprocessNone, time.Time{}, fmt.Sprintf("source %q: access key and secret must both be set or both be empty", s.Name), nil)
		}
	case SourceTypeSQL:
		if s.Category != CategoryBondFutureQuote {
			return xerrors.Config(xerrors.SubprocessNone, time.Time{}, fmt.Sprintf("source %q: unsupported sql category %q", s.Name, s.Category), nil)
		}
		if s.DBURL == "" || s.DBUser == "" || s.DBPassword == "" || s.SQLTemplate == "" {
			return xerrors.Config(xerrors.SubprocessNone, time.Time{}, fmt.Sprintf("source %q: db.url, db.user, db.password and sql.template are required", s.Name), nil)
		}
	default:
		return xerrors.Config(xerrors.SubprocessNone, time.Time{}, fmt.Sprintf("source %q: unsupported type %q", s.Name, s.Type), nil)
	}
	return nil
}

// TargetConfig is one `[target<N>]` section describing the columnar store.
type TargetConfig struct {
	Name     string
	Type     string
	Category string
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func (t TargetConfig) Validate() error {
	if t.Type != TargetTypeColumnar {
		return xerrors.Config(xerrors.SubprocessNone, time.Time{}, fmt.Sprintf("target %q: unsupported type %q", t.Name, t.Type), nil)
	}
	if t.Host == "" || t.Port == 0 || t.Database == "" {
		return xerrors.Config(xerrors.SubprocessNone, time.Time{}, fmt.Sprintf("target %q: host, port and database are required", t.Name), nil)
	}
	return nil
}

// LoggingConfig is the `[logging]` section.
type LoggingConfig struct {
	Level  string
	Format string
}

// Config is the frozen, read-only-for-the-life-of-the-run configuration
// object (spec §3). It is produced once by Load and never mutated afterward.
type Config struct {
	Sources []SourceConfig
	Targets []TargetConfig
	Logging LoggingConfig
}

// Validate runs every source's and target's Validate and requires at least
// one source and exactly one target (the core supports a single session per
// day shared across one target store, spec §4.6).
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return xerrors.Config(xerrors.SubprocessNone, time.Time{}, "sources.count must be at least 1", nil)
	}
	if len(c.Targets) != 1 {
		return xerrors.Config(xerrors.SubprocessNone, time.Time{}, "exactly one target must be configured", nil)
	}
	for _, s := range c.Sources {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	for _, t := range c.Targets {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Load reads an INI file at path via viper and builds a Config, applying
// the required-property checks in spec §6. Unlike the rest of the run, Load
// itself has no business date yet, so every ConfigError it returns carries a
// zero-value date.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, xerrors.Config(xerrors.SubprocessNone, time.Time{}, "reading config file", err)
	}

	count := v.GetInt("sources.count")
	if count <= 0 {
		return nil, xerrors.Config(xerrors.SubprocessNone, time.Time{}, "sources.count must be present and positive", nil)
	}

	sources := make([]SourceConfig, 0, count)
	for i := 1; i <= count; i++ {
		section := fmt.Sprintf("source%d", i)
		sc := SourceConfig{
			Name:             v.GetString(section + ".name"),
			Type:             v.GetString(section + ".type"),
			Category:         v.GetString(section + ".category"),
			ConnectionString: v.GetString(section + ".connectionstring"),
			Endpoint:         v.GetString(section + ".endpoint"),
			Bucket:           v.GetString(section + ".bucket"),
			Region:           v.GetString(section + ".region"),
			AccessKeyID:      v.GetString(section + ".accesskeyid"),
			SecretAccessKey:  v.GetString(section + ".secretaccesskey"),
			DateFormat:       orDefault(v.GetString(section+".dateformat"), "20060102"),
			DBURL:            v.GetString(section + ".db.url"),
			DBUser:           v.GetString(section + ".db.user"),
			DBPassword:       v.GetString(section + ".db.password"),
			SQLTemplate:      v.GetString(section + ".sql.template"),
		}
		sc.MaxObjectBytes = orDefaultInt64(v.GetInt64(section+".maxobjectbytes"), 100*1024*1024)
		sc.PoolMin = orDefaultInt(v.GetInt(section+".pool.min"), 1)
		sc.PoolMax = orDefaultInt(v.GetInt(section+".pool.max"), 5)
		sc.QueryTimeout = orDefaultDuration(v.GetDuration(section+".query.timeout"), 300*time.Second)
		sources = append(sources, sc)
	}

	targetCount := v.GetInt("targets.count")
	if targetCount <= 0 {
		targetCount = 1
	}
	targets := make([]TargetConfig, 0, targetCount)
	for i := 1; i <= targetCount; i++ {
		section := fmt.Sprintf("target%d", i)
		targets = append(targets, TargetConfig{
			Name:     v.GetString(section + ".name"),
			Type:     orDefault(v.GetString(section+".type"), TargetTypeColumnar),
			Category: v.GetString(section + ".category"),
			Host:     v.GetString(section + ".host"),
			Port:     v.GetInt(section + ".port"),
			User:     v.GetString(section + ".user"),
			Password: v.GetString(section + ".password"),
			Database: v.GetString(section + ".database"),
		})
	}

	cfg := &Config{
		Sources: sources,
		Targets: targets,
		Logging: LoggingConfig{
			Level:  orDefault(v.GetString("logging.level"), "info"),
			Format: orDefault(v.GetString("logging.format"), "json"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultInt64(v, def int64) int64 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultDuration(v, def time.Duration) time.Duration {
	if v == 0 {
		return def
	}
	return v
}
