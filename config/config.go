package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Log     LogConfig
	Metrics MetricsConfig
	Report  ReportConfig
	Demo    DemoConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig holds metrics configuration. An empty Addr keeps the
// registry in-process only.
type MetricsConfig struct {
	Namespace string
	Addr      string
}

// ReportConfig selects where fill reports go.
type ReportConfig struct {
	Sink         string // none, log, kafka-go, sarama
	Brokers      []string
	Topic        string
	Encoding     string // json, proto
	QueueSize    int
	WriteTimeout time.Duration
}

// DemoConfig drives the console driver.
type DemoConfig struct {
	Color  bool
	BarCap int
}

const envPrefix = "MATCHBOOK"

var sinks = map[string]bool{"none": true, "log": true, "kafka-go": true, "sarama": true}

// Load reads MATCHBOOK_* environment variables, after preloading the
// given dotenv files (".env" when none are named; a missing default file
// is not an error).
func Load(files ...string) (*Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, errors.Wrap(err, "load env files")
		}
	} else {
		_ = godotenv.Load() // Ignore error if .env doesn't exist
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Metrics: MetricsConfig{
			Namespace: v.GetString("metrics.namespace"),
			Addr:      v.GetString("metrics.addr"),
		},
		Report: ReportConfig{
			Sink:         strings.ToLower(v.GetString("report.sink")),
			Brokers:      splitList(v.GetString("report.brokers")),
			Topic:        v.GetString("report.topic"),
			Encoding:     strings.ToLower(v.GetString("report.encoding")),
			QueueSize:    v.GetInt("report.queue_size"),
			WriteTimeout: v.GetDuration("report.write_timeout"),
		},
		Demo: DemoConfig{
			Color:  v.GetBool("demo.color"),
			BarCap: v.GetInt("demo.bar_cap"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("metrics.namespace", "matchbook")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("report.sink", "log")
	v.SetDefault("report.brokers", "")
	v.SetDefault("report.topic", "matchbook.fills")
	v.SetDefault("report.encoding", "json")
	v.SetDefault("report.queue_size", 1024)
	v.SetDefault("report.write_timeout", 2*time.Second)
	v.SetDefault("demo.color", true)
	v.SetDefault("demo.bar_cap", 40)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !sinks[c.Report.Sink] {
		return errors.Newf("unknown report sink %q", c.Report.Sink)
	}
	if (c.Report.Sink == "kafka-go" || c.Report.Sink == "sarama") && len(c.Report.Brokers) == 0 {
		return errors.Newf("report sink %s needs at least one broker", c.Report.Sink)
	}
	if c.Report.Encoding != "json" && c.Report.Encoding != "proto" {
		return errors.Newf("unknown report encoding %q", c.Report.Encoding)
	}
	if c.Report.QueueSize <= 0 {
		return errors.Newf("invalid report queue size: %d", c.Report.QueueSize)
	}
	if c.Report.WriteTimeout <= 0 {
		return errors.Newf("invalid report write timeout: %s", c.Report.WriteTimeout)
	}
	if c.Demo.BarCap < 0 {
		return errors.Newf("invalid bar cap: %d", c.Demo.BarCap)
	}
	return nil
}

// String returns a safe string representation (broker addresses elided)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Log{Level:%s, Format:%s}, Metrics{Addr:%q}, Report{Sink:%s, Brokers:%d, Topic:%s, Encoding:%s, Queue:%d}",
		c.Log.Level, c.Log.Format, c.Metrics.Addr,
		c.Report.Sink, len(c.Report.Brokers), c.Report.Topic, c.Report.Encoding, c.Report.QueueSize,
	)
}
