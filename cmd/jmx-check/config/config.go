package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/amiskov/jmx-check/pkg/check"
	"github.com/amiskov/jmx-check/pkg/jolokia"
	"github.com/amiskov/jmx-check/pkg/models"
	"github.com/amiskov/jmx-check/pkg/threshold"
)

type Config struct {
	MBean                  string `env:"MBEAN"`
	MBeanAttribute         string `env:"MBEAN_ATTRIBUTE"`
	MBeanKey               string `env:"MBEAN_KEY"`
	SecondMBean            string `env:"SECOND_MBEAN"`
	SecondMBeanAttribute   string `env:"SECOND_MBEAN_ATTRIBUTE"`
	SecondMBeanKey         string `env:"SECOND_MBEAN_KEY"`
	Warning                string `env:"WARNING"`
	WarningMBean           string `env:"WARNING_MBEAN"`
	WarningMBeanAttribute  string `env:"WARNING_MBEAN_ATTRIBUTE"`
	WarningMBeanKey        string `env:"WARNING_MBEAN_KEY"`
	Critical               string `env:"CRITICAL"`
	CriticalMBean          string `env:"CRITICAL_MBEAN"`
	CriticalMBeanAttribute string `env:"CRITICAL_MBEAN_ATTRIBUTE"`
	CriticalMBeanKey       string `env:"CRITICAL_MBEAN_KEY"`
	Compare                bool   `env:"COMPARE"`
	Reverse                bool   `env:"REVERSE"`

	Hosts    []string      `env:"JOLOKIA_HOST" envSeparator:","`
	Port     int           `env:"JOLOKIA_PORT"`
	Context  string        `env:"JOLOKIA_CONTEXT"`
	User     string        `env:"JOLOKIA_USER"`
	Password string        `env:"JOLOKIA_PASS"`
	Timeout  time.Duration `env:"JOLOKIA_TIMEOUT"`

	WarnExplanation string `env:"WARNING_EXPLANATION"`
	CritExplanation string `env:"CRITICAL_EXPLANATION"`
	Textfile        string `env:"TEXTFILE"`
	LogLevel        string `env:"LOG_LEVEL"`
}

// New returns defaults overridden by environment variables.
// Flags bound with BindFlags override both.
func New() (*Config, error) {
	cfg := Config{
		// Defaults
		MBeanAttribute:         models.DefaultAttribute,
		SecondMBeanAttribute:   models.DefaultAttribute,
		WarningMBeanAttribute:  models.DefaultAttribute,
		CriticalMBeanAttribute: models.DefaultAttribute,
		Hosts:                  []string{models.DefaultHost},
		Port:                   models.DefaultPort,
		Context:                models.DefaultContext,
		Timeout:                jolokia.DefaultTimeout,
		LogLevel:               "warn",
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config parsing failed: %w", err)
	}
	return &cfg, nil
}

func (cfg *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&cfg.MBean, "mbean", cfg.MBean, "MBean path")
	fs.StringVar(&cfg.MBeanAttribute, "mbean-attribute", cfg.MBeanAttribute, "MBean attribute to inspect")
	fs.StringVar(&cfg.MBeanKey, "mbean-key", cfg.MBeanKey, "MBean attribute key to inspect")

	fs.StringVar(&cfg.SecondMBean, "second-mbean", cfg.SecondMBean,
		"Second MBean path, the checked value becomes a percentage of it")
	fs.StringVar(&cfg.SecondMBeanAttribute, "second-mbean-attribute", cfg.SecondMBeanAttribute, "Second MBean attribute")
	fs.StringVar(&cfg.SecondMBeanKey, "second-mbean-key", cfg.SecondMBeanKey, "Second MBean key")

	fs.StringVar(&cfg.Warning, "warning", cfg.Warning, "Warning threshold")
	fs.StringVar(&cfg.WarningMBean, "warning-mbean", cfg.WarningMBean, "MBean whose value is the warning threshold")
	fs.StringVar(&cfg.WarningMBeanAttribute, "warning-mbean-attribute", cfg.WarningMBeanAttribute, "Warning threshold MBean attribute")
	fs.StringVar(&cfg.WarningMBeanKey, "warning-mbean-key", cfg.WarningMBeanKey, "Warning threshold MBean key")

	fs.StringVar(&cfg.Critical, "critical", cfg.Critical, "Critical threshold")
	fs.StringVar(&cfg.CriticalMBean, "critical-mbean", cfg.CriticalMBean, "MBean whose value is the critical threshold")
	fs.StringVar(&cfg.CriticalMBeanAttribute, "critical-mbean-attribute", cfg.CriticalMBeanAttribute, "Critical threshold MBean attribute")
	fs.StringVar(&cfg.CriticalMBeanKey, "critical-mbean-key", cfg.CriticalMBeanKey, "Critical threshold MBean key")

	fs.BoolVar(&cfg.Compare, "compare", cfg.Compare, "Compare check instead of range check")
	fs.BoolVar(&cfg.Reverse, "reverse", cfg.Reverse, "Reverse threshold comparison to be descending")

	fs.StringSliceVar(&cfg.Hosts, "jolokia-host", cfg.Hosts, "Jolokia agent host, several hosts are checked one by one")
	fs.IntVar(&cfg.Port, "jolokia-port", cfg.Port, "Jolokia agent port")
	fs.StringVar(&cfg.Context, "jolokia-context", cfg.Context, "Jolokia context")
	fs.StringVar(&cfg.User, "jolokia-user", cfg.User, "Jolokia user")
	fs.StringVar(&cfg.Password, "jolokia-pass", cfg.Password, "Jolokia password")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Jolokia request timeout")

	fs.StringVar(&cfg.WarnExplanation, "warning-explanation", cfg.WarnExplanation, "Printed under a WARNING result")
	fs.StringVar(&cfg.CritExplanation, "critical-explanation", cfg.CritExplanation, "Printed under a CRITICAL result")
	fs.StringVar(&cfg.Textfile, "textfile", cfg.Textfile, "Write results to this Prometheus textfile")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Logging level")
}

func (cfg *Config) Validate() error {
	var err error
	if cfg.MBean == "" {
		err = multierr.Append(err, errors.New("--mbean is required"))
	}
	if cfg.Warning == "" && cfg.WarningMBean == "" {
		err = multierr.Append(err, errors.New("--warning or --warning-mbean is required"))
	}
	if cfg.Critical == "" && cfg.CriticalMBean == "" {
		err = multierr.Append(err, errors.New("--critical or --critical-mbean is required"))
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("bad Jolokia port %d", cfg.Port))
	}
	if cfg.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("bad timeout %v", cfg.Timeout))
	}
	if len(cfg.hosts()) == 0 {
		err = multierr.Append(err, errors.New("no Jolokia host given"))
	}
	return err
}

// Requests builds a check request per Jolokia host. Second and threshold MBeans
// are read from the same host as the checked one.
func (cfg *Config) Requests() []check.Request {
	hosts := cfg.hosts()
	reqs := make([]check.Request, 0, len(hosts))

	for _, host := range hosts {
		agent := models.Agent{
			Host:     host,
			Port:     cfg.Port,
			Context:  cfg.Context,
			User:     cfg.User,
			Password: cfg.Password,
		}

		req := check.Request{
			MBean:    mbean(agent, cfg.MBean, cfg.MBeanAttribute, cfg.MBeanKey),
			Warning:  limit(agent, cfg.Warning, cfg.WarningMBean, cfg.WarningMBeanAttribute, cfg.WarningMBeanKey),
			Critical: limit(agent, cfg.Critical, cfg.CriticalMBean, cfg.CriticalMBeanAttribute, cfg.CriticalMBeanKey),
			Options: threshold.Options{
				Compare: cfg.Compare,
				Reverse: cfg.Reverse,
			},
		}
		if cfg.SecondMBean != "" {
			second := mbean(agent, cfg.SecondMBean, cfg.SecondMBeanAttribute, cfg.SecondMBeanKey)
			req.Options.Second = &second
		}

		reqs = append(reqs, req)
	}

	return reqs
}

func (cfg *Config) hosts() []string {
	hosts := []string{}
	for _, h := range cfg.Hosts {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func mbean(agent models.Agent, name, attribute, key string) models.MBean {
	return models.NewMBean(name, agent).WithAttribute(attribute).WithKey(key)
}

func limit(agent models.Agent, literal, name, attribute, key string) threshold.Threshold {
	if name != "" {
		return threshold.Reference(mbean(agent, name, attribute, key))
	}
	return threshold.Literal(literal)
}
