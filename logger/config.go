package logger

import "fmt"

var (
	levels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true}
	formats = map[string]bool{"json": true, "console": true, FormatPretty: true}
)

// Config selects level, encoding and destination. Output is "stdout",
// "stderr" or "discard".
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills in info/console/stdout and always stamps time.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

func (c *Config) Validate() error {
	if !levels[c.Level] {
		return fmt.Errorf("logging.level %q is not one of trace, debug, info, warn, error, fatal", c.Level)
	}
	if !formats[c.Format] {
		return fmt.Errorf("logging.format %q is not one of json, console, pretty", c.Format)
	}
	return nil
}
