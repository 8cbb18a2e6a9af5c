package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "RPA"
	EnvFileEnvVar  = "PYPESTREAM_RPA_ENV"
	DefaultHotkey  = "ctrl+shift+q"
	DefaultOCRLang = "eng"
)

type LoadOptions struct {
	ConfigFile          string
	WorkDirOverride     string
	BrowserPathOverride string
}

type BrowserConfig struct {
	ExecPath      string        `mapstructure:"exec_path"`
	LaunchTimeout time.Duration `mapstructure:"launch_timeout"`
	WindowWidth   int           `mapstructure:"window_width"`
	WindowHeight  int           `mapstructure:"window_height"`
}

type OCRConfig struct {
	Language       string `mapstructure:"language"`
	TessdataPrefix string `mapstructure:"tessdata_prefix"`
}

type InputConfig struct {
	KeyDelay time.Duration `mapstructure:"key_delay"`
}

type TimingConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	ChatIdleCycles int           `mapstructure:"chat_idle_cycles"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	EnableFile bool   `mapstructure:"enable_file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type LockConfig struct {
	PortStart int `mapstructure:"port_start"`
	PortEnd   int `mapstructure:"port_end"`
}

type Config struct {
	WorkDir     string        `mapstructure:"work_dir"`
	AbortHotkey string        `mapstructure:"abort_hotkey"`
	Browser     BrowserConfig `mapstructure:"browser"`
	OCR         OCRConfig     `mapstructure:"ocr"`
	Input       InputConfig   `mapstructure:"input"`
	Timing      TimingConfig  `mapstructure:"timing"`
	Logger      LoggerConfig  `mapstructure:"logger"`
	Lock        LockConfig    `mapstructure:"lock"`
}

// LogsDir is where run.log and run reports go.
func (c *Config) LogsDir() string { return filepath.Join(c.WorkDir, "logs") }

// ScreenshotsDir is where diagnostic captures go.
func (c *Config) ScreenshotsDir() string { return filepath.Join(c.WorkDir, "screenshots") }

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory, or the file named by PYPESTREAM_RPA_ENV
	// 2) RPA_* environment variables
	// 3) the optional YAML config file
	// 4) built-in defaults
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		// No SetConfigType here: with a type set viper also accepts an
		// extensionless "rpa", which is the CLI binary itself.
		v.AddConfigPath(".")
		v.SetConfigName("rpa")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if override := strings.TrimSpace(opts.WorkDirOverride); override != "" {
		cfg.WorkDir = override
	}
	if override := strings.TrimSpace(opts.BrowserPathOverride); override != "" {
		cfg.Browser.ExecPath = override
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("work_dir", ".")
	v.SetDefault("abort_hotkey", DefaultHotkey)

	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.launch_timeout", "30s")
	v.SetDefault("browser.window_width", 0)
	v.SetDefault("browser.window_height", 0)

	v.SetDefault("ocr.language", DefaultOCRLang)
	v.SetDefault("ocr.tessdata_prefix", "")

	v.SetDefault("input.key_delay", "20ms")

	v.SetDefault("timing.poll_interval", "1s")
	v.SetDefault("timing.chat_idle_cycles", 15)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.enable_file", true)
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 0)
	v.SetDefault("logger.compress", false)

	v.SetDefault("lock.port_start", 49600)
	v.SetDefault("lock.port_end", 49610)
}

func (c *Config) normalize() error {
	abs, err := filepath.Abs(c.WorkDir)
	if err != nil {
		return fmt.Errorf("invalid work dir %q: %w", c.WorkDir, err)
	}
	c.WorkDir = abs

	if c.Timing.PollInterval <= 0 {
		c.Timing.PollInterval = time.Second
	}
	if c.Timing.ChatIdleCycles <= 0 {
		c.Timing.ChatIdleCycles = 15
	}
	if c.Input.KeyDelay <= 0 {
		c.Input.KeyDelay = 20 * time.Millisecond
	}
	if strings.TrimSpace(c.OCR.Language) == "" {
		c.OCR.Language = DefaultOCRLang
	}

	// Order the lock range, then clamp both ends to unprivileged ports.
	if c.Lock.PortEnd < c.Lock.PortStart {
		c.Lock.PortStart, c.Lock.PortEnd = c.Lock.PortEnd, c.Lock.PortStart
	}
	c.Lock.PortStart = clampPort(c.Lock.PortStart)
	c.Lock.PortEnd = clampPort(c.Lock.PortEnd)
	return nil
}

func clampPort(p int) int {
	switch {
	case p < 1024:
		return 1024
	case p > 65535:
		return 65535
	}
	return p
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}
