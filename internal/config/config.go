package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig    `mapstructure:"paths"`
	Training TrainingConfig `mapstructure:"training"`
	Output   OutputConfig   `mapstructure:"output"`
	LogLevel string         `mapstructure:"log_level"`
}

type PathsConfig struct {
	CorpusPath string `mapstructure:"corpus_path"`
	OutputDir  string `mapstructure:"output_dir"`
}

type TrainingConfig struct {
	Merges       int  `mapstructure:"merges"`
	Workers      int  `mapstructure:"workers"`
	StopEarly    bool `mapstructure:"stop_early"`
	MinFrequency int  `mapstructure:"min_frequency"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			CorpusPath: "data/corpus.txt",
			OutputDir:  "out",
		},
		Training: TrainingConfig{
			Merges:       10000,
			Workers:      1,
			StopEarly:    false,
			MinFrequency: 0,
		},
		Output: OutputConfig{
			Format: FormatJSON,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("corpus", defaults.Paths.CorpusPath, "Path to the training corpus")
	fs.String("out", defaults.Paths.OutputDir, "Directory for trained artifacts")
	fs.Int("merges", defaults.Training.Merges, "Number of BPE merge iterations")
	fs.Int("workers", defaults.Training.Workers, "Goroutines used to collect pair statistics")
	fs.Bool("stop-early", defaults.Training.StopEarly, "Finish without error when no pairs remain")
	fs.Int("min-frequency", defaults.Training.MinFrequency, "Stop when the best pair is rarer than this (0 disables)")
	fs.String("format", defaults.Output.Format, "Artifact format (json|yaml)")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("BPETRAIN")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	if err := v.BindEnv("paths.corpus_path", "BPETRAIN_PATHS_CORPUS_PATH", "BPETRAIN_CORPUS"); err != nil {
		return Config{}, fmt.Errorf("bind corpus env vars: %w", err)
	}
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("bpetrain")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	format, err := NormalizeFormat(cfg.Output.Format)
	if err != nil {
		return Config{}, err
	}
	cfg.Output.Format = format

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.corpus_path", c.Paths.CorpusPath)
	v.SetDefault("paths.output_dir", c.Paths.OutputDir)
	v.SetDefault("training.merges", c.Training.Merges)
	v.SetDefault("training.workers", c.Training.Workers)
	v.SetDefault("training.stop_early", c.Training.StopEarly)
	v.SetDefault("training.min_frequency", c.Training.MinFrequency)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("log_level", c.LogLevel)
}

// flagKeys maps config keys to the flag names registered by RegisterFlags.
var flagKeys = []struct{ key, flag string }{
	{"paths.corpus_path", "corpus"},
	{"paths.output_dir", "out"},
	{"training.merges", "merges"},
	{"training.workers", "workers"},
	{"training.stop_early", "stop-early"},
	{"training.min_frequency", "min-frequency"},
	{"output.format", "format"},
	{"log_level", "log-level"},
}

// bindFlags binds each registered flag to its nested key, so flags, env
// vars and config files all resolve through the same key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("%s: %w", fk.flag, err)
		}
	}
	return nil
}
