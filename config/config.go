package config

import (
	"github.com/BurntSushi/toml"
	"github.com/cryingshadow/exercisegenerator-sub005/exercise"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	defaultDegree      = 2
	defaultExercises   = 1
	defaultInitial     = 10
	defaultOperations  = 5
	defaultMinKey      = 1
	defaultMaxKey      = 99
	defaultDeleteRatio = 0.4
	defaultJobs        = 4

	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// Config is the exercise generator configuration.
type Config struct {
	Degree      int     `toml:"degree" json:"degree"`
	Exercises   int     `toml:"exercises" json:"exercises"`
	Initial     int     `toml:"initial" json:"initial"`
	Operations  int     `toml:"operations" json:"operations"`
	MinKey      int     `toml:"min-key" json:"min-key"`
	MaxKey      int     `toml:"max-key" json:"max-key"`
	DeleteRatio float64 `toml:"delete-ratio" json:"delete-ratio"`
	AbsentRatio float64 `toml:"absent-ratio" json:"absent-ratio"`
	Jobs        int     `toml:"jobs" json:"jobs"`
	// Transcript is the path of a compressed transcript to write, if any.
	Transcript string `toml:"transcript" json:"transcript"`
	NoColor    bool   `toml:"no-color" json:"no-color"`

	Log      log.Config         `toml:"log" json:"log"`
	Logger   *zap.Logger        `toml:"-" json:"-"`
	LogProps *log.ZapProperties `toml:"-" json:"-"`
}

// NewConfig returns an unadjusted configuration.
func NewConfig() *Config {
	return &Config{}
}

// AddFlags registers the command line flags Parse understands.
func AddFlags(fs *flag.FlagSet) {
	fs.StringP("config", "c", "", "config file")
	fs.IntP("degree", "t", 0, "B-tree degree, every non-root node holds t-1 to 2t-1 keys")
	fs.IntP("exercises", "n", 0, "number of exercises to generate")
	fs.Int("initial", 0, "keys in the start tree")
	fs.Int("operations", 0, "operations per exercise")
	fs.Int("min-key", 0, "smallest key")
	fs.Int("max-key", 0, "largest key")
	fs.Float64("delete-ratio", 0, "chance of an operation being a delete")
	fs.Float64("absent-ratio", 0, "chance of a delete aiming at an absent key")
	fs.IntP("jobs", "j", 0, "exercises solved in parallel")
	fs.StringP("transcript", "o", "", "write a snappy-compressed transcript to this file")
	fs.Bool("no-color", false, "disable colored diagrams")
	fs.StringP("log-level", "L", "", "log level: debug, info, warn, error")
}

// Parse loads the config file named by the "config" flag, overrides it with
// every flag set on the command line and fills in defaults.
func (c *Config) Parse(fs *flag.FlagSet) error {
	var meta *toml.MetaData
	if configFile, _ := fs.GetString("config"); configFile != "" {
		m, err := toml.DecodeFile(configFile, c)
		if err != nil {
			return errors.Annotatef(err, "load config file %s", configFile)
		}
		if undecoded := m.Undecoded(); len(undecoded) > 0 {
			return errors.Errorf("config file %s contains undefined item %s", configFile, undecoded[0])
		}
		meta = &m
	}

	if err := c.override(fs); err != nil {
		return err
	}
	c.Adjust(meta)
	return c.Validate()
}

func (c *Config) override(fs *flag.FlagSet) error {
	ints := map[string]*int{
		"degree":     &c.Degree,
		"exercises":  &c.Exercises,
		"initial":    &c.Initial,
		"operations": &c.Operations,
		"min-key":    &c.MinKey,
		"max-key":    &c.MaxKey,
		"jobs":       &c.Jobs,
	}
	for name, v := range ints {
		if !fs.Changed(name) {
			continue
		}
		value, err := fs.GetInt(name)
		if err != nil {
			return errors.WithStack(err)
		}
		*v = value
	}
	floats := map[string]*float64{
		"delete-ratio": &c.DeleteRatio,
		"absent-ratio": &c.AbsentRatio,
	}
	for name, v := range floats {
		if !fs.Changed(name) {
			continue
		}
		value, err := fs.GetFloat64(name)
		if err != nil {
			return errors.WithStack(err)
		}
		*v = value
	}
	if fs.Changed("transcript") {
		c.Transcript, _ = fs.GetString("transcript")
	}
	if fs.Changed("no-color") {
		c.NoColor, _ = fs.GetBool("no-color")
	}
	if fs.Changed("log-level") {
		c.Log.Level, _ = fs.GetString("log-level")
	}
	return nil
}

// Adjust fills in defaults for everything neither the config file nor the
// command line defined.
func (c *Config) Adjust(meta *toml.MetaData) {
	isDefined := func(key ...string) bool {
		return meta != nil && meta.IsDefined(key...)
	}
	adjustInt := func(v *int, key string, def int) {
		if *v == 0 && !isDefined(key) {
			*v = def
		}
	}
	adjustInt(&c.Degree, "degree", defaultDegree)
	adjustInt(&c.Exercises, "exercises", defaultExercises)
	adjustInt(&c.Initial, "initial", defaultInitial)
	adjustInt(&c.Operations, "operations", defaultOperations)
	adjustInt(&c.MinKey, "min-key", defaultMinKey)
	adjustInt(&c.MaxKey, "max-key", defaultMaxKey)
	adjustInt(&c.Jobs, "jobs", defaultJobs)
	if c.DeleteRatio == 0 && !isDefined("delete-ratio") {
		c.DeleteRatio = defaultDeleteRatio
	}

	if len(c.Log.Level) == 0 {
		c.Log.Level = defaultLogLevel
	}
	if len(c.Log.Format) == 0 {
		c.Log.Format = defaultLogFormat
	}
}

// Validate checks the adjusted configuration.
func (c *Config) Validate() error {
	if c.Exercises < 0 {
		return errors.Errorf("invalid number of exercises %d", c.Exercises)
	}
	if c.Jobs < 1 {
		return errors.Errorf("invalid number of jobs %d", c.Jobs)
	}
	cfg := c.Exercise()
	return cfg.Validate()
}

// Exercise returns the selector settings.
func (c *Config) Exercise() exercise.Config {
	return exercise.Config{
		Degree:      c.Degree,
		Initial:     c.Initial,
		Operations:  c.Operations,
		MinKey:      c.MinKey,
		MaxKey:      c.MaxKey,
		DeleteRatio: c.DeleteRatio,
		AbsentRatio: c.AbsentRatio,
	}
}

// SetupLogger builds the zap logger described by the log section and
// installs it as the global logger.
func (c *Config) SetupLogger() error {
	lg, props, err := log.InitLogger(&c.Log, zap.AddStacktrace(zap.FatalLevel))
	if err != nil {
		return errors.Annotate(err, "initialize logger")
	}
	c.Logger, c.LogProps = lg, props
	log.ReplaceGlobals(lg, props)
	return nil
}
