package config

const (
	defaultDataDir            = "~/.local/share/darkroom"
	defaultLogDir             = "~/.local/share/darkroom/logs"
	defaultTargetDir          = "~/.local/share/darkroom/photos"
	defaultAPIBind            = "127.0.0.1:7319"
	defaultSourceTimeout      = 30
	defaultBatchSize          = 25
	defaultConcurrency        = 4
	defaultQuality            = 85
	defaultMaxWidth           = 1920
	defaultLeaseTimeout       = 300
	defaultPollInterval       = 5
	defaultErrorRetryInterval = 10
	defaultLogLevel           = "info"
	defaultLogFormat          = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			TargetDir: defaultTargetDir,
			APIBind:   defaultAPIBind,
		},
		Source: Source{
			RequestTimeout: defaultSourceTimeout,
		},
		Migration: Migration{
			BatchSize:          defaultBatchSize,
			Concurrency:        defaultConcurrency,
			Quality:            defaultQuality,
			MaxWidth:           defaultMaxWidth,
			LeaseTimeout:       defaultLeaseTimeout,
			PollInterval:       defaultPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
