package config

const (
	defaultDataDir       = "~/.local/share/procwatch"
	defaultLogDir        = "~/.local/share/procwatch/logs"
	defaultAPIBind       = "127.0.0.1:7590"
	defaultSuccessMarker = "success.flag"
	defaultFailureMarker = "failure.flag"
	defaultUC4Marker     = "uc4.flag"
	defaultCycleInterval = 600
	defaultSMTPHost      = "localhost"
	defaultSMTPPort      = 25
	defaultSMTPSender    = "monitoring@example.com"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Markers: Markers{
			SuccessFile: defaultSuccessMarker,
			FailureFile: defaultFailureMarker,
			UC4File:     defaultUC4Marker,
		},
		Monitor: Monitor{
			CycleInterval: defaultCycleInterval,
		},
		SMTP: SMTP{
			Host:   defaultSMTPHost,
			Port:   defaultSMTPPort,
			Sender: defaultSMTPSender,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
