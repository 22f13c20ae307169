package config

import "runtime"

const (
	defaultStateDir              = "~/.local/share/downconv"
	defaultLogDir                = ""
	defaultEncoderBinary         = "sox"
	defaultAbortPolicy           = AbortTerminate
	defaultTerminateGraceSeconds = 5
	defaultKeepPattern           = `(?i)^(?:.+\.(?:flac|wav)|(?:cover|folder|front)\.(?:jpe?g|png))$`
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Abort policies applied to running encoders after a conversion fails.
const (
	AbortTerminate = "terminate"
	AbortWait      = "wait"
)

var (
	defaultLossyExtensions = []string{".mp3", ".m4a", ".aac", ".ogg", ".opus", ".mp2", ".wma"}
	defaultSceneExtensions = []string{".nfo", ".sfv"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Encoder: Encoder{
			Binary:                defaultEncoderBinary,
			Concurrency:           runtime.NumCPU(),
			AbortPolicy:           defaultAbortPolicy,
			TerminateGraceSeconds: defaultTerminateGraceSeconds,
		},
		Files: Files{
			LossyExtensions: append([]string(nil), defaultLossyExtensions...),
			SceneExtensions: append([]string(nil), defaultSceneExtensions...),
			KeepPattern:     defaultKeepPattern,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
