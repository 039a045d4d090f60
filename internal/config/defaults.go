package config

const (
	defaultConfigPath        = "~/.config/reelreview/config.toml"
	defaultDataDir           = "~/.local/share/reelreview"
	defaultLogDir            = "~/.local/share/reelreview/logs"
	defaultAPIBind           = "127.0.0.1:7491"
	defaultRequiredApprovers = 1
	defaultFrameRate         = 24.0
	defaultSimplifyTolerance = 1.5
	defaultMinPointDistance  = 2.0
	defaultHistoryLimit      = 100
	defaultDrawingColor      = "#ff3b30"
	defaultDrawingWidth      = 3.0
	defaultMaxContentLength  = 5000
	defaultCommentSort       = "timestamp"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	maxRequiredApprovers     = 50
	maxFrameRate             = 240.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Review: Review{
			DefaultRequiredApprovers: defaultRequiredApprovers,
			DefaultFrameRate:         defaultFrameRate,
		},
		Drawing: Drawing{
			SimplifyTolerance: defaultSimplifyTolerance,
			MinPointDistance:  defaultMinPointDistance,
			HistoryLimit:      defaultHistoryLimit,
			DefaultColor:      defaultDrawingColor,
			DefaultWidth:      defaultDrawingWidth,
		},
		Comments: Comments{
			MaxContentLength: defaultMaxContentLength,
			DefaultSort:      defaultCommentSort,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
