package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `toml:"enabled"`
	UseConsoleWriter bool
}

// RollingFile describes one lumberjack managed log file.
type RollingFile struct {
	Name       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// LogFile implements a file based logger.
type LogFile struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	AccessLog        string `mapstructure:"access" toml:"access"`
	AccessMaxSize    int    `mapstructure:"accessMaxSize" toml:"accessMaxSize"`
	AccessMaxBackups int    `mapstructure:"accessMaxBackups" toml:"accessMaxBackups"`
	AccessMaxAge     int    `mapstructure:"accessMaxAge" toml:"accessMaxAge"`

	ErrorLog        string `mapstructure:"error" toml:"error"`
	ErrorMaxSize    int    `mapstructure:"errorMaxSize" toml:"errorMaxSize"`
	ErrorMaxBackups int    `mapstructure:"errorMaxBackups" toml:"errorMaxBackups"`
	ErrorMaxAge     int    `mapstructure:"errorMaxAge" toml:"errorMaxAge"`

	InfoLog        string `mapstructure:"info" toml:"info"`
	InfoMaxSize    int    `mapstructure:"infoMaxSize" toml:"infoMaxSize"`
	InfoMaxBackups int    `mapstructure:"infoMaxBackups" toml:"infoMaxBackups"`
	InfoMaxAge     int    `mapstructure:"infoMaxAge" toml:"infoMaxAge"`

	TraceLog        string `mapstructure:"trace" toml:"trace"`
	TraceMaxSize    int    `mapstructure:"traceMaxSize" toml:"traceMaxSize"`
	TraceMaxBackups int    `mapstructure:"traceMaxBackups" toml:"traceMaxBackups"`
	TraceMaxAge     int    `mapstructure:"traceMaxAge" toml:"traceMaxAge"`

	WarnLog        string `mapstructure:"warn" toml:"warn"`
	WarnMaxSize    int    `mapstructure:"warnMaxSize" toml:"warnMaxSize"`
	WarnMaxBackups int    `mapstructure:"warnMaxBackups" toml:"warnMaxBackups"`
	WarnMaxAge     int    `mapstructure:"warnMaxAge" toml:"warnMaxAge"`
}

// Access returns the rolling settings of the access log.
func (f LogFile) Access() RollingFile {
	return RollingFile{f.AccessLog, f.AccessMaxSize, f.AccessMaxBackups, f.AccessMaxAge}
}

// Error returns the rolling settings of the error log.
func (f LogFile) Error() RollingFile {
	return RollingFile{f.ErrorLog, f.ErrorMaxSize, f.ErrorMaxBackups, f.ErrorMaxAge}
}

// Info returns the rolling settings of the info log.
func (f LogFile) Info() RollingFile {
	return RollingFile{f.InfoLog, f.InfoMaxSize, f.InfoMaxBackups, f.InfoMaxAge}
}

// Trace returns the rolling settings of the trace log.
func (f LogFile) Trace() RollingFile {
	return RollingFile{f.TraceLog, f.TraceMaxSize, f.TraceMaxBackups, f.TraceMaxAge}
}

// Warn returns the rolling settings of the warn log.
func (f LogFile) Warn() RollingFile {
	return RollingFile{f.WarnLog, f.WarnMaxSize, f.WarnMaxBackups, f.WarnMaxAge}
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.

	// EnableAccessLogToConsole if true the fiber access log is written to the console.
	// Does not overrule flag Console.Enabled!
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive calls

	AppName     string
	ServiceName string

	// Console used mainly for docker and dev.
	Console Console

	File LogFile `toml:"file"`
}
