package log

import (
	"encoding/json"
	"fmt"
	"path"
	"runtime"
	"strings"

	"github.com/astaxie/beego/logs"

	"github.com/copernet/copernicus/conf"
)

// DefaultLogDirname is the subdirectory of datadir that log files live in.
const DefaultLogDirname = "logs"

// errModuleNotFound is written to the log stream in place of a caller's
// message when Print is called for a module that isn't on the allow-list.
const errModuleNotFound = "log: module not registered for logging"

// mapModule is the set of module names Print will actually emit; empty
// means no module is enabled.
var mapModule = make(map[string]struct{})

func init() {
	level := "info"
	if conf.Cfg != nil && conf.Cfg.DebugLevel != "" {
		level = conf.Cfg.DebugLevel
	}
	if err := InitLogger(conf.GetDataPath(), level); err != nil {
		fmt.Println("log init failed:", err)
	}
}

// IsIncludeModule reports whether module is on the enabled list consulted
// by Print.
func IsIncludeModule(module string) bool {
	_, ok := mapModule[module]
	return ok
}

// Print is a module-filtered logging entry point: callers tag each message
// with its originating subsystem, and only modules added to mapModule are
// actually written out.
func Print(module string, level string, format string, reason ...interface{}) {
	if !IsIncludeModule(module) {
		logs.Error(errModuleNotFound)
		return
	}
	switch level {
	case "emergency":
		logs.Emergency(format, reason...)
	case "alert":
		logs.Alert(format, reason...)
	case "critical":
		logs.Critical(format, reason...)
	case "error":
		logs.Error(format, reason...)
	case "warn":
		logs.Warn(format, reason...)
	case "info":
		logs.Info(format, reason...)
	case "debug":
		logs.Debug(format, reason...)
	case "notice":
		logs.Notice(format, reason...)
	}
}

type logConfig struct {
	Filename string `json:"filename"`
	Level    int    `json:"level,omitempty"`
	Rotate   bool   `json:"rotate,omitempty"`
	Daily    bool   `json:"daily,omitempty"`
	MaxDays  int64  `json:"maxdays,omitempty"`
	MaxLines int    `json:"maxlines,omitempty"`
	MaxSize  int    `json:"maxsize,omitempty"`
}

func validLogLevel(strLevel string) (level int, ok bool) {
	ok = true
	switch strings.ToLower(strLevel) {
	case "emergency":
		level = logs.LevelEmergency
	case "alert":
		level = logs.LevelAlert
	case "critical":
		level = logs.LevelCritical
	case "error":
		level = logs.LevelError
	case "warn":
		level = logs.LevelWarn
	case "info":
		level = logs.LevelInfo
	case "debug":
		level = logs.LevelDebug
	case "notice":
		level = logs.LevelNotice
	default:
		ok = false
	}
	return
}

// TraceLog returns the caller's "function line: N" for inclusion in fatal
// diagnostic messages (abort path, corruption reports).
func TraceLog() string {
	pc := make([]uintptr, 10)
	runtime.Callers(2, pc)
	f := runtime.FuncForPC(pc[0])
	_, line := f.FileLine(pc[0])
	return fmt.Sprintf("%s line : %d\n", f.Name(), line)
}

func InitLogger(dir, strLevel string) error {
	logLevel, ok := validLogLevel(strLevel)
	if !ok {
		return fmt.Errorf("mismatch the logLevel %s", strLevel)
	}
	config, err := json.Marshal(logConfig{
		Filename: path.Join(dir, "debug.logger"),
		Rotate:   true,
		Daily:    true,
		Level:    logLevel,
	})
	if err != nil {
		return err
	}
	logs.SetLogger(logs.AdapterFile, string(config))
	return nil
}

// GetLevel resolves a configured level name to the beego/logs level
// constant it maps to, defaulting to debug for an unrecognized name.
func GetLevel(levelStr string) int {
	return getLevel(levelStr)
}

// Init installs configuration (a JSON-encoded {filename,level[,daily]}
// object, already shaped for the beego/logs file adapter) as the active
// logger. Unlike InitLogger, the caller builds the adapter config itself,
// which is how callers outside this package (persist, logic/lchain) wire a
// per-test log file.
func Init(configuration string) error {
	logs.SetLogger(logs.AdapterFile, configuration)
	return nil
}

// Warning and Informational round out the beego/logs level vocabulary
// alongside Warn/Info; some callers (and the log-level table in tests)
// spell the level names out in full.
func Warning(format string, v ...interface{})       { logs.Warning(format, v...) }
func Informational(format string, v ...interface{}) { logs.Informational(format, v...) }

// Trace is kept distinct from Debug at the call site even though beego/logs
// has no dedicated trace level; it maps onto Debug.
func Trace(format string, v ...interface{})     { logs.Debug(format, v...) }
func Emergency(format string, v ...interface{}) { logs.Emergency(format, v...) }
func Alert(format string, v ...interface{})     { logs.Alert(format, v...) }
func Critical(format string, v ...interface{})  { logs.Critical(format, v...) }
func Error(format string, v ...interface{})     { logs.Error(format, v...) }
func Warn(format string, v ...interface{})      { logs.Warn(format, v...) }
func Notice(format string, v ...interface{})    { logs.Notice(format, v...) }
func Info(format string, v ...interface{})      { logs.Info(format, v...) }
func Debug(format string, v ...interface{})     { logs.Debug(format, v...) }

// Closure defers message formatting until the logger actually decides to
// emit it, avoiding the cost of building an expensive debug string when the
// level is filtered out.
type Closure func() string

func (c Closure) ToString() string { return c() }

func InitLogClosure(c func() string) Closure { return Closure(c) }
