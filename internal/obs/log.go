package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// One JSON object per line on stdout. Request completions arrive through
// LogRequest with their fields prebuilt by the HTTP layer; background work
// (retention sweeps, tool dispatch, audit writer failures) goes through
// Event and Error, which stamp the shared service fields.

const serviceName = "dealer-api"

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the shared line logger.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest emits one prebuilt entry as a JSON line.
func LogRequest(entry map[string]any) {
	emit(entry)
}

// Event emits an info-level line for a named background event.
func Event(name string, fields map[string]any) {
	emit(stamp("info", name, fields))
}

// Error emits an error-level line for a named failure.
func Error(name string, fields map[string]any) {
	emit(stamp("error", name, fields))
}

func stamp(level, event string, fields map[string]any) map[string]any {
	entry := map[string]any{
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"level":   level,
		"service": serviceName,
		"event":   event,
	}
	for k, v := range fields {
		entry[k] = v
	}
	return entry
}

func emit(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","service":"` + serviceName + `","event":"log_marshal_failed"}`)
		return
	}
	Logger().Println(string(data))
}
