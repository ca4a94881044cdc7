package probe

import (
	"github.com/samvad-hq/samvad-api-probe/internal/domain"
	"github.com/samvad-hq/samvad-api-probe/internal/logger"
)

// LogHandler writes probe results to the success and error log sinks.
type LogHandler struct {
	log logger.Logger
}

// NewLogHandler returns a handler that logs through log (or discards when nil).
func NewLogHandler(log logger.Logger) *LogHandler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &LogHandler{log: log}
}

func (h *LogHandler) OnSuccess(res domain.Result) {
	h.log.InfoObj("api probe succeeded", "data", res.Data)
	h.log.DebugObj("api probe response", "probe_response", map[string]any{
		"url":         res.URL,
		"status_code": res.StatusCode,
		"elapsed_ms":  res.Elapsed.Milliseconds(),
	})
}

func (h *LogHandler) OnError(err error) {
	h.log.ErrorObj("api probe failed", "probe_error", map[string]any{
		"kind":  Kind(err),
		"error": err.Error(),
	})
}

// HandlerFuncs adapts plain functions to Handler; nil funcs are skipped.
type HandlerFuncs struct {
	Success func(domain.Result)
	Failure func(error)
}

func (f HandlerFuncs) OnSuccess(res domain.Result) {
	if f.Success != nil {
		f.Success(res)
	}
}

func (f HandlerFuncs) OnError(err error) {
	if f.Failure != nil {
		f.Failure(err)
	}
}
