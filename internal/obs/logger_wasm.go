//go:build js && wasm

package obs

import "syscall/js"

// redirectLogToBridge redirects a log line to the browser's JS console.
func (l *Logger) redirectLogToBridge(level LogLevel, logLine string) bool {
	console := js.Global().Get("console")
	if isValueNil(console) {
		return false
	}
	method := "warn"
	if level == ERROR || level == FATAL {
		method = "error"
	}
	console.Call(method, logLine)
	return true
}

func isValueNil(v js.Value) bool {
	return v.Type() == js.TypeNull || v.Type() == js.TypeUndefined
}
