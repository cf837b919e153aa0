//go:build !js || !wasm

package obs

// redirectLogToBridge is a no-op on native platforms; stdout/stderr is
// already handled by l.output.Write.
func (l *Logger) redirectLogToBridge(level LogLevel, logLine string) bool {
	return false
}
