package util

import (
	"log/slog"
	"os"
)

// CloseFile closes f, logging (never returning) any error. Used at call
// sites where a close failure shouldn't mask the original error being
// propagated up the stack.
func CloseFile(f *os.File) {
	if f == nil {
		return
	}
	if err := f.Close(); err != nil {
		slog.Error("close file", "path", f.Name(), "err", err)
	}
}
