package tui

import (
	"bytes"
	"io"
	"os"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns what was written.
func captureStdout(fn func()) string {
	return capture(&os.Stdout, fn)
}

// captureStderr runs fn with os.Stderr redirected to a pipe and returns what was written.
func captureStderr(fn func()) string {
	return capture(&os.Stderr, fn)
}

func capture(target **os.File, fn func()) string {
	old := *target
	r, w, _ := os.Pipe()
	*target = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	*target = old
	return <-done
}
