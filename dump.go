package recipeagent

import (
	"fmt"
	"runtime"

	"github.com/davecgh/go-spew/spew"
)

// Sdump renders values with spew, prefixed by the caller's file and line.
// Meant for debug-level logging of raw model payloads.
func Sdump(v ...any) string {
	_, file, line, _ := runtime.Caller(1)
	return fmt.Sprintf("%s:%d:\n%s", file, line, spew.Sdump(v...))
}
