// Package caller prints the Go call stack leading to a kernel panic. It
// exists because spec.md §7 treats every programmer error (bad fd, unknown
// syscall id, overlapping memory areas) as a panic: halting the hart is the
// correct response, but a halt with no call stack is useless to whoever
// wrote the bug.
package caller

import (
	"fmt"
	"runtime"
)

// Dump prints the call stack starting at the given skip depth, in the same
// "file:line\n\t<-file:line" shape the teacher used for its own debugging
// dumps.
func Dump(skip int) string {
	i := skip
	s := ""
	for {
		_, f, l, ok := runtime.Caller(i)
		if !ok {
			break
		}
		i++
		if s == "" {
			s = fmt.Sprintf("%s:%d\n", f, l)
		} else {
			s += fmt.Sprintf("\t<-%s:%d\n", f, l)
		}
	}
	return s
}

// Recover is deferred by proc.Processor.Exit so that a panic on the
// thread-exit path prints its origin before the hart halts (in this
// hosted reimplementation, before the process exits) rather than only a Go
// runtime traceback of the recover point.
func Recover(context string) {
	if r := recover(); r != nil {
		fmt.Printf("panic in %s: %v\n%s", context, r, Dump(2))
		panic(r)
	}
}
