// Package toolexectest provides a scripted toolexec.Runner for tests.
package toolexectest

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/chapterbuilder/internal/toolexec"
)

// Handler decides the outcome of one invocation. It may create files to
// simulate the tool's side effects.
type Handler func(inv toolexec.Invocation) (toolexec.Result, error)

// FakeRunner records every invocation and dispatches it to the handler
// registered for its Tool name. Tools without a handler succeed.
type FakeRunner struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []toolexec.Invocation
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{handlers: map[string]Handler{}}
}

// Handle registers h for tool, replacing any previous handler.
func (f *FakeRunner) Handle(tool string, h Handler) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[tool] = h
	return f
}

// Run implements toolexec.Runner.
func (f *FakeRunner) Run(ctx context.Context, inv toolexec.Invocation) (toolexec.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	h := f.handlers[inv.Tool]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return toolexec.Result{ExitCode: -1}, err
	}
	if h == nil {
		return Succeeded(), nil
	}
	return h(inv)
}

// Calls returns a copy of the recorded invocations in order.
func (f *FakeRunner) Calls() []toolexec.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]toolexec.Invocation, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsFor returns the recorded invocations of one tool.
func (f *FakeRunner) CallsFor(tool string) []toolexec.Invocation {
	var out []toolexec.Invocation
	for _, c := range f.Calls() {
		if c.Tool == tool {
			out = append(out, c)
		}
	}
	return out
}

// Succeeded is a zero-exit result.
func Succeeded() toolexec.Result {
	return toolexec.Result{Success: true}
}

// Failed is a non-zero exit result with the given stderr.
func Failed(code int, stderr string) toolexec.Result {
	return toolexec.Result{ExitCode: code, Stderr: stderr}
}
