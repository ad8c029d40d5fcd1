package system

import (
	"context"
	"strings"
	"sync"
)

// MockExecutor implements CommandExecutor for testing.
type MockExecutor struct {
	mu sync.Mutex

	// Commands records all executed commands for verification.
	Commands []Cmd

	// Responses maps command patterns to responses. Lookup tries the full
	// command line first, then "name arg0", then "name".
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching response is found.
	DefaultResponse MockResponse

	// AttachedErr is returned by ExecuteAttached if set.
	AttachedErr error
}

// MockResponse defines the response for a command. A non-zero ExitCode
// without Err produces an *ExitError.
type MockResponse struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// NewMockExecutor creates a new MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Commands:  make([]Cmd, 0),
		Responses: make(map[string]MockResponse),
	}
}

// AddResponse adds a successful response with the given stdout.
func (m *MockExecutor) AddResponse(pattern string, stdout string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[pattern] = MockResponse{Stdout: stdout}
}

// AddFailure adds a non-zero exit response with the given stderr.
func (m *MockExecutor) AddFailure(pattern string, exitCode int, stderr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[pattern] = MockResponse{Stderr: stderr, ExitCode: exitCode}
}

func (m *MockExecutor) lookup(c Cmd) MockResponse {
	if resp, ok := m.Responses[c.String()]; ok {
		return resp
	}
	if len(c.Args) > 0 {
		if resp, ok := m.Responses[c.Name+" "+c.Args[0]]; ok {
			return resp
		}
	}
	if resp, ok := m.Responses[c.Name]; ok {
		return resp
	}
	return m.DefaultResponse
}

func (m *MockExecutor) Execute(ctx context.Context, c Cmd) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, c)

	resp := m.lookup(c)
	result := Result{Stdout: resp.Stdout, Stderr: resp.Stderr, ExitCode: resp.ExitCode}
	if resp.Err != nil {
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
		return result, resp.Err
	}
	if resp.ExitCode != 0 {
		return result, &ExitError{Command: c.String(), Code: resp.ExitCode}
	}
	return result, nil
}

func (m *MockExecutor) ExecuteAttached(ctx context.Context, c Cmd) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, c)

	if m.AttachedErr != nil {
		return m.AttachedErr
	}
	resp := m.lookup(c)
	if resp.Err != nil {
		return resp.Err
	}
	if resp.ExitCode != 0 {
		return &ExitError{Command: c.String(), Code: resp.ExitCode}
	}
	return nil
}

// LastCommand returns the most recently executed command.
func (m *MockExecutor) LastCommand() (Cmd, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Commands) == 0 {
		return Cmd{}, false
	}
	return m.Commands[len(m.Commands)-1], true
}

// CommandLines returns every recorded command rendered with Cmd.String.
func (m *MockExecutor) CommandLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := make([]string, len(m.Commands))
	for i, c := range m.Commands {
		lines[i] = c.String()
	}
	return lines
}

// Ran reports whether a command line starting with prefix was executed.
func (m *MockExecutor) Ran(prefix string) bool {
	for _, line := range m.CommandLines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// Reset clears all recorded commands.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = make([]Cmd, 0)
}
