package testutil

import (
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arthur-debert/menuinst/pkg/errors"
	"github.com/stretchr/testify/mock"
)

// Runner is a types.Runner fake. Calls are recorded; LookPath succeeds
// only for names registered with Provide, and Run returns whatever the
// testify expectations say, or succeeds silently when none match.
type Runner struct {
	mock.Mock

	mu        sync.Mutex
	calls     [][]string
	available map[string]string
}

// NewRunner returns a runner with no executables on its PATH
func NewRunner() *Runner {
	return &Runner{available: make(map[string]string)}
}

// Provide makes LookPath find name at path
func (r *Runner) Provide(name, path string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available[name] = path
	return r
}

// Run implements types.Runner
func (r *Runner) Run(name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{name}, args...))
	r.mu.Unlock()

	if !r.expects("Run") {
		return nil, nil
	}
	ret := r.Called(name, args)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// LookPath implements types.Runner
func (r *Runner) LookPath(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if path, ok := r.available[name]; ok {
		return path, nil
	}
	return "", errors.Wrapf(exec.ErrNotFound, errors.ErrExecutableMissing, "%s not found", name)
}

// Calls returns every recorded command line
func (r *Runner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsTo returns the recorded command lines whose program base name is name
func (r *Runner) CallsTo(name string) [][]string {
	var out [][]string
	for _, call := range r.Calls() {
		if strings.EqualFold(baseName(call[0]), name) {
			out = append(out, call)
		}
	}
	return out
}

func (r *Runner) expects(method string) bool {
	for _, call := range r.ExpectedCalls {
		if call.Method == method {
			return true
		}
	}
	return false
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return filepath.Base(p)
}

// StaticPaths is a paths.Paths with every directory fixed up front
type StaticPaths struct {
	Home   string
	Data   string
	Config string
	State  string
}

// NewStaticPaths lays out XDG-style directories under home
func NewStaticPaths(home string) *StaticPaths {
	return &StaticPaths{
		Home:   home,
		Data:   filepath.Join(home, ".local", "share"),
		Config: filepath.Join(home, ".config"),
		State:  filepath.Join(home, ".local", "state", "menuinst"),
	}
}

func (s *StaticPaths) HomeDir() string        { return s.Home }
func (s *StaticPaths) DataHome() string       { return s.Data }
func (s *StaticPaths) ConfigHome() string     { return s.Config }
func (s *StaticPaths) StateDir() string       { return s.State }
func (s *StaticPaths) LogFilePath() string    { return filepath.Join(s.State, "menuinst.log") }
func (s *StaticPaths) ConfigFilePath() string { return filepath.Join(s.Config, "menuinst", "config.toml") }
