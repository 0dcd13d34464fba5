// ABOUTME: test_dummy: the reference on-demand module exercising install, native load, and contents
// ABOUTME: Execute dispatches test cases through the test_dummy_execute entry point

package testdummy

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/mauromedda/featuremod-go/internal/module"
	"github.com/mauromedda/featuremod-go/internal/native"
)

// Name is the module name in the catalog.
const Name module.Name = "test_dummy"

// EntryPoint is the exported symbol backing Execute.
const EntryPoint = "test_dummy_execute"

// Test cases understood by Execute.
const (
	CaseEcho     = 0 // returns the entry point's fixed answer
	CaseFailure  = 1 // the entry point reports failure
	CaseResource = 2 // returns the size of the module's bundled resource
)

// Status codes returned by the entry point for non-data outcomes.
const (
	statusFailed  = -1
	statusUnknown = -2
)

// Answer is what CaseEcho returns.
const Answer = 42

var (
	// ErrCaseFailed is returned when the entry point reports failure.
	ErrCaseFailed = errors.New("test case failed inside module")
	// ErrUnknownCase is returned for a test case the module does not know.
	ErrUnknownCase = errors.New("unknown test case")
)

//go:embed resource.txt
var resource string

// Contents is what the module exposes once installed and loaded.
type Contents interface {
	Execute(testCase int) (int, error)
}

type contents struct {
	execute func(int32) int32
}

// New binds the module's contents to its resolved entry points.
func New(syms native.Symbols) (Contents, error) {
	c := &contents{}
	if err := syms.Bind(EntryPoint, &c.execute); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *contents) Execute(testCase int) (int, error) {
	if testCase < 0 || testCase > 1<<30 {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCase, testCase)
	}
	switch r := c.execute(int32(testCase)); r {
	case statusFailed:
		return 0, fmt.Errorf("case %d: %w", testCase, ErrCaseFailed)
	case statusUnknown:
		return 0, fmt.Errorf("%w: %d", ErrUnknownCase, testCase)
	default:
		return int(r), nil
	}
}

// execute is the in-process implementation of EntryPoint. Its signature
// matches what a C library would export: int32_t test_dummy_execute(int32_t).
func execute(testCase int32) int32 {
	switch testCase {
	case CaseEcho:
		return Answer
	case CaseFailure:
		return statusFailed
	case CaseResource:
		return int32(len(resource))
	default:
		return statusUnknown
	}
}

// Register makes the in-process entry points available to table.
func Register(table *native.TableLoader) {
	table.Register(string(Name), EntryPoint, execute)
}

// NewProvider returns the facade application code uses to reach the module.
func NewProvider(installer *module.Installer, loader module.Loader) *module.Provider[Contents] {
	return module.NewProvider(Name, installer, loader, New)
}
