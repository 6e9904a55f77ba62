// Package compiler turns user-submitted source code into a wasm binary by
// staging it into a boilerplate crate and invoking the external build
// toolchain. The gateway's deploy handler depends only on the Compiler
// interface; tests substitute a fake.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/wasmfaas/pkg/logging"
)

// Compiler compiles a source snippet to a wasm binary.
type Compiler interface {
	Compile(ctx context.Context, source string) ([]byte, error)
}

// ErrCompileFailed means the toolchain ran but rejected the source. The
// submitted code is at fault, not the gateway; callers surface it as 4xx.
var ErrCompileFailed = errors.New("compiler: source failed to compile")

// IsCompileFailed reports whether err is (or wraps) ErrCompileFailed.
func IsCompileFailed(err error) bool { return errors.Is(err, ErrCompileFailed) }

// templateMarker is the placeholder in the boilerplate template that the
// submitted source replaces.
const templateMarker = "%"

// CargoCompiler stages source into a boilerplate cargo crate under its
// source directory and shells out to cargo targeting
// wasm32-unknown-unknown. One compile runs at a time per directory; the
// crate's lib.rs is overwritten on every call.
type CargoCompiler struct {
	mu     sync.Mutex
	dir    string
	logger *logging.ColoredLogger
}

var _ Compiler = (*CargoCompiler)(nil)

// NewCargoCompiler returns a CargoCompiler rooted at dir, which must
// contain the boilerplate crate with its src/lib.mrs template.
func NewCargoCompiler(dir string, logger *logging.ColoredLogger) *CargoCompiler {
	return &CargoCompiler{dir: dir, logger: logger}
}

// Compile renders the template with source, runs the build, and reads back
// the produced wasm binary.
func (c *CargoCompiler) Compile(ctx context.Context, source string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := stageSource(c.dir, source); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "cargo",
		"build",
		"--package=boilerplate",
		"--release",
		"--target=wasm32-unknown-unknown")
	cmd.Dir = c.dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			c.logger.ComponentDebug(logging.ComponentCompiler, "cargo build failed",
				zap.ByteString("output", out))
			return nil, fmt.Errorf("%w: %s", ErrCompileFailed, firstLine(out))
		}
		return nil, fmt.Errorf("compiler: run cargo: %w", err)
	}

	wasmPath := filepath.Join(c.dir, "target", "wasm32-unknown-unknown", "release", "boilerplate.wasm")
	wasm, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, fmt.Errorf("compiler: read artifact %s: %w", wasmPath, err)
	}
	return wasm, nil
}

// stageSource renders the crate's src/lib.mrs template with the submitted
// source and writes the result to src/lib.rs for the build to pick up.
func stageSource(dir, source string) error {
	templatePath := filepath.Join(dir, "src", "lib.mrs")
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("compiler: read template %s: %w", templatePath, err)
	}

	code := strings.Replace(string(template), templateMarker, source, 1)

	outPath := filepath.Join(dir, "src", "lib.rs")
	if err := os.WriteFile(outPath, []byte(code), 0o644); err != nil {
		return fmt.Errorf("compiler: write %s: %w", outPath, err)
	}
	return nil
}

// firstLine trims cargo's output to something fit for an error message.
func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
