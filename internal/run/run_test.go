// SPDX-License-Identifier: MPL-2.0

package run

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/invowk/realmake/internal/args"
	"github.com/invowk/realmake/internal/toolchain"
	"github.com/invowk/realmake/pkg/types"

	"github.com/charmbracelet/log"
)

type stubRunner struct {
	code  types.ExitCode
	err   error
	calls []toolchain.Invocation
}

func (s *stubRunner) Run(_ context.Context, inv toolchain.Invocation) (types.ExitCode, error) {
	s.calls = append(s.calls, inv)
	return s.code, s.err
}

func TestLogThresholdAndSinks(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	r := New(false, &out, &errOut)
	r.Debugf("hidden %d", 1)
	r.Infof("visible %s", "info")
	r.Warnf("careful")
	r.Errorf("broken")

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("DEBUG must be suppressed at INFO threshold: %q", out.String())
	}
	if !strings.Contains(out.String(), "visible info") {
		t.Errorf("INFO must reach the normal sink: %q", out.String())
	}
	if strings.Contains(out.String(), "careful") || strings.Contains(out.String(), "broken") {
		t.Errorf("WARN/ERROR must not reach the normal sink: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "careful") || !strings.Contains(errOut.String(), "broken") {
		t.Errorf("WARN/ERROR must reach the diagnostic sink: %q", errOut.String())
	}
	if r.Debug() {
		t.Error("Debug() = true without debug flag")
	}
}

func TestLogDebugThreshold(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	r := New(true, &out, &out)
	r.Debugf("details")
	if !strings.Contains(out.String(), "details") {
		t.Errorf("DEBUG must be written at DEBUG threshold: %q", out.String())
	}
	if !r.Debug() {
		t.Error("Debug() = false with debug flag")
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	r := New(false, &bytes.Buffer{}, &bytes.Buffer{}, WithClock(func() time.Time { return now }))
	now = base.Add(1500 * time.Millisecond)

	if got := r.Duration(); got != 1500*time.Millisecond {
		t.Errorf("Duration() = %v", got)
	}
	if !r.Start().Equal(base) {
		t.Errorf("Start() = %v", r.Start())
	}
}

func TestToolSuccessAndFailure(t *testing.T) {
	t.Parallel()

	stub := &stubRunner{}
	r := New(false, &bytes.Buffer{}, &bytes.Buffer{}, WithRunner(stub))
	if err := r.Tool(context.Background(), "javac", args.New("-d", "out")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stub.calls) != 1 || stub.calls[0].Tool != "javac" || stub.calls[0].Args[1] != "out" {
		t.Fatalf("unexpected invocation: %+v", stub.calls)
	}

	stub.code = 2
	err := r.Tool(context.Background(), "jar", args.New("--create"))
	var tie *toolchain.ToolInvocationError
	if !errors.As(err, &tie) {
		t.Fatalf("expected ToolInvocationError, got %v", err)
	}
	if tie.Tool != "jar" || tie.Code != 2 {
		t.Errorf("unexpected error fields: %+v", tie)
	}
}

func TestLaunchInheritsStreams(t *testing.T) {
	t.Parallel()

	stub := &stubRunner{code: 1}
	in := strings.NewReader("")
	var out, errOut bytes.Buffer
	r := New(false, &out, &errOut, WithRunner(stub), WithStdin(in))

	code, err := r.Launch(context.Background(), "java", args.New("--module", "engine"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
	inv := stub.calls[0]
	if inv.Stdin != in || inv.Stdout != &out || inv.Stderr != &errOut {
		t.Error("launched process must inherit the run's streams")
	}
}

func TestLogwStructuredFields(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	r := New(false, &out, &errOut)
	r.Logw(log.InfoLevel, "Building module", "realm", "main", "module", "a")
	r.Logw(log.WarnLevel, "Mixed layout", "module", "b")
	r.Logw(log.DebugLevel, "hidden")

	if !strings.Contains(out.String(), "realm=main") || !strings.Contains(out.String(), "module=a") {
		t.Errorf("normal sink missing key/value pairs: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "module=b") {
		t.Errorf("diagnostic sink missing WARN entry: %q", errOut.String())
	}
	if strings.Contains(out.String(), "hidden") {
		t.Errorf("DEBUG must be suppressed: %q", out.String())
	}
}
