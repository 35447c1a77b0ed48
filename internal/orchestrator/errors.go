// SPDX-License-Identifier: MPL-2.0

package orchestrator

import (
	"errors"
	"fmt"

	"github.com/invowk/realmake/internal/builder"
	"github.com/invowk/realmake/internal/fetch"
	"github.com/invowk/realmake/internal/issue"
	"github.com/invowk/realmake/internal/realm"
	"github.com/invowk/realmake/internal/toolchain"
	"github.com/invowk/realmake/pkg/types"
)

// ErrTestRunFailure is the sentinel error wrapped by TestRunFailureError.
var ErrTestRunFailure = errors.New("test run failed")

// TestRunFailureError reports a non-zero exit of the test engine.
type TestRunFailureError struct {
	Realm string
	Code  types.ExitCode
}

func (e *TestRunFailureError) Error() string {
	return fmt.Sprintf("JUnit run of realm %q exited with code %d", e.Realm, e.Code)
}

func (e *TestRunFailureError) Unwrap() error { return ErrTestRunFailure }

// guidance maps an error to its remediation catalog entry.
func guidance(err error) (issue.Id, bool) {
	switch {
	case errors.Is(err, realm.ErrRealmNotFound):
		return issue.RealmNotFoundId, true
	case errors.Is(err, realm.ErrEmptyModuleSet):
		return issue.EmptyModuleSetId, true
	case errors.Is(err, realm.ErrRealmCycle):
		return issue.RealmCycleId, true
	case errors.Is(err, builder.ErrUnbuildableModules):
		return issue.UnbuildableModulesId, true
	case errors.Is(err, toolchain.ErrToolNotFound):
		return issue.ToolNotFoundId, true
	case errors.Is(err, fetch.ErrOfflineMissingArtifact):
		return issue.OfflineArtifactMissingId, true
	case errors.Is(err, ErrTestRunFailure):
		return issue.TestRunFailedId, true
	case errors.Is(err, toolchain.ErrToolInvocation):
		return issue.ToolInvocationFailedId, true
	default:
		return 0, false
	}
}
