// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"fmt"
	"syscall"
	"testing"
)

func TestFatalWatcherErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err   error
		fatal bool
	}{
		"handle limit":   {err: errnoTooManyOpenFiles, fatal: true},
		"invalid handle": {err: errnoInvalidHandle, fatal: true},
		"out of memory":  {err: errnoNotEnoughMemory, fatal: true},
		"wrapped handle": {err: fmt.Errorf("ReadDirectoryChanges: %w", errnoInvalidHandle), fatal: true},
		"access denied":  {err: syscall.Errno(5), fatal: false},
		"file not found": {err: syscall.Errno(2), fatal: false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := isFatalFsnotifyError(tt.err); got != tt.fatal {
				t.Errorf("isFatalFsnotifyError(%v) = %v, want %v", tt.err, got, tt.fatal)
			}
		})
	}
}
