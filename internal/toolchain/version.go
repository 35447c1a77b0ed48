// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// versionBanner matches "javac 17.0.2", "javac 21" and "javac 1.8.0_292".
var versionBanner = regexp.MustCompile(`javac\s+(\d+)(?:\.(\d+))?`)

// ParseFeatureVersion extracts the feature version from a compiler banner.
// Legacy "1.N" numbering reports N.
func ParseFeatureVersion(banner string) (int, error) {
	m := versionBanner.FindStringSubmatch(banner)
	if m == nil {
		return 0, fmt.Errorf("unrecognized compiler version output %q", banner)
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parse feature version %q: %w", m[1], err)
	}
	if major == 1 && m[2] != "" {
		minor, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, fmt.Errorf("parse legacy feature version %q: %w", m[2], err)
		}
		return minor, nil
	}
	return major, nil
}

// DetectFeatureVersion runs "javac -version" and parses its banner.
// Older compilers print the banner on stderr, so both streams are read.
func DetectFeatureVersion(ctx context.Context, runner Runner) (int, error) {
	var out bytes.Buffer
	code, err := runner.Run(ctx, Invocation{
		Tool:   Javac,
		Args:   []string{"-version"},
		Stdout: &out,
		Stderr: &out,
	})
	if err != nil {
		return 0, &ToolInvocationError{Tool: Javac, Code: code, Cause: err}
	}
	if !code.IsSuccess() {
		return 0, &ToolInvocationError{Tool: Javac, Code: code}
	}
	return ParseFeatureVersion(out.String())
}
