// Package version exposes the build version stamped in via ldflags.
package version

// value is overridden at build time:
//
//	-ldflags "-X github.com/bkyoung/quality-gate/internal/version.value=v1.2.3"
var value = "dev"

// Value returns the current build version.
func Value() string {
	return value
}
