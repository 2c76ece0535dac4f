//go:build !linux

package diagnostic

// IsTerminal reports whether fd refers to a terminal. Color output is
// only enabled on Linux.
func IsTerminal(fd uintptr) bool {
	return false
}
