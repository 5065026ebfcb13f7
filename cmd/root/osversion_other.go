//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package root

// osVersion is unknown here. An empty version is left out of the hit.
func osVersion() string {
	return ""
}
