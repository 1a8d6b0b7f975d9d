//go:build !fuse

package main

import "fmt"

// runMount is a stub in the default build; FUSE support pulls in cgo-free
// but syscall-heavy platform code that is opt-in via -tags fuse.
func runMount(args []string) error {
	return fmt.Errorf("mount requires building with -tags fuse")
}
