//go:build fuse

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blockfs-project/blockfs"
)

// runMount mounts an image read-write at a mountpoint until interrupted.
func runMount(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("mount requires an image path and a mountpoint")
	}
	img, err := blockfs.Open(args[0])
	if err != nil {
		return err
	}
	defer img.Close()

	server, err := blockfs.Mount(img, args[1])
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		server.Unmount()
	}()

	server.Wait()
	return nil
}
