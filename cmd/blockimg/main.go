// Command blockimg is a thin CLI wrapping the blockfs engine's public
// operations.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/blockfs-project/blockfs"
)

const usage = `blockimg - block-chained image filesystem CLI

Usage:
  blockimg create <image> [opts]            Format a new image ("bs=128,bc=128")
  blockimg info <image>                     Show header and free-block count
  blockimg mkdir <image> <path>              Create a directory
  blockimg touch <image> <path>              Create an empty file
  blockimg ls <image> <path>                 List a directory's entries
  blockimg rm <image> <path>                 Remove a file or directory entry
  blockimg cat <image> <path> <length>       Read length bytes from a file
  blockimg write <image> <path>              Write stdin's bytes into a file
  blockimg snapshot <image> <out> [zstd|xz]  Write a compressed backup
  blockimg restore <in> <image> [zstd|xz]    Restore a compressed backup
  blockimg mount <image> <mountpoint>        Mount read-write via FUSE (built with -tags fuse)
  blockimg help                              Show this help message
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "create":
		err = runCreate(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "mkdir":
		err = runMkdir(os.Args[2:])
	case "touch":
		err = runTouch(os.Args[2:])
	case "ls":
		err = runLs(os.Args[2:])
	case "rm":
		err = runRm(os.Args[2:])
	case "cat":
		err = runCat(os.Args[2:])
	case "write":
		err = runWrite(os.Args[2:])
	case "snapshot":
		err = runSnapshot(os.Args[2:])
	case "restore":
		err = runRestore(os.Args[2:])
	case "mount":
		err = runMount(os.Args[2:])
	case "help":
		fmt.Print(usage)
		return
	default:
		fmt.Printf("Error: unknown command %q\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runCreate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("create requires an image path")
	}
	var opts []blockfs.CreateOption
	if len(args) > 1 {
		parsed, err := blockfs.ParseCreateOptions(args[1])
		if err != nil {
			return err
		}
		opts = parsed
	}
	return blockfs.Create(args[0], opts...)
}

func runInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info requires an image path")
	}
	img, err := blockfs.Open(args[0])
	if err != nil {
		return err
	}
	defer img.Close()

	info := img.Info()
	fmt.Printf("block_size:  %d\n", info.BlockSize)
	fmt.Printf("block_count: %d\n", info.BlockCount)
	fmt.Printf("free_blocks: %d\n", info.FreeBlocks)
	return nil
}

func runMkdir(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("mkdir requires an image path and a directory path")
	}
	img, err := blockfs.Open(args[0])
	if err != nil {
		return err
	}
	defer img.Close()
	return img.Mkdir(args[1])
}

func runTouch(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("touch requires an image path and a file path")
	}
	img, err := blockfs.Open(args[0])
	if err != nil {
		return err
	}
	defer img.Close()
	return img.Touch(args[1])
}

func runLs(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("ls requires an image path and a directory path")
	}
	img, err := blockfs.Open(args[0])
	if err != nil {
		return err
	}
	defer img.Close()

	listing, err := img.Ls(args[1])
	if err != nil {
		return err
	}
	for _, e := range listing {
		fmt.Println(e.String())
	}
	return nil
}

func runRm(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("rm requires an image path and a path to remove")
	}
	img, err := blockfs.Open(args[0])
	if err != nil {
		return err
	}
	defer img.Close()
	return img.Rm(args[1])
}

func runCat(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("cat requires an image path, a file path, and a length")
	}
	img, err := blockfs.Open(args[0])
	if err != nil {
		return err
	}
	defer img.Close()

	var length int
	if _, err := fmt.Sscanf(args[2], "%d", &length); err != nil {
		return fmt.Errorf("invalid length %q: %w", args[2], err)
	}

	if err := img.Fopen(args[1]); err != nil {
		return err
	}
	defer img.Fclose()

	data, err := img.Fread(length)
	if err != nil && len(data) == 0 {
		return err
	}
	_, werr := os.Stdout.Write(data)
	if werr != nil {
		return werr
	}
	return err
}

func runWrite(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("write requires an image path and a file path")
	}
	img, err := blockfs.Open(args[0])
	if err != nil {
		return err
	}
	defer img.Close()

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	if err := img.Fopen(args[1]); err != nil {
		return err
	}
	defer img.Fclose()

	return img.Fwrite(data)
}

func runSnapshot(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("snapshot requires an image path and an output path")
	}
	format := blockfs.SnapshotZstd
	if len(args) > 2 && args[2] == "xz" {
		format = blockfs.SnapshotXZ
	}

	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer out.Close()

	return blockfs.Snapshot(args[0], out, format)
}

func runRestore(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("restore requires an input path and an image path")
	}
	format := blockfs.SnapshotZstd
	if len(args) > 2 && args[2] == "xz" {
		format = blockfs.SnapshotXZ
	}

	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	return blockfs.Restore(in, args[1], format)
}
