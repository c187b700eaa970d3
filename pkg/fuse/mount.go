package fuse

import (
	"context"
	"fmt"
	"log/slog"

	"bazil.org/fuse"
	bfs "bazil.org/fuse/fs"
)

// MountOptions contains options for mounting the filesystem
type MountOptions struct {
	MountPoint string
	FSName     string
	ReadOnly   bool
	AllowOther bool
	Debug      bool
}

func (o MountOptions) fuseOptions() []fuse.MountOption {
	name := o.FSName
	if name == "" {
		name = "devfs"
	}

	opts := []fuse.MountOption{
		fuse.FSName(name),
		fuse.Subtype("devfs"),
	}
	if o.ReadOnly {
		opts = append(opts, fuse.ReadOnly())
	}
	if o.AllowOther {
		opts = append(opts, fuse.AllowOther())
	}
	return opts
}

// Mount mounts filesys at the configured mount point and serves it until ctx
// is cancelled or the kernel connection ends, then unmounts it.
func Mount(ctx context.Context, filesys *FS, options MountOptions) error {
	if options.Debug {
		fuse.Debug = func(msg interface{}) {
			slog.Debug("FUSE message.", "msg", msg)
		}
	}

	slog.Info("Mounting FUSE filesystem.", "path", options.MountPoint)
	c, err := fuse.Mount(options.MountPoint, options.fuseOptions()...)
	if err != nil {
		return fmt.Errorf("failed to mount %s: %w", options.MountPoint, err)
	}
	defer c.Close()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- bfs.Serve(c, filesys)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to serve filesystem: %w", err)
		}
		slog.Info("FUSE connection closed.", "path", options.MountPoint)
		return nil
	case <-ctx.Done():
	}

	slog.Info("Unmounting FUSE filesystem.", "path", options.MountPoint)
	if err := Unmount(options.MountPoint); err != nil {
		return fmt.Errorf("failed to unmount %s: %w", options.MountPoint, err)
	}

	if err := <-serveErr; err != nil {
		return fmt.Errorf("failed to serve filesystem: %w", err)
	}
	return nil
}

// Unmount unmounts the filesystem
func Unmount(mountPoint string) error {
	return fuse.Unmount(mountPoint)
}
