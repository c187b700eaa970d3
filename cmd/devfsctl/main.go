// Command devfsctl queries and drives a running devfsd.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lmittmann/tint"

	"github.com/example/devfs/pkg/client"
	"github.com/example/devfs/pkg/devfs"
)

var (
	serverAddr = flag.String("server", client.DefaultConfig().ServerAddress, "devfsd address")
	timeout    = flag.Duration("timeout", 10*time.Second, "per-request timeout")
	verbose    = flag.Bool("v", false, "log requests")
)

var errUsage = errors.New("usage")

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] COMMAND [ARGS]

Commands:
  stat PATH              show the attributes of a node
  ls PATH                list a directory
  devices                list registered devices
  read MAJ:MIN|PATH N    read N bytes and print a hex dump
  write MAJ:MIN|PATH TEXT
                         write TEXT to a device

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

// target is a device addressed either by number or by path.
type target struct {
	path string
	id   devfs.DeviceID
}

// parseTarget accepts "MAJ:MIN" or a path.
func parseTarget(s string) (target, error) {
	if strings.HasPrefix(s, "/") {
		return target{path: s}, nil
	}
	majStr, minStr, ok := strings.Cut(s, ":")
	if !ok {
		return target{}, fmt.Errorf("invalid device %q: want MAJ:MIN or an absolute path", s)
	}
	major, err := strconv.ParseUint(majStr, 10, 32)
	if err != nil {
		return target{}, fmt.Errorf("invalid major number %q: %w", majStr, err)
	}
	minor, err := strconv.ParseUint(minStr, 10, 32)
	if err != nil {
		return target{}, fmt.Errorf("invalid minor number %q: %w", minStr, err)
	}
	return target{id: devfs.MakeDev(uint32(major), uint32(minor))}, nil
}

func run(ctx context.Context, c client.DeviceClient, out io.Writer, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch cmd, args := args[0], args[1:]; cmd {
	case "stat":
		if len(args) != 1 {
			return errUsage
		}
		attr, err := c.Stat(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "type: %s\nmode: %s (%#o)\nsize: %d\nblocks: %d\n",
			attr.Type, attr.Mode, uint16(attr.Mode), attr.Size, attr.Blocks)

	case "ls":
		path := "/"
		if len(args) == 1 {
			path = args[0]
		} else if len(args) > 1 {
			return errUsage
		}
		entries, err := c.List(ctx, path)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\n", e.Type, e.Name)
		}
		return tw.Flush()

	case "devices":
		if len(args) != 0 {
			return errUsage
		}
		devices, err := c.Devices(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DEVICE\tTYPE")
		for _, d := range devices {
			fmt.Fprintf(tw, "%s\t%s\n", d.ID, d.Type)
		}
		return tw.Flush()

	case "read":
		if len(args) != 2 {
			return errUsage
		}
		t, err := parseTarget(args[0])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid length %q", args[1])
		}

		var data []byte
		if t.path != "" {
			data, err = c.ReadPath(ctx, t.path, 0, n)
		} else {
			data, err = c.ReadDevice(ctx, t.id, 0, n)
		}
		if err != nil {
			return err
		}
		slog.Debug("Read from device.", "dev", args[0], "bytes", humanize.IBytes(uint64(len(data))))
		fmt.Fprint(out, hex.Dump(data))

	case "write":
		if len(args) != 2 {
			return errUsage
		}
		t, err := parseTarget(args[0])
		if err != nil {
			return err
		}

		var n int
		if t.path != "" {
			n, err = c.WritePath(ctx, t.path, 0, []byte(args[1]))
		} else {
			n, err = c.WriteDevice(ctx, t.id, 0, []byte(args[1]))
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", humanize.IBytes(uint64(n)))

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	return nil
}

func main() {
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))

	cfg := client.DefaultConfig()
	cfg.ServerAddress = *serverAddr
	cfg.Timeout = *timeout
	slog.Debug("Connecting.", "config", cfg.String())

	c, err := client.New(cfg)
	if err != nil {
		slog.Error("Failed to connect.", "err", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := run(context.Background(), c, os.Stdout, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			if err != errUsage {
				fmt.Fprintln(os.Stderr, err)
			}
			flag.Usage()
			c.Close()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "devfsctl: %v\n", err)
		c.Close()
		os.Exit(1)
	}
}
