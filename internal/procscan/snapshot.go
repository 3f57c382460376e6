package procscan

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/prometheus/procfs"
)

// Snapshotter produces a point-in-time text listing of every running process
// and its invocation command line. The contract is intentionally coarse:
// one combined blob, or an error. Any failure (missing binary, non-zero exit,
// permission problem, context timeout) is reported as an error and carries no
// special taxonomy — callers are expected to degrade rather than inspect it.
type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
}

// ExecSnapshotter shells out to a process-listing utility and returns its raw
// stdout. Production use is `ps aux`; tests substitute whatever command suits.
type ExecSnapshotter struct {
	command string
	args    []string
}

func NewExecSnapshotter(command string, args ...string) *ExecSnapshotter {
	return &ExecSnapshotter{command: command, args: args}
}

func (s *ExecSnapshotter) Snapshot(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, s.command, s.args...).Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", s.command, err)
	}
	return string(out), nil
}

// ProcSnapshotter reads the kernel process table directly and joins every
// process's cmdline into one listing, one process per line. Useful in minimal
// containers that ship no ps binary.
type ProcSnapshotter struct {
	mountPoint string
}

func NewProcSnapshotter() *ProcSnapshotter {
	return &ProcSnapshotter{mountPoint: procfs.DefaultMountPoint}
}

func (s *ProcSnapshotter) Snapshot(ctx context.Context) (string, error) {
	fs, err := procfs.NewFS(s.mountPoint)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", s.mountPoint, err)
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}

	var b strings.Builder
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		args, err := p.CmdLine()
		if err != nil || len(args) == 0 {
			// Kernel threads have an empty cmdline; a process may also have
			// exited between AllProcs and here. Fall back to the short name
			// and skip entries that vanished entirely.
			comm, cerr := p.Comm()
			if cerr != nil {
				continue
			}
			args = []string{"[" + comm + "]"}
		}
		b.WriteString(strings.Join(args, " "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
