// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container drives the document conversion image under docker or
// podman. wp2tt hands it legacy word-processor files on stdin and reads a
// .docx back from stdout.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"strings"
)

// Supported runtime binaries, in detection order.
const (
	Docker = "docker"
	Podman = "podman"
)

// Job is one conversion handed to the image's entry point.
type Job struct {
	Image  string
	Target string // output format passed to the entry script, e.g. "docx"
	Input  io.Reader
	Output io.Writer
}

// Runtime converts documents inside a container.
type Runtime interface {
	// Name returns the runtime binary, Docker or Podman.
	Name() string

	// Ready reports whether the binary is on PATH and its daemon answers.
	Ready(ctx context.Context) bool

	// HasImage returns nil when image is available locally.
	HasImage(ctx context.Context, image string) error

	// Convert runs the job in a throwaway, network-less container.
	Convert(ctx context.Context, job Job) error
}

// invocation is one external command with its streams.
type invocation struct {
	name   string
	args   []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (in invocation) String() string {
	return in.name + " " + strings.Join(in.args, " ")
}

// shell starts external commands. Tests replace it.
type shell interface {
	lookPath(file string) (string, error)
	run(ctx context.Context, in invocation) error
}

type osShell struct{}

func (osShell) lookPath(file string) (string, error) { return exec.LookPath(file) }

func (osShell) run(ctx context.Context, in invocation) error {
	cmd := exec.CommandContext(ctx, in.name, in.args...)
	cmd.Stdin = in.stdin
	cmd.Stdout = in.stdout
	cmd.Stderr = in.stderr
	return cmd.Run()
}

// cli is a Runtime backed by a docker-compatible command line. The two
// binaries disagree only on how to check for an image.
type cli struct {
	bin        string
	imageCheck []string
	sh         shell
}

func newCLI(bin string, sh shell) *cli {
	imageCheck := []string{"image", "inspect"}
	if bin == Podman {
		imageCheck = []string{"image", "exists"}
	}
	return &cli{bin: bin, imageCheck: imageCheck, sh: sh}
}

func (c *cli) Name() string { return c.bin }

func (c *cli) Ready(ctx context.Context) bool {
	if _, err := c.sh.lookPath(c.bin); err != nil {
		return false
	}
	return c.sh.run(ctx, invocation{name: c.bin, args: []string{"info"}}) == nil
}

func (c *cli) HasImage(ctx context.Context, image string) error {
	in := invocation{name: c.bin, args: append(slices.Clone(c.imageCheck), image)}
	if err := c.sh.run(ctx, in); err != nil {
		return fmt.Errorf("image %s not available to %s (build it with `mage image`): %w", image, c.bin, err)
	}
	return nil
}

func (c *cli) Convert(ctx context.Context, job Job) error {
	args := []string{"run", "--rm", "-i", "--network", "none", job.Image}
	if job.Target != "" {
		args = append(args, job.Target)
	}
	var stderr bytes.Buffer
	in := invocation{name: c.bin, args: args, stdin: job.Input, stdout: job.Output, stderr: &stderr}
	if err := c.sh.run(ctx, in); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.bin, err, msg)
		}
		return fmt.Errorf("%s: %w", c.bin, err)
	}
	return nil
}

// Detect returns the first ready runtime. An empty prefer tries Docker then
// Podman; otherwise only the preferred binary is considered.
func Detect(ctx context.Context, prefer string) (Runtime, error) {
	return detect(ctx, osShell{}, prefer)
}

func detect(ctx context.Context, sh shell, prefer string) (Runtime, error) {
	candidates := []string{Docker, Podman}
	if prefer != "" {
		if !slices.Contains(candidates, prefer) {
			return nil, fmt.Errorf("unknown container runtime %q", prefer)
		}
		candidates = []string{prefer}
	}
	for _, bin := range candidates {
		if c := newCLI(bin, sh); c.Ready(ctx) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no container runtime ready (tried %s)", strings.Join(candidates, ", "))
}
