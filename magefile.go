//go:build mage
// +build mage

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

type Gnoagent mg.Namespace

// Build compiles the CLI into ./bin/gnoagent, stamping the version from GNOAGENT_VERSION when set.
func (Gnoagent) Build(ctx context.Context) error {
	args := []string{"build", "-o", "./bin/gnoagent"}
	if version := os.Getenv("GNOAGENT_VERSION"); version != "" {
		args = append(args, "-ldflags", "-X gnoagent/internal/version.Version="+version)
	}
	args = append(args, ".")

	cmdStr, cmd := runIn(".", "go", args...)
	fmt.Println(cmdStr)
	return cmd()
}

func (Gnoagent) Test(ctx context.Context) error {
	cmdStr, cmd := runIn(
		".",
		"go",
		"test",
		"./...",
	)
	fmt.Println(cmdStr)
	return cmd()
}

// Serve builds and runs the tool server on the default port.
func (g Gnoagent) Serve(ctx context.Context) error {
	mg.CtxDeps(ctx, g.Build)

	cmdStr, cmd := runIn(".", "./bin/gnoagent", "tools", "serve")
	fmt.Println(cmdStr)
	return cmd()
}

func runIn(cwd string, cmd string, args ...string) (string, func() error) {
	c := exec.Command(cmd, args...)
	c.Dir = cwd
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.String(), func() error {
		return c.Run()
	}
}
