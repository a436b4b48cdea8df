//go:build mage

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the demo into bin/ember.
func (Build) Ember() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/ember", "./cmd/ember"), withStream())
	return err
}

// Runs go vet and the unit tests.
func Test() error {
	mg.Deps(Vet)
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

func Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

type Run mg.Namespace

// Opens the demo window with ember.toml.
func (Run) Window() error {
	_, err := executeCmd("go", withArgs("run", "./cmd/ember", "-config", "ember.toml"), withStream())
	return err
}

// Simulates the demo without a window and prints the particle counts.
func (Run) Headless() error {
	_, err := executeCmd("go", withArgs("run", "./cmd/ember", "-headless", "-frames", "600"), withStream())
	return err
}

type cmdOptions struct {
	args   []string
	stream bool
}

type cmdOption func(*cmdOptions)

func withArgs(args ...string) cmdOption {
	return func(o *cmdOptions) {
		o.args = args
	}
}

func withStream() cmdOption {
	return func(o *cmdOptions) {
		o.stream = true
	}
}

func executeCmd(command string, options ...cmdOption) (string, error) {
	opts := &cmdOptions{}
	for _, o := range options {
		o(opts)
	}

	fmt.Printf("Executing: %s %s\n", command, strings.Join(opts.args, " "))
	cmd := exec.Command(command, opts.args...)

	streamOutput := mg.Verbose() || opts.stream

	var b bytes.Buffer
	if streamOutput {
		cmd.Stdout = io.MultiWriter(&b, os.Stdout)
		cmd.Stderr = io.MultiWriter(&b, os.Stderr)
	} else {
		cmd.Stdout = &b
		cmd.Stderr = &b
	}
	if err := cmd.Run(); err != nil {
		if !streamOutput {
			fmt.Println("... failed command output:")
			fmt.Println(b.String())
		}
		return "", fmt.Errorf("error executing %s: %w", command, err)
	}
	return b.String(), nil
}
