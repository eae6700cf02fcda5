package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cristianoliveira/flagtree"
	"github.com/cristianoliveira/flagtree/internal/demo"
)

// inventoryEnv names a TOML inventory file to use instead of the built-in sample.
const inventoryEnv = "KUBEDEMO_INVENTORY"

// debugEnv prints the full error chain on failure.
const debugEnv = "KUBEDEMO_DEBUG"

func main() {
	os.Exit(run(os.Args[1:], os.Environ(), os.Stdout, os.Stderr))
}

func run(args, environ []string, stdout, stderr io.Writer) int {
	env := envMap(environ)

	opts := demo.Options{}
	if path := env[inventoryEnv]; path != "" {
		inv, err := demo.LoadInventory(path)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		opts.Inventory = inv
	}

	root, err := demo.NewRoot(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetEnviron(environ)

	if err := root.Execute(args); err != nil {
		_, _ = fmt.Fprintln(stderr, formatError(err, envBool(env[debugEnv])))
		return 1
	}
	return 0
}

func formatError(err error, verbose bool) string {
	var fe *flagtree.Error
	if errors.As(err, &fe) {
		return fe.Format(verbose)
	}
	return "Error: " + err.Error()
}
