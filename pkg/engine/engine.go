// Package engine defines the contract between the ATF adapter and the test
// engine that actually discovers and executes test cases.
//
// The adapter never runs tests itself. Any type satisfying [Engine] can be
// plugged in: the in-process engine in package suite, the go tool driver in
// package gotest, or a custom one.
package engine

import (
	"context"
	"errors"
)

// Sentinel errors shared by engine implementations.
var (
	// ErrUnknownMarker indicates a test case carries an annotation that was
	// never registered through Engine.RegisterMarker.
	ErrUnknownMarker = errors.New("engine: unknown marker")

	// ErrNoSuchTest indicates Run was asked for a test case the engine does
	// not provide.
	ErrNoSuchTest = errors.New("engine: no such test case")
)

// Engine discovers and executes test cases.
type Engine interface {
	// RegisterMarker declares an annotation name as valid. Engines reject
	// annotations that were not registered when they discover tests.
	RegisterMarker(name, description string)

	// Discover returns every test case the program provides, in the
	// engine's own order.
	Discover(ctx context.Context, env Env) ([]TestCase, error)

	// Run executes exactly one test case and reports each phase to observe.
	// The returned status is the process exit status the engine wants the
	// program to end with.
	Run(ctx context.Context, env Env, name string, observe Observer) (int, error)
}

// Env carries the test program environment given on the command line.
type Env struct {
	// SrcDir is the absolute directory holding the test program's data.
	SrcDir string
	// Vars are the -v configuration variables in command-line order.
	Vars []Var
}

// Var is one configuration variable.
type Var struct {
	Key   string
	Value string
}

// Lookup returns the value of the configuration variable key.
func (e Env) Lookup(key string) (string, bool) {
	for _, v := range e.Vars {
		if v.Key == key {
			return v.Value, true
		}
	}
	return "", false
}
