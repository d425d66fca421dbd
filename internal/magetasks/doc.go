// Package magetasks holds the build, test and lint tasks behind the
// Magefile, so they can be tested like any other package.
package magetasks
