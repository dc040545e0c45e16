// Package uitest is the runner that UI suites execute under. It works much like Go's testing
// package, but runs as ordinary application code so that a suite can drive real browsers
// from a command-line program.
//
// On top of the usual scope operations (Run, Errorf, FailNow, Skip, Defer) it adds retry of
// failed test methods, non-critical failures, file attachments such as failure screenshots,
// and a TestLogger listener interface with console, JUnit, attachment and Prometheus
// implementations.
package uitest
