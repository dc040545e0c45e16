// Package framework contains the low-level infrastructure of the UI harness that is not
// specific to any one application under test. The base package contains shared types such
// as Logger; other components are in subpackages.
//
// The general model is:
//
// 1. The harness opens one browser session per test scope through a browser backend
// (package browser and its driver subpackages) and tears it down when the scope exits.
//
// 2. Tests interact with pages only through the browser.Page facade, which adds bounded
// waits to every interaction.
//
// 3. There is a general notion of a test scope (package uitest) which is similar to Go's
// testing.T, allowing pieces of test logic to be associated with a test identifier, to be
// retried, and to accumulate success/failure results that listeners report.
//
// The application-specific code that knows what is being tested (page objects and suites)
// builds on these pieces without depending on any particular browser backend.
package framework
