// Package suites contains the browser test scenarios.
//
// Tests in this package use other packages as follows:
//
// uitest: the basic test scope framework, with retries
//
// harness: one browser session per test, closed (with a screenshot on failure) when the test ends
//
// pages: page objects for the application under test
//
// config: the environment configuration, such as credentials
package suites
