package uitest

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaharness/uiharness/framework"
)

// recordingTestLogger keeps every event as a string, in order.
type recordingTestLogger struct {
	events  []string
	results map[string]TestResult
	lock    sync.Mutex
}

func (r *recordingTestLogger) add(format string, args ...interface{}) {
	r.lock.Lock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
	r.lock.Unlock()
}

func (r *recordingTestLogger) TestStarted(id TestID) { r.add("started %s", id) }
func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.add("error %s: %s", id, err)
}
func (r *recordingTestLogger) TestRetrying(id TestID, retry, maxRetries int) {
	r.add("retrying %s %d/%d", id, retry, maxRetries)
}
func (r *recordingTestLogger) TestFinished(id TestID, result TestResult, _ framework.CapturedOutput) {
	r.lock.Lock()
	if r.results == nil {
		r.results = make(map[string]TestResult)
	}
	r.results[id.String()] = result
	r.lock.Unlock()
	r.add("finished %s %s", id, result.Outcome)
}
func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.add("skipped %s (%s)", id, reason)
}

func TestTestScopeInheritsConfiguration(t *testing.T) {
	myContextValue := "hi"
	myCapabilities := framework.Capabilities{"a", "b"}
	config := TestConfiguration{
		Context:      myContextValue,
		Capabilities: myCapabilities,
	}
	_ = Run(config, func(ut *T) {
		assert.Equal(t, myContextValue, ut.Context())
		assert.Equal(t, myCapabilities, ut.Capabilities())

		ut.Run("subtest", func(ut1 *T) {
			assert.Equal(t, myContextValue, ut1.Context())
			assert.Equal(t, myCapabilities, ut1.Capabilities())
		})
	})
}

func TestTestScopeExitsImmediatelyOnFailNow(t *testing.T) {
	executed1, executed2, executed3 := false, false, false
	_ = Run(TestConfiguration{}, func(ut *T) {
		ut.Run("", func(ut *T) {
			executed1 = true
			ut.FailNow()
			executed2 = true
		})
		executed3 = true
	})
	assert.True(t, executed1)
	assert.False(t, executed2)
	assert.True(t, executed3)
}

func TestTestScopeExitsImmediatelyOnSkip(t *testing.T) {
	executed1, executed2, executed3 := false, false, false
	_ = Run(TestConfiguration{}, func(ut *T) {
		ut.Run("", func(ut *T) {
			executed1 = true
			ut.Skip()
			executed2 = true
		})
		executed3 = true
	})
	assert.True(t, executed1)
	assert.False(t, executed2)
	assert.True(t, executed3)
}

func TestTestScopePassedResult(t *testing.T) {
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("parent", func(ut0 *T) {
			ut0.Run("subtest1", func(*T) {})
			ut0.Run("subtest2", func(*T) {})
		})
	})

	assert.True(t, result.OK())
	require.Len(t, result.Tests, 4)
	assert.Len(t, result.Failures, 0)

	assert.Equal(t, TestID{"parent", "subtest1"}, result.Tests[0].TestID)
	assert.Equal(t, OutcomePassed, result.Tests[0].Outcome)
	assert.Equal(t, 1, result.Tests[0].Attempts)
	assert.Equal(t, TestID{"parent", "subtest2"}, result.Tests[1].TestID)
	assert.Equal(t, TestID{"parent"}, result.Tests[2].TestID)
	assert.Nil(t, result.Tests[3].TestID)
}

func TestTestScopeFailedResult(t *testing.T) {
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("parent", func(ut0 *T) {
			ut0.Run("subtest1", func(*T) {})
			ut0.Run("subtest2", func(ut2 *T) {
				ut2.Errorf("failed because %s", "reasons")
				ut2.Errorf("and failed some more")
			})
			ut0.Errorf("and parent failed")
		})
	})

	assert.False(t, result.OK())
	require.Len(t, result.Tests, 4)
	assert.Len(t, result.Failures, 2)

	assert.Equal(t, OutcomePassed, result.Tests[0].Outcome)

	assert.Equal(t, TestID{"parent", "subtest2"}, result.Tests[1].TestID)
	assert.Equal(t, OutcomeFailed, result.Tests[1].Outcome)
	require.Len(t, result.Tests[1].Errors, 2)
	assert.Equal(t, "failed because reasons", result.Tests[1].Errors[0].Error())
	assert.Equal(t, "and failed some more", result.Tests[1].Errors[1].Error())

	assert.Equal(t, TestID{"parent"}, result.Tests[2].TestID)
	require.Len(t, result.Tests[2].Errors, 1)
	assert.Equal(t, "and parent failed", result.Tests[2].Errors[0].Error())
}

func TestTestScopeSkippedResult(t *testing.T) {
	logger := &recordingTestLogger{}
	result := Run(TestConfiguration{TestLogger: logger}, func(ut *T) {
		ut.Run("parent", func(ut0 *T) {
			ut0.Run("subtest1", func(ut1 *T) {
				ut1.Skip()
			})
			ut0.Run("subtest2", func(ut2 *T) {
				ut2.SkipWithReason("why not")
			})
		})
	})

	assert.True(t, result.OK())
	require.Len(t, result.Tests, 2)
	assert.Equal(t, TestID{"parent"}, result.Tests[0].TestID)
	assert.Contains(t, logger.events, "skipped parent/subtest2 (why not)")
}

func TestTestScopeNonCriticalFailure(t *testing.T) {
	result := Run(TestConfiguration{Retry: MaxRetries(2)}, func(ut *T) {
		ut.Run("flaky", func(ut1 *T) {
			ut1.NonCritical("known issue")
			ut1.Errorf("boom")
		})
	})

	assert.True(t, result.OK())
	require.Len(t, result.NonCriticalFailures, 1)
	r := result.NonCriticalFailures[0]
	assert.Equal(t, OutcomeFailedWithinSuccessPercentage, r.Outcome)
	assert.Equal(t, "known issue", r.Explanation)
	assert.Equal(t, 1, r.Attempts)
}

func TestTestScopeUnexpectedPanic(t *testing.T) {
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("panics", func(*T) {
			panic("oops")
		})
	})
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Errors[0].Error(), "unexpected panic in test: oops")
}

func TestTestScopeFailNowWithoutMessage(t *testing.T) {
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("silent", func(ut1 *T) { ut1.FailNow() })
	})
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "test failed with no failure message", result.Failures[0].Errors[0].Error())
}

func TestTestScopeFilter(t *testing.T) {
	filter := func(id TestID) bool {
		return len(id) == 0 || id[0] == "b"
	}

	result := Run(TestConfiguration{Filter: filter}, func(ut *T) {
		ut.Run("a", func(ut0 *T) {
			ut0.Run("sub1a", func(*T) {})
		})
		ut.Run("b", func(ut0 *T) {
			ut0.Run("sub1b", func(*T) {})
			ut0.Run("sub2b", func(*T) {})
		})
	})

	assert.True(t, result.OK())
	require.Len(t, result.Tests, 4)
	assert.Equal(t, TestID{"b", "sub1b"}, result.Tests[0].TestID)
	assert.Equal(t, TestID{"b", "sub2b"}, result.Tests[1].TestID)
	assert.Equal(t, TestID{"b"}, result.Tests[2].TestID)
	assert.Equal(t, TestID(nil), result.Tests[3].TestID)
}

func TestDeferredCleanupsRunInReverseOnEveryExit(t *testing.T) {
	for _, exit := range []string{"pass", "fail", "skip", "panic"} {
		t.Run(exit, func(t *testing.T) {
			var calls []string
			_ = Run(TestConfiguration{}, func(ut *T) {
				ut.Run("test", func(ut1 *T) {
					ut1.Defer(func() { calls = append(calls, "first") })
					ut1.Defer(func() { calls = append(calls, "second") })
					switch exit {
					case "fail":
						ut1.FailNow()
					case "skip":
						ut1.Skip()
					case "panic":
						panic("x")
					}
				})
			})
			assert.Equal(t, []string{"second", "first"}, calls)
		})
	}
}

func TestCleanupSeesFailureAndCanAttach(t *testing.T) {
	var sawFailed bool
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("signIn", func(ut1 *T) {
			ut1.Defer(func() {
				sawFailed = ut1.Failed()
				if ut1.Failed() {
					ut1.Attach("screenshot.png", "image/png", []byte{1, 2, 3})
				}
			})
			ut1.Errorf("label mismatch")
		})
	})
	assert.True(t, sawFailed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, []Attachment{{Name: "screenshot.png", ContentType: "image/png", Data: []byte{1, 2, 3}}},
		result.Failures[0].Attachments)
}

func TestPanicInCleanupIsReportedAsFailure(t *testing.T) {
	result := Run(TestConfiguration{}, func(ut *T) {
		ut.Run("test", func(ut1 *T) {
			ut1.Defer(func() { panic(errors.New("quit failed")) })
		})
	})
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Errors[0].Error(), "quit failed")
}

func TestRetryRerunsFailingLeafUpToMax(t *testing.T) {
	logger := &recordingTestLogger{}
	runs := 0
	var cleanups int
	result := Run(TestConfiguration{TestLogger: logger, Retry: MaxRetries(2)}, func(ut *T) {
		ut.Run("always fails", func(ut1 *T) {
			runs++
			ut1.Defer(func() { cleanups++ })
			ut1.Errorf("attempt %d", runs)
		})
	})

	assert.Equal(t, 3, runs)
	assert.Equal(t, 3, cleanups)
	require.Len(t, result.Failures, 1)
	f := result.Failures[0]
	assert.Equal(t, 3, f.Attempts)
	assert.True(t, f.RetriesExhausted)
	require.Len(t, f.Errors, 1)
	assert.Equal(t, "attempt 3", f.Errors[0].Error())

	assert.Equal(t, []string{
		"started always fails",
		"error always fails: attempt 1",
		"retrying always fails 1/2",
		"error always fails: attempt 2",
		"retrying always fails 2/2",
		"error always fails: attempt 3",
		"finished always fails failed",
	}, logger.events)
}

func TestRetryStopsWhenAttemptPasses(t *testing.T) {
	runs := 0
	result := Run(TestConfiguration{Retry: MaxRetries(3)}, func(ut *T) {
		ut.Run("flaky", func(ut1 *T) {
			runs++
			if runs == 1 {
				ut1.FailNow()
			}
		})
	})
	assert.Equal(t, 2, runs)
	assert.True(t, result.OK())
	assert.Equal(t, 2, result.Tests[0].Attempts)
	assert.Equal(t, OutcomePassed, result.Tests[0].Outcome)
}

func TestRetryAnalyzerIsFreshForEachMethod(t *testing.T) {
	runs := map[string]int{}
	_ = Run(TestConfiguration{Retry: MaxRetries(1)}, func(ut *T) {
		for _, name := range []string{"a", "b"} {
			ut.Run(name, func(ut1 *T) {
				runs[name]++
				ut1.FailNow()
			})
		}
	})
	assert.Equal(t, map[string]int{"a": 2, "b": 2}, runs)
}

func TestRetryDoesNotApplyToScopesWithSubtests(t *testing.T) {
	parentRuns, childRuns := 0, 0
	_ = Run(TestConfiguration{Retry: MaxRetries(1)}, func(ut *T) {
		ut.Run("parent", func(ut0 *T) {
			parentRuns++
			ut0.Run("child", func(ut1 *T) {
				childRuns++
				ut1.FailNow()
			})
			ut0.FailNow()
		})
	})
	assert.Equal(t, 1, parentRuns)
	assert.Equal(t, 2, childRuns)
}

func TestZeroRetriesRunsOnce(t *testing.T) {
	runs := 0
	result := Run(TestConfiguration{Retry: MaxRetries(0)}, func(ut *T) {
		ut.Run("once", func(ut1 *T) {
			runs++
			ut1.FailNow()
		})
	})
	assert.Equal(t, 1, runs)
	assert.False(t, result.Failures[0].RetriesExhausted)
}

func TestDebugOutputOfRetriedAttemptIsDiscarded(t *testing.T) {
	logger := &capturingOutputLogger{}
	runs := 0
	_ = Run(TestConfiguration{TestLogger: logger, Retry: MaxRetries(1)}, func(ut *T) {
		ut.Run("test", func(ut1 *T) {
			runs++
			ut1.Debug("attempt %d", runs)
			ut1.ZapLogger().Info("from zap")
			if runs == 1 {
				ut1.FailNow()
			}
		})
	})
	out := logger.output.ToString("")
	assert.NotContains(t, out, "attempt 1")
	assert.Contains(t, out, "attempt 2")
	assert.True(t, strings.Contains(out, "from zap"))
}

type capturingOutputLogger struct {
	nullTestLogger
	output framework.CapturedOutput
}

func (c *capturingOutputLogger) TestFinished(_ TestID, _ TestResult, output framework.CapturedOutput) {
	c.output = output
}

func TestRequireCapability(t *testing.T) {
	logger := &recordingTestLogger{}
	ran := false
	_ = Run(TestConfiguration{TestLogger: logger, Capabilities: framework.Capabilities{"alerts"}}, func(ut *T) {
		ut.Run("has", func(ut1 *T) {
			ut1.RequireCapability("alerts")
			ran = true
		})
		ut.Run("lacks", func(ut1 *T) {
			ut1.RequireCapability("selfcheck")
		})
	})
	assert.True(t, ran)
	assert.Contains(t, logger.events, `skipped lacks (run does not have capability "selfcheck")`)
}
