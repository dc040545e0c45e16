package uitest

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestIDString(t *testing.T) {
	assert.Equal(t, "", TestID{}.String())
	assert.Equal(t, "login", TestID{"login"}.String())
	assert.Equal(t, "login/chrome/signIn", TestID{"login", "chrome", "signIn"}.String())
}

func TestTestIDPlus(t *testing.T) {
	assert.Equal(t, TestID{"name 1", "name 2"}, TestID{}.Plus("name 1").Plus("name 2"))

	// Calling Plus does not modify the original value
	id1 := TestID{"name 1"}
	id2a := id1.Plus("name 2a")
	id2b := id1.Plus("name 2b")
	assert.Equal(t, TestID{"name 1"}, id1)
	assert.Equal(t, TestID{"name 1", "name 2a"}, id2a)
	assert.Equal(t, TestID{"name 1", "name 2b"}, id2b)
}

func TestTestIDMethodName(t *testing.T) {
	assert.Equal(t, "", TestID(nil).MethodName())
	assert.Equal(t, "signIn", TestID{"login", "signIn"}.MethodName())
}

func TestResultsMergeIsSafeForConcurrentEntries(t *testing.T) {
	var total Results
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry := Run(TestConfiguration{}, func(ut *T) {
				ut.Run("pass", func(*T) {})
				ut.Run("fail", func(ut1 *T) { ut1.FailNow() })
			})
			total.Merge(entry)
		}()
	}
	wg.Wait()
	assert.Len(t, total.Tests, 30)
	assert.Len(t, total.Failures, 10)
	assert.False(t, total.OK())
}

func TestTestFailureUnwraps(t *testing.T) {
	cause := errors.New("timed out")
	f := TestFailure{ID: TestID{"a", "b"}, Err: cause}
	assert.Equal(t, "[a/b]: timed out", f.Error())
	assert.ErrorIs(t, f, cause)
}

func TestMethodCountIgnoresGroupingScopes(t *testing.T) {
	results := Run(TestConfiguration{Filter: func(id TestID) bool { return len(id) < 2 }}, func(ut *T) {
		ut.Run("entry", func(ut1 *T) {
			ut1.Run("login", func(*T) {})
		})
		ut.Run("method", func(*T) {})
	})
	assert.Len(t, results.Tests, 3)
	assert.Equal(t, 1, results.MethodCount())
}
