package uitest

// RetryAnalyzer decides whether a failed test method gets another attempt. Each test method
// gets its own analyzer from the configured RetryPolicy, so the count never carries over from
// one method to the next.
type RetryAnalyzer struct {
	count int
	max   int
}

func NewRetryAnalyzer(maxRetries int) *RetryAnalyzer {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryAnalyzer{max: maxRetries}
}

// Retry is called after a failed attempt. It returns true, and counts the retry, if the
// method has retries left.
func (r *RetryAnalyzer) Retry() bool {
	if r.count < r.max {
		r.count++
		return true
	}
	return false
}

// Count is the number of retries used so far.
func (r *RetryAnalyzer) Count() int { return r.count }

func (r *RetryAnalyzer) Max() int { return r.max }

// RetryPolicy creates the RetryAnalyzer for one test method.
type RetryPolicy func(id TestID) *RetryAnalyzer

// MaxRetries is a RetryPolicy giving every test method the same number of retries.
func MaxRetries(n int) RetryPolicy {
	return func(TestID) *RetryAnalyzer { return NewRetryAnalyzer(n) }
}
