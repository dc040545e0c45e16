package uitest

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/qaharness/uiharness/framework"
	o "github.com/qaharness/uiharness/framework/opt"
)

// SuiteInfo describes the run for the properties section of the JUnit report.
type SuiteInfo struct {
	Name        string
	RunID       string
	Environment string
	Browser     string
	Engine      string
}

type JUnitTestLogger struct {
	filePath    string
	suiteInfo   SuiteInfo
	filters     RegexFilters
	attachments AttachmentIndex
	testIDs     []TestID // this slice preserves the order that the tests were run in
	tests       map[string]jUnitTestStatus
	lock        sync.Mutex
}

type jUnitTestStatus struct {
	failures    []error
	skipped     o.Maybe[string]
	nonCritical bool
	explanation string
	attempts    int
	output      string
	startTime   time.Time
	duration    time.Duration
}

// Struct definitions for the JUnit XML schema - see https://github.com/jstemmer/go-junit-report

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Skipped    int                `xml:"skipped,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
	SystemOut   string               `xml:"system-out,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

func NewJUnitTestLogger(
	filePath string,
	suiteInfo SuiteInfo,
	filters RegexFilters,
) *JUnitTestLogger {
	return &JUnitTestLogger{
		filePath:  filePath,
		suiteInfo: suiteInfo,
		filters:   filters,
		tests:     make(map[string]jUnitTestStatus),
	}
}

// WithAttachments makes the report list each test's saved attachments in its system-out, as
// [[ATTACHMENT|path]] lines that CI servers turn into links.
func (j *JUnitTestLogger) WithAttachments(index AttachmentIndex) *JUnitTestLogger {
	j.attachments = index
	return j
}

func (j *JUnitTestLogger) TestStarted(id TestID) {
	j.lock.Lock()
	defer j.lock.Unlock()
	j.testIDs = append(j.testIDs, id)
	j.tests[id.String()] = jUnitTestStatus{
		startTime: time.Now(),
		attempts:  1,
	}
}

func (j *JUnitTestLogger) TestError(id TestID, err error) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.tests[id.String()]
	status.failures = append(status.failures, err)
	j.tests[id.String()] = status
}

// TestRetrying forgets the failures of the attempt that is being retried; only the last
// attempt decides how the test case is reported.
func (j *JUnitTestLogger) TestRetrying(id TestID, retry int, _ int) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.tests[id.String()]
	status.failures = nil
	status.attempts = retry + 1
	j.tests[id.String()] = status
}

func (j *JUnitTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.tests[id.String()]
	status.output = debugOutput.ToString("")
	status.duration = time.Since(status.startTime)
	status.nonCritical = result.NonCritical
	status.explanation = result.Explanation
	status.attempts = result.Attempts
	j.tests[id.String()] = status
}

func (j *JUnitTestLogger) TestSkipped(id TestID, reason string) {
	j.lock.Lock()
	defer j.lock.Unlock()
	status := j.tests[id.String()]
	status.skipped = o.Some(reason)
	j.tests[id.String()] = status
}

// EndLog writes the report. Call it after the run, once every listener has seen every test.
func (j *JUnitTestLogger) EndLog() error {
	j.lock.Lock()
	defer j.lock.Unlock()

	fmt.Printf("Writing JUnit data to %s\n", j.filePath)

	var doc jUnitXMLDocument

	properties := []jUnitXMLProperty{
		{Name: "suite.name", Value: j.suiteInfo.Name},
		{Name: "suite.runId", Value: j.suiteInfo.RunID},
		{Name: "suite.env", Value: j.suiteInfo.Environment},
		{Name: "suite.browser", Value: j.suiteInfo.Browser},
		{Name: "suite.engine", Value: j.suiteInfo.Engine},
		{Name: "tests.filter.mustMatch", Value: j.filters.MustMatch.String()},
		{Name: "tests.filter.mustNotMatch", Value: j.filters.MustNotMatch.String()},
	}

	for _, topLevelID := range getTopLevelIDs(j.testIDs) {
		suite := jUnitXMLTestSuite{
			Name:       fmt.Sprintf("%s: %s", j.suiteName(), topLevelID),
			Properties: properties,
		}
		suiteTotalDuration := time.Duration(0)
		for _, testID := range j.testIDs {
			if len(testID) == 0 || testID[0] != topLevelID {
				continue
			}
			suite.TestCases = append(suite.TestCases, j.makeTestCase(testID, &suite))
			suiteTotalDuration += j.tests[testID.String()].duration
		}
		suite.Time = jUnitDurationString(suiteTotalDuration)
		doc.Suites = append(doc.Suites, suite)
	}

	bytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	bytes = append([]byte(xml.Header), bytes...)
	bytes = append(bytes, '\n')

	if dir := filepath.Dir(j.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil { //nolint:gosec
			return err
		}
	}
	return os.WriteFile(j.filePath, bytes, 0644) //nolint:gosec
}

func (j *JUnitTestLogger) suiteName() string {
	if j.suiteInfo.Name != "" {
		return j.suiteInfo.Name
	}
	return "UI tests"
}

func (j *JUnitTestLogger) makeTestCase(testID TestID, suite *jUnitXMLTestSuite) jUnitXMLTestCase {
	status := j.tests[testID.String()]

	suite.Tests++
	testCase := jUnitXMLTestCase{
		Classname: testID[0],
		Name:      testID.String(),
		Time:      jUnitDurationString(status.duration),
	}
	if status.nonCritical {
		testCase.Name += " (non-critical)"
	}
	if status.skipped.IsDefined() {
		suite.Skipped++
		testCase.SkipMessage = &jUnitXMLSkipMessage{Message: status.skipped.Value()}
	}
	if len(status.failures) != 0 {
		if !status.nonCritical {
			suite.Failures++
		}
		messages := make([]string, 0, len(status.failures))
		for _, e := range status.failures {
			messages = append(messages, errorDetail(e))
		}
		failureType := "failed"
		if status.nonCritical {
			failureType = string(OutcomeFailedWithinSuccessPercentage)
		}
		testCase.Failure = &jUnitXMLFailure{
			Message:  strings.Join(messages, "\n"),
			Type:     failureType,
			Contents: status.output,
		}
	}

	var out []string
	if status.attempts > 1 {
		out = append(out, fmt.Sprintf("attempts: %d", status.attempts))
	}
	if status.explanation != "" {
		out = append(out, "non-critical: "+status.explanation)
	}
	if j.attachments != nil {
		for _, path := range j.attachments.AttachmentPaths(testID) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			out = append(out, fmt.Sprintf("[[ATTACHMENT|%s]]", path))
		}
	}
	testCase.SystemOut = strings.Join(out, "\n")
	return testCase
}

func getTopLevelIDs(allIDs []TestID) []string {
	var ret []string
	seen := make(map[string]bool)
	for _, testID := range allIDs {
		if len(testID) != 0 && !seen[testID[0]] {
			ret = append(ret, testID[0])
			seen[testID[0]] = true
		}
	}
	return ret
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
