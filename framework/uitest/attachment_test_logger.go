package uitest

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/qaharness/uiharness/framework"
)

var unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`) //nolint:gochecknoglobals

// AttachmentIndex reports where the attachments of a test were saved.
type AttachmentIndex interface {
	AttachmentPaths(id TestID) []string
}

// AttachmentTestLogger saves test attachments under a root directory when each test finishes.
// An attachment named "screenshot.png" on test method "signIn" goes to
// <root>/screenshot/signIn.png. A file that cannot be written is logged and otherwise ignored;
// it does not change the test result.
type AttachmentTestLogger struct {
	root   string
	logger *zap.Logger
	paths  map[string][]string
	lock   sync.Mutex
}

func NewAttachmentTestLogger(root string, logger *zap.Logger) *AttachmentTestLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentTestLogger{
		root:   root,
		logger: logger,
		paths:  make(map[string][]string),
	}
}

// AttachmentPath is where an attachment of the given test is written.
func (a *AttachmentTestLogger) AttachmentPath(id TestID, attachment Attachment) string {
	ext := filepath.Ext(attachment.Name)
	folder := strings.TrimSuffix(filepath.Base(attachment.Name), ext)
	name := unsafeFileNameChars.ReplaceAllString(id.MethodName(), "_")
	if name == "" {
		name = "run"
	}
	return filepath.Join(a.root, folder, name+ext)
}

func (a *AttachmentTestLogger) AttachmentPaths(id TestID) []string {
	a.lock.Lock()
	defer a.lock.Unlock()
	return append([]string(nil), a.paths[id.String()]...)
}

func (a *AttachmentTestLogger) TestStarted(TestID)            {}
func (a *AttachmentTestLogger) TestError(TestID, error)       {}
func (a *AttachmentTestLogger) TestRetrying(TestID, int, int) {}
func (a *AttachmentTestLogger) TestSkipped(TestID, string)    {}

func (a *AttachmentTestLogger) TestFinished(id TestID, result TestResult, _ framework.CapturedOutput) {
	if len(result.Attachments) == 0 {
		return
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	for _, attachment := range result.Attachments {
		path := a.AttachmentPath(id, attachment)
		if err := writeAttachment(path, attachment.Data); err != nil {
			a.logger.Error("could not save attachment",
				zap.String("test", id.String()),
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		a.logger.Info("saved attachment", zap.String("test", id.String()), zap.String("path", path))
		a.paths[id.String()] = append(a.paths[id.String()], path)
	}
}

func writeAttachment(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil { //nolint:gosec
		return err
	}
	return os.WriteFile(path, data, 0644) //nolint:gosec
}
