package preview

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"pdfbinder/internal/common"
)

// Handle is a transient reference to file bytes usable by a preview
// surface. It must be released to avoid leaking the backing resource.
type Handle interface {
	URI() string
	Release() error
}

// HandleFactory creates the transient handle for a file.
type HandleFactory func(file common.File) (Handle, error)

// Content is the file currently shown in the preview overlay.
type Content struct {
	Handle     Handle
	MediaType  string
	Name       string
	InlineData []byte
}

// Coordinator tracks the single file (if any) being shown in an overlay
// and owns the lifecycle of its transient view handle.
type Coordinator struct {
	logger    *slog.Logger
	newHandle HandleFactory

	mu                sync.Mutex
	content           *Content
	passwordProtected bool
}

// NewCoordinator creates a new coordinator instance
func NewCoordinator(logger *slog.Logger, factory HandleFactory) *Coordinator {
	return &Coordinator{
		logger:    logger,
		newHandle: factory,
	}
}

// Open shows file in the preview. Any existing preview is closed first, so
// the prior handle is released before the new one is created.
func (c *Coordinator) Open(file common.File, isPasswordProtected bool, inlineData []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()

	handle, err := c.newHandle(file)
	if err != nil {
		return fmt.Errorf("failed to create preview handle for %s: %w", file.Name, err)
	}

	c.content = &Content{
		Handle:     handle,
		MediaType:  common.DetectMediaType(file.Name, file.MediaType),
		Name:       file.Name,
		InlineData: inlineData,
	}
	c.passwordProtected = isPasswordProtected
	return nil
}

// Close releases the transient handle, if present, and clears all preview
// state. Closing an already-closed preview is a no-op.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Coordinator) closeLocked() {
	if c.content == nil {
		return
	}
	if err := c.content.Handle.Release(); err != nil {
		c.logger.Warn("failed to release preview handle", "file", c.content.Name, "error", err)
	}
	c.content = nil
	c.passwordProtected = false
}

// IsOpen reports whether a preview is currently shown.
func (c *Coordinator) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content != nil
}

// Current returns the content being previewed, or nil.
func (c *Coordinator) Current() *Content {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

// IsPasswordProtected reports the protected flag for the current preview.
func (c *Coordinator) IsPasswordProtected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passwordProtected
}

// FileHandleFactory backs preview handles with temp files under workingDir.
// Release deletes the file's directory.
func FileHandleFactory(workingDir string) HandleFactory {
	return func(file common.File) (Handle, error) {
		dir := filepath.Join(workingDir, common.GenerateUUID())
		if err := os.MkdirAll(dir, common.DefaultFilePermissions); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, filepath.Base(file.Name))
		if err := os.WriteFile(path, file.Data, 0644); err != nil {
			os.RemoveAll(dir)
			return nil, err
		}
		return &fileHandle{path: path, dir: dir}, nil
	}
}

type fileHandle struct {
	path string
	dir  string
}

func (h *fileHandle) URI() string {
	return "file://" + h.path
}

func (h *fileHandle) Release() error {
	return os.RemoveAll(h.dir)
}
