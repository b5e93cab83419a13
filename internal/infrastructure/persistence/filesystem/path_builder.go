package filesystem

import (
	"fmt"
	"path/filepath"
	"strings"
)

const taskFile = "task.md"

// PathBuilder constructs filesystem paths for task records
type PathBuilder struct {
	rootPath string
}

// NewPathBuilder creates a new PathBuilder
func NewPathBuilder(rootPath string) *PathBuilder {
	return &PathBuilder{rootPath: rootPath}
}

// Root returns the directory holding every user's tasks
func (pb *PathBuilder) Root() string {
	return pb.rootPath
}

// UserDir returns the directory holding one user's tasks
func (pb *PathBuilder) UserDir(userID string) string {
	return filepath.Join(pb.rootPath, userID)
}

// TaskDir returns the directory of a single task
func (pb *PathBuilder) TaskDir(userID, taskID string) string {
	return filepath.Join(pb.UserDir(userID), taskID)
}

// TaskFile returns the path of a task's task.md file
func (pb *PathBuilder) TaskFile(userID, taskID string) string {
	return filepath.Join(pb.TaskDir(userID, taskID), taskFile)
}

// validateSegment rejects IDs that would escape their directory
func validateSegment(kind, s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) || strings.HasPrefix(s, ".") {
		return fmt.Errorf("invalid %s %q", kind, s)
	}
	return nil
}
