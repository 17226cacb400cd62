package check

import (
	"fmt"
	"os"
	"path/filepath"

	"procwatch/internal/config"
)

// FolderChecker inspects drop folders for completion marker files. It
// only tests file presence; marker contents are never read.
type FolderChecker struct {
	markers config.Markers
}

// NewFolderChecker builds a checker using the configured marker names.
func NewFolderChecker(markers config.Markers) FolderChecker {
	return FolderChecker{markers: markers}
}

// EvaluateFolder checks a monitored folder for job completion. Conditions
// are tested in priority order: a missing folder preempts marker checks,
// and a failure marker preempts the success-marker requirement.
func (c FolderChecker) EvaluateFolder(folderPath string) Result {
	if !exists(folderPath) {
		return fail(fmt.Sprintf("Folder missing: %s", folderPath))
	}
	if exists(filepath.Join(folderPath, c.markers.FailureFile)) {
		return fail(fmt.Sprintf("Failure marker found: %s", c.markers.FailureFile))
	}
	if !exists(filepath.Join(folderPath, c.markers.SuccessFile)) {
		return fail(fmt.Sprintf("Missing success marker: %s", c.markers.SuccessFile))
	}
	return pass()
}

// EvaluateUC4File checks for the secondary UC4 marker independently of
// the primary folder check.
func (c FolderChecker) EvaluateUC4File(folderPath string) Result {
	if !exists(folderPath) {
		return fail(fmt.Sprintf("Folder missing: %s", folderPath))
	}
	if !exists(filepath.Join(folderPath, c.markers.UC4File)) {
		return fail(fmt.Sprintf("Missing UC4 file: %s", c.markers.UC4File))
	}
	return pass()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
