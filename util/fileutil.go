package util

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var AppRoot string

func init() {
	AppRoot = GetAppRoot()
}

// GetAppRoot returns the directory the running binary lives in, used as the
// base for the default data directory when none is configured.
func GetAppRoot() string {
	file, err := exec.LookPath(os.Args[0])
	if err != nil {
		return ""
	}
	p, err := filepath.Abs(file)
	if err != nil {
		return ""
	}
	return filepath.Dir(p)
}

// MergePath joins args onto AppRoot, skipping leading empty elements.
func MergePath(args ...string) string {
	for i, e := range args {
		if e != "" {
			return filepath.Join(AppRoot, filepath.Clean(strings.Join(args[i:], string(filepath.Separator))))
		}
	}
	return AppRoot
}

func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func MakePath(path string) error {
	return os.MkdirAll(path, os.ModePerm)
}
