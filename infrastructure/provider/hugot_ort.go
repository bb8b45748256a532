//go:build ORT

package provider

import (
	"os"
	"path/filepath"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
)

func newHugotSession() (*hugot.Session, error) {
	opts := []options.WithOption{}
	if dir := resolveORTLibDir(); dir != "" {
		opts = append(opts, options.WithOnnxLibraryPath(dir))
	}
	return hugot.NewORTSession(opts...)
}

// resolveORTLibDir locates the ONNX Runtime shared library: ORT_LIB_DIR
// first, then lib/ next to the executable, then lib/ in the working
// directory. Empty means hugot's platform default.
func resolveORTLibDir() string {
	if dir := os.Getenv("ORT_LIB_DIR"); dir != "" {
		return dir
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "lib"))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "lib"))
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}
