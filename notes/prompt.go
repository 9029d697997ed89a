package notes

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// classNamePlaceholder is replaced with the class name in prompt files.
const classNamePlaceholder = "{class_name}"

// LoadPrompt reads dir/file and fills in the class name.
func LoadPrompt(dir, file, className string) (string, error) {
	path := filepath.Join(dir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errors.Errorf("prompt file not found: %s", path)
		}
		return "", errors.Wrapf(err, "read prompt %s", path)
	}
	return strings.ReplaceAll(string(data), classNamePlaceholder, className), nil
}
