package output

import "os"

// mkdirAll is swapped in tests to count directory creation calls.
var mkdirAll = func(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
