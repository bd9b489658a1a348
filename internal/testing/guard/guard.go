// Package guard flips binaries into test mode when imported from tests.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PACKQUOTE_TEST_MODE") == "" {
			_ = os.Setenv("PACKQUOTE_TEST_MODE", "1")
		}
	})
}
