package testutil

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Tests run with trace logging so failures carry the full instruction
// trail, but the output is swallowed unless go test runs verbose.
func init() {
	logrus.SetLevel(logrus.TraceLevel)

	for _, arg := range os.Args {
		if arg == "-test.v=true" {
			return
		}
	}
	logrus.StandardLogger().Out = io.Discard
}
