package viewer

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// SetLogger routes the package's diagnostics to l. The viewer logs nothing
// by default so it cannot corrupt a terminal UI.
func SetLogger(l zerolog.Logger) {
	logger = l
}
