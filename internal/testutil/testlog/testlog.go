package testlog

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/himdisplay/internal/logging"
)

// Start installs the test logging profile and logs the test name.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Info().Str("test", t.Name()).Msg("start")
}
