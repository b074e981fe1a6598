//go:build integration

package scoringintegrationtests

import (
	"log"
	"os"
	"testing"

	"github.com/Black-And-White-Club/dip-scoring/integration_tests/testutils"
)

// TestMain initializes and cleans up the global test environment.
func TestMain(m *testing.M) {
	oldAppEnv := os.Getenv("APP_ENV")
	os.Setenv("APP_ENV", "test")

	exitCode := m.Run()

	testutils.ShutdownSharedEnv()
	os.Setenv("APP_ENV", oldAppEnv)
	log.Printf("TestMain: finished with exit code: %d", exitCode)
	os.Exit(exitCode)
}
