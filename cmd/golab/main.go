// The golab command runs demonstration sweeps and inspects recorded runs.
// Defaults are taken from a .env file when one is present (GOLAB_DB,
// GOLAB_MONITOR_PORT).
package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; flags and process env still apply.
	_ = godotenv.Load()

	Execute()
}
