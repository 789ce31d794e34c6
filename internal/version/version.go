package version

import (
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: 4f2a91c
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2026-08-31T10:00:00Z
	GoVersion = runtime.Version()
)
