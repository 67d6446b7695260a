// Package backends registers every storage backend with storage.Open.
package backends

import (
	_ "github.com/FranksOps/leadscout/internal/storage/csvbackend"
	_ "github.com/FranksOps/leadscout/internal/storage/jsonbackend"
	_ "github.com/FranksOps/leadscout/internal/storage/postgres"
	_ "github.com/FranksOps/leadscout/internal/storage/sqlite"
)
