// Package services contains the store-backed mutation and read logic. Each
// multi-row side effect (auto payment stubs, cascading deletes, replace-all
// link swaps) runs as one gorm transaction so a crash mid-cascade cannot
// leave orphaned link rows behind.
package services

import (
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "services").Logger()
