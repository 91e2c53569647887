// Package constants defines application-wide constants and version information.
package constants

import "runtime"

// Version holds the application version information
const Version = "1.2-" + runtime.GOOS + "/" + runtime.GOARCH

const (
	// AppName is used for the archive schema and log fields
	AppName = "decoplan"

	// DefaultArchivePath is where runs are kept when -archive is given without a path
	DefaultArchivePath = "decoplan.db"
)
