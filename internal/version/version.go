// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package version

import "fmt"

var (
	// Populated at build time
	Version   = "dev" // Default value for development builds
	Commit    = "none"
	BuildDate = "unknown"
)

// UserAgent is the user agent sent on every request to the agents API.
func UserAgent() string {
	return fmt.Sprintf("gnoagent/%s", Version)
}
