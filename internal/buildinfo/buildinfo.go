// Package buildinfo exposes values stamped in at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/gophtodo/internal/buildinfo.buildVersion=v1.0.0"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Version returns the stamped version or "N/A".
func Version() string {
	return orNA(buildVersion)
}

// PrintBuildData writes the version banner shown when the client starts.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", orNA(buildVersion))
	fmt.Fprintf(w, "Build date: %s\n", orNA(buildDate))
	fmt.Fprintf(w, "Build commit: %s\n", orNA(buildCommit))
}
