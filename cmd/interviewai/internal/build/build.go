// Package build holds version information injected with -ldflags:
//
//	go build -ldflags "-X github.com/interviewai/backend/cmd/interviewai/internal/build.Version=v0.3.0 \
//	  -X github.com/interviewai/backend/cmd/interviewai/internal/build.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/interviewai/backend/cmd/interviewai/internal/build.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package build

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the version report printed by "interviewai version".
type Info struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	Go      string `json:"go" yaml:"go"`
	OS      string `json:"os" yaml:"os"`
	Arch    string `json:"arch" yaml:"arch"`
}

func Current() Info {
	return Info{
		Version: Version,
		Commit:  Commit,
		Date:    Date,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
}

// Text is the one-line form.
func (i Info) Text() string {
	return fmt.Sprintf("interviewai %s (%s) built %s %s/%s", i.Version, i.Commit, i.Date, i.OS, i.Arch)
}

// String returns the one-line version of the running binary.
func String() string {
	return Current().Text()
}
