// License: GPLv3 Copyright: 2026, Kovid Goyal, <kovid at kovidgoyal.net>

package termprobe

import (
	"fmt"
	"runtime/debug"
	"sync"
)

type VersionType struct {
	Major, Minor, Patch int
}

func (self VersionType) String() string {
	return fmt.Sprint(self.Major, ".", self.Minor, ".", self.Patch)
}

var Version = VersionType{Major: 0, Minor: 3, Patch: 0}
var VersionString = Version.String()

const AppName = "termprobe"

// VCSRevision is the commit the binary was built from, if known
var VCSRevision = sync.OnceValue(func() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, bs := range bi.Settings {
			if bs.Key == "vcs.revision" {
				return bs.Value
			}
		}
	}
	return ""
})
