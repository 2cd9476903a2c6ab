package version

import (
	"fmt"
	"io"
	"runtime"
)

// Set at build time with -ldflags "-X".
var (
	BuildTS   = "None"
	GitHash   = "None"
	GitBranch = "None"
	Version   = "None"
)

func known(s string) bool {
	return s != "" && s != "None"
}

// GetVersion is Version suffixed with the short commit when one was stamped.
func GetVersion() string {
	if !known(GitHash) {
		return Version
	}
	h := GitHash
	if len(h) > 7 {
		h = h[:7]
	}

	return fmt.Sprintf("%s-%s", Version, h)
}

// Printer writes the build stamp of the extractor binary.
func Printer(w io.Writer) {
	fmt.Fprintln(w, "tripadvparser     ", GetVersion())
	fmt.Fprintln(w, "Git Branch:       ", GitBranch)
	fmt.Fprintln(w, "Git Commit:       ", GitHash)
	fmt.Fprintln(w, "Build Time (UTC): ", BuildTS)
	fmt.Fprintln(w, "Go:               ", runtime.Version(), runtime.GOOS+"/"+runtime.GOARCH)
}
