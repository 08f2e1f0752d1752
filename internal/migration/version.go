package migration

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// CheckVersion accepts backups written with the same major format version.
// A nil meta (no METADATA row) is accepted; callers surface it as a warning.
func CheckVersion(meta *Metadata) error {
	if meta == nil {
		return nil
	}

	v := canonicalVersion(meta.Version)
	if !semver.IsValid(v) {
		return &Error{
			Kind: KindIncompatibleVersion,
			Op:   "import",
			Msg:  fmt.Sprintf("unrecognized format version %q", meta.Version),
		}
	}

	if semver.Major(v) != semver.Major(canonicalVersion(FormatVersion)) {
		return &Error{
			Kind: KindIncompatibleVersion,
			Op:   "import",
			Msg:  fmt.Sprintf("backup format %s cannot be read by format %s", meta.Version, FormatVersion),
		}
	}

	return nil
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
