//go:build linux || darwin

package scanner

import (
	"golang.org/x/sys/unix"
)

// deviceOf stats path directly (rather than trusting the dynamic type of
// a previously obtained os.FileInfo.Sys(), which is not guaranteed to be
// *unix.Stat_t) and returns the device number backing it, used by
// Policy.OneFileSystem to detect a mount-point crossing. This is the one
// concrete home golang.org/x/sys is given in this module (see
// SPEC_FULL.md §4.4 and DESIGN.md) after the teacher's own uses of it
// (Windows version probing) were dropped as out of domain.
func deviceOf(path string) (uint64, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, false
	}
	return uint64(st.Dev), true
}
