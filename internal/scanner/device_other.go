//go:build !linux && !darwin

package scanner

// deviceOf has no portable implementation outside unix-like platforms;
// Policy.OneFileSystem becomes a no-op there (every directory reports as
// "same device", so scanning never stops early for this reason alone).
func deviceOf(path string) (uint64, bool) {
	return 0, false
}
