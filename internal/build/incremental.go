package build

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sort"
)

// FileState represents source file metadata used for change detection.
type FileState struct {
	Path   string
	Size   int64
	SHA256 string
}

// Snapshot holds the state of a set of source files by path.
type Snapshot map[string]FileState

// HashFile computes SHA-256 for a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SnapshotFiles records the state of paths. Missing files are omitted.
func SnapshotFiles(paths []string) (Snapshot, error) {
	out := make(Snapshot, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sum, err := HashFile(p)
		if err != nil {
			return nil, err
		}
		out[p] = FileState{Path: p, Size: info.Size(), SHA256: sum}
	}
	return out, nil
}

// Diff compares two snapshots by content and returns the sorted paths that
// were added or modified, and those that were removed. Touching a file
// without changing its bytes does not mark it changed.
func Diff(prev, curr Snapshot) (changed, removed []string) {
	for p, st := range curr {
		old, ok := prev[p]
		if !ok || old.Size != st.Size || old.SHA256 != st.SHA256 {
			changed = append(changed, p)
		}
	}
	for p := range prev {
		if _, ok := curr[p]; !ok {
			removed = append(removed, p)
		}
	}
	sort.Strings(changed)
	sort.Strings(removed)
	return changed, removed
}
