package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInvalidPathsRejected(t *testing.T) {
	osfs := NewOSFileSystem(t.TempDir())

	if _, err := osfs.Open("../escape"); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("Open(../escape) error = %v, want fs.ErrInvalid", err)
	}
	if err := osfs.Mkdir("/abs", 0o755); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("Mkdir(/abs) error = %v, want fs.ErrInvalid", err)
	}
	if _, err := osfs.Stat(""); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("Stat(\"\") error = %v, want fs.ErrInvalid", err)
	}
}

func TestMkdirDotCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "fresh")
	osfs := NewOSFileSystem(root)

	if err := osfs.Mkdir(".", 0o755); err != nil {
		t.Fatalf("Mkdir(.) failed: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error("root was not created as a directory")
	}
}

func TestOpenFileRoundTrip(t *testing.T) {
	osfs := NewOSFileSystem(t.TempDir())

	w, err := osfs.OpenFile("a.txt", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "payload"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := osfs.Open("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("read back %q, want %q", data, "payload")
	}
}

func TestSymlinkTargetKeptVerbatim(t *testing.T) {
	osfs := NewOSFileSystem(t.TempDir())

	// Absolute and dangling targets must survive the round trip
	// untouched; a mirror replicates link text, not link resolution.
	if err := osfs.Symlink("/absolute/nowhere", "ln"); err != nil {
		t.Fatal(err)
	}
	target, err := osfs.Readlink("ln")
	if err != nil {
		t.Fatal(err)
	}
	if target != "/absolute/nowhere" {
		t.Errorf("Readlink = %q, want %q", target, "/absolute/nowhere")
	}
}

func TestStatFollowsAndLstatDoesNot(t *testing.T) {
	root := t.TempDir()
	osfs := NewOSFileSystem(root)
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := osfs.Symlink("a.txt", "ln"); err != nil {
		t.Fatal(err)
	}

	statInfo, err := osfs.Stat("ln")
	if err != nil {
		t.Fatal(err)
	}
	if !statInfo.Mode().IsRegular() {
		t.Error("Stat should follow the link to the regular file")
	}
	lstatInfo, err := osfs.Lstat("ln")
	if err != nil {
		t.Fatal(err)
	}
	if lstatInfo.Mode()&fs.ModeSymlink == 0 {
		t.Error("Lstat should report the link itself")
	}
}

func TestLchtimes(t *testing.T) {
	root := t.TempDir()
	osfs := NewOSFileSystem(root)
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := osfs.Symlink("a.txt", "ln"); err != nil {
		t.Fatal(err)
	}
	targetBefore, err := osfs.Stat("a.txt")
	if err != nil {
		t.Fatal(err)
	}

	ts := time.UnixMilli(1_600_000_000_000)
	if err := osfs.Lchtimes("ln", ts, ts); err != nil {
		t.Fatalf("Lchtimes failed: %v", err)
	}

	linkInfo, err := osfs.Lstat("ln")
	if err != nil {
		t.Fatal(err)
	}
	if linkInfo.ModTime().UnixMilli() != ts.UnixMilli() {
		t.Errorf("link mtime = %v, want %v", linkInfo.ModTime(), ts)
	}
	targetAfter, err := osfs.Stat("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if !targetAfter.ModTime().Equal(targetBefore.ModTime()) {
		t.Error("Lchtimes must not touch the link target")
	}
}

func TestAccess(t *testing.T) {
	root := t.TempDir()
	osfs := NewOSFileSystem(root)
	path := filepath.Join(root, "a.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := osfs.Access("a.txt", AccessRead); err != nil {
		t.Errorf("read access denied on readable file: %v", err)
	}

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	if err := os.Chmod(path, 0o200); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(path, 0o644) })
	if err := osfs.Access("a.txt", AccessRead); !errors.Is(err, fs.ErrPermission) {
		t.Errorf("Access on write-only file = %v, want fs.ErrPermission", err)
	}
}

func TestChmodChtimes(t *testing.T) {
	root := t.TempDir()
	osfs := NewOSFileSystem(root)
	path := filepath.Join(root, "a.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := osfs.Chmod("a.txt", 0o640); err != nil {
		t.Fatal(err)
	}
	ts := time.UnixMilli(1_600_000_000_000)
	if err := osfs.Chtimes("a.txt", ts, ts); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("mode = %v, want 0640", info.Mode().Perm())
	}
	if info.ModTime().UnixMilli() != ts.UnixMilli() {
		t.Errorf("mtime = %v, want %v", info.ModTime(), ts)
	}
}
