package fakeftp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrelbio/boxsync/internal/ports"
)

func TestList_SortedTaggedEntries(t *testing.T) {
	server := New()
	server.WriteFile("/data/b.csv", []byte("b"))
	server.WriteFile("/data/a.csv", []byte("a"))
	server.MkdirAll("/data/sub")
	server.AddUnsupported("/data/link")

	entries, err := server.List("/data")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []ports.RemoteEntry{
		{Name: "a.csv", Kind: ports.KindFile},
		{Name: "b.csv", Kind: ports.KindFile},
		{Name: "link", Kind: ports.KindUnsupported},
		{Name: "sub", Kind: ports.KindDir},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %v, want %v", entries, want)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d: got %v, want %v", i, entries[i], want[i])
		}
	}
}

func TestList_MissingDirectory(t *testing.T) {
	if _, err := New().List("/nope"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestStat(t *testing.T) {
	server := New()
	server.WriteFile("/data/a.csv", []byte("a"))

	tests := []struct {
		path string
		want ports.EntryKind
	}{
		{path: "/data/a.csv", want: ports.KindFile},
		{path: "/data", want: ports.KindDir},
		{path: "/data/missing", want: ports.KindMissing},
	}
	for _, tt := range tests {
		got, err := server.Stat(tt.path)
		if err != nil {
			t.Fatalf("stat %s: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("stat %s: got %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRetrieveAndStore(t *testing.T) {
	server := New()
	server.WriteFile("/data/a.csv", []byte("payload"))
	local := filepath.Join(t.TempDir(), "a.csv")

	if err := server.Retrieve("/data/a.csv", local); err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	data, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("got %q", data)
	}

	if err := server.Store(local, "/data/copy.csv"); err != nil {
		t.Fatalf("store: %v", err)
	}
	if got := server.Data("/data/copy.csv"); string(got) != "payload" {
		t.Errorf("stored content: got %q", got)
	}
}

func TestStore_MissingRemoteParent(t *testing.T) {
	server := New()
	local := filepath.Join(t.TempDir(), "a.csv")
	if err := os.WriteFile(local, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := server.Store(local, "/nope/a.csv"); err == nil {
		t.Fatal("expected an error for a missing parent directory")
	}
}

func TestEnsureDir_SingleLevelSemantics(t *testing.T) {
	server := New()

	if err := server.EnsureDir("/top"); err != nil {
		t.Fatalf("first level: %v", err)
	}
	if err := server.EnsureDir("/top"); err != nil {
		t.Fatalf("idempotent repeat: %v", err)
	}
	if err := server.EnsureDir("/top/sub"); err != nil {
		t.Fatalf("second level: %v", err)
	}
	if err := server.EnsureDir("/a/b"); err == nil {
		t.Fatal("expected an error when the parent is missing")
	}
}
