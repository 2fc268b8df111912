package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "kite.png", want: "kite.png"},
		{key: " ./out/kite ", want: "out/kite"},
		{key: "/abs/kite", want: "abs/kite"},
		{key: `win\dir\kite`, want: "win/dir/kite"},
		{key: "a/../b", want: "b"},
		{key: "../escape", wantErr: true},
		{key: "..", wantErr: true},
		{key: "", wantErr: true},
		{key: "/", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			got, err := sanitizeKey(tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("sanitizeKey(%q) = %q, want error", tc.key, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeKey(%q) returned error: %v", tc.key, err)
			}
			if got != tc.want {
				t.Fatalf("sanitizeKey(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestFileStoreSave(t *testing.T) {
	root := filepath.Join(t.TempDir(), "images")
	store, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	got, err := store.Save(context.Background(), "nested/kite", []byte{1, 2}, ".png")
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if want := filepath.Join(root, "nested", "kite.png"); got != want {
		t.Fatalf("Save path = %q, want %q", got, want)
	}
	if data, err := os.ReadFile(got); err != nil || len(data) != 2 {
		t.Fatalf("unexpected file contents: %v %v", data, err)
	}

	got, err = store.Save(context.Background(), "keep.jpeg", []byte{1}, ".png")
	if err != nil || filepath.Base(got) != "keep.jpeg" {
		t.Fatalf("existing extension should be kept, got %q (%v)", got, err)
	}

	if _, err := store.Save(context.Background(), "empty", nil, ".png"); err == nil {
		t.Fatal("expected error for empty data")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, "late", []byte{1}, ".png"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
