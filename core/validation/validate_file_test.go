package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckFileExists(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	testDir := filepath.Join(tmpDir, "testdir")
	if err := os.Mkdir(testDir, 0755); err != nil {
		t.Fatalf("Failed to create test dir: %v", err)
	}

	tests := []struct {
		name         string
		path         string
		wantErr      bool
		wantNotExist bool
	}{
		{name: "existing file", path: testFile},
		{name: "non-existent file", path: filepath.Join(tmpDir, "nonexistent.txt"), wantErr: true, wantNotExist: true},
		{name: "empty path", path: "", wantErr: true},
		{name: "directory instead of file", path: testDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFileExists(tt.path)
			if !tt.wantErr {
				if err != nil {
					t.Errorf("CheckFileExists(%q) unexpected error: %v", tt.path, err)
				}
				return
			}
			var fe *FileExistsError
			if !errors.As(err, &fe) {
				t.Fatalf("CheckFileExists(%q) expected *FileExistsError, got %T", tt.path, err)
			}
			if fe.Path != tt.path {
				t.Errorf("Path = %q, want %q", fe.Path, tt.path)
			}
			if isNotExist(err) != tt.wantNotExist {
				t.Errorf("isNotExist() = %v, want %v", isNotExist(err), tt.wantNotExist)
			}
		})
	}
}
