package transform

import (
	"errors"
	"testing"
)

func TestExistingFileID(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{name: "plain", path: "file1", want: "e-file1"},
		{name: "nested", path: "dir1/dir2", want: "e-dir1/dir2"},
		{name: "dot is root", path: ".", want: "e-."},
		{name: "empty is root", path: "", want: "e-."},
		{name: "normalizes to root", path: "foo/..", want: "e-."},
		{name: "redundant segments", path: "./foo//bar", want: "e-foo/bar"},
		{name: "dotdot", path: "..", wantErr: ErrOutsideTree},
		{name: "climbs past root", path: "foo/../..", wantErr: ErrOutsideTree},
		{name: "dotdot prefix", path: "../foo", wantErr: ErrOutsideTree},
		{name: "absolute", path: "/etc/passwd", wantErr: ErrOutsideTree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExistingFileID(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ExistingFileID(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExistingFileID(%q) unexpected error: %v", tt.path, err)
			}
			if got := id.String(); got != tt.want {
				t.Errorf("ExistingFileID(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestExistingFileIDDeterministic(t *testing.T) {
	a, err := ExistingFileID("dir1/file1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ExistingFileID("./dir1//file1")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("equivalent paths produced distinct ids: %v vs %v", a, b)
	}
}

func TestParseFileID(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    string
		wantErr error
	}{
		{name: "existing", encoded: "e-hello", want: "e-hello"},
		{name: "existing nested", encoded: "e-a/b/c", want: "e-a/b/c"},
		{name: "root", encoded: "e-.", want: "e-."},
		{name: "new", encoded: "n-0-foo", want: "n-0-foo"},
		{name: "new with dash in name", encoded: "n-12-a-b", want: "n-12-a-b"},
		{name: "missing prefix", encoded: "ehello", wantErr: ErrInvalidID},
		{name: "bare dash", encoded: "-hello", wantErr: ErrInvalidID},
		{name: "unknown prefix", encoded: "x-foo", wantErr: ErrInvalidID},
		{name: "new without counter", encoded: "n-foo", wantErr: ErrInvalidID},
		{name: "empty", encoded: "", wantErr: ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseFileID(tt.encoded)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseFileID(%q) error = %v, want %v", tt.encoded, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFileID(%q) unexpected error: %v", tt.encoded, err)
			}
			if got := id.String(); got != tt.want {
				t.Errorf("ParseFileID(%q).String() = %s, want %s", tt.encoded, got, tt.want)
			}
		})
	}
}

func TestIsRoot(t *testing.T) {
	if !RootID.IsRoot() {
		t.Error("RootID.IsRoot() = false")
	}
	id, err := ExistingFileID("foo/..")
	if err != nil {
		t.Fatal(err)
	}
	if !id.IsRoot() {
		t.Error("normalized root path did not produce the root id")
	}
	other, err := ExistingFileID("foo")
	if err != nil {
		t.Fatal(err)
	}
	if other.IsRoot() {
		t.Error("non-root id reported IsRoot")
	}
}
