package loader

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"odrtab/internal/odrtable"
)

func buildTable(t *testing.T, name string, hash uint32) []byte {
	t.Helper()
	b := odrtable.NewBuilder()
	b.Add(name, name+".cpp", 1, hash)
	data, err := b.Build("test")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return data
}

func TestLoadKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 16 {
		path := filepath.Join(dir, "in"+strconv.Itoa(i)+".odrtab")
		if err := os.WriteFile(path, buildTable(t, "sym"+strconv.Itoa(i), uint32(i)), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		paths = append(paths, path)
	}

	inputs, err := Load(context.Background(), paths, 4)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(inputs) != len(paths) {
		t.Fatalf("inputs = %d, want %d", len(inputs), len(paths))
	}
	for i, in := range inputs {
		if in.Source != paths[i] {
			t.Fatalf("inputs[%d].Source = %v, want %s", i, in.Source, paths[i])
		}
		tables, err := odrtable.ReadTables(in.Data, nil)
		if err != nil {
			t.Fatalf("ReadTables(%s): %v", paths[i], err)
		}
		if got := tables[0].Symbols[0].Name; got != "sym"+strconv.Itoa(i) {
			t.Fatalf("inputs[%d] holds %q", i, got)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), []string{filepath.Join(t.TempDir(), "nope.o")}, 0)
	if err == nil {
		t.Fatal("missing file must fail")
	}
}

func TestLoadEmpty(t *testing.T) {
	inputs, err := Load(context.Background(), nil, 0)
	if err != nil || len(inputs) != 0 {
		t.Fatalf("Load(nil) = %v, %v", inputs, err)
	}
}

func TestReadFileRejectsBrokenELF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.o")
	if err := os.WriteFile(path, []byte("\x7fELF\x02\x01"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadFile(path); err == nil {
		t.Fatal("truncated ELF header must fail")
	}
}

func TestReadFileELFWithoutSection(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("test binary is not ELF")
	}
	exe, err := os.Executable()
	if err != nil {
		t.Skipf("executable: %v", err)
	}
	data, err := ReadFile(exe)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", exe, err)
	}
	if data != nil {
		t.Fatalf("object without %s yields %d bytes", SectionName, len(data))
	}
}
