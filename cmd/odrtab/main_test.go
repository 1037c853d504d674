package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cli struct {
	t      *testing.T
	dir    string
	config string
}

func newCLI(t *testing.T, config string) *cli {
	t.Helper()
	dir := t.TempDir()
	c := &cli{t: t, dir: dir, config: filepath.Join(dir, "odrtab.toml")}
	c.write("odrtab.toml", config)
	return c
}

func (c *cli) write(name, data string) string {
	c.t.Helper()
	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		c.t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func (c *cli) path(name string) string { return filepath.Join(c.dir, name) }

// run executes odrtab with the test config and colors off.
func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--color", "off", "--config", c.config}, args...)
	err := run(context.Background(), full, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, errOut, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("odrtab %s: %v\nstderr:\n%s", strings.Join(args, " "), err, errOut)
	}
	return out
}

const listingA = `
[[symbol]]
name = "foo"
file = "a.cpp"
line = 10
hash = 1

[[symbol]]
name = "shared"
file = "s.h"
line = 3
hash = 5
`

const listingB = `
[[symbol]]
name = "foo"
file = "b.cpp"
line = 20
hash = 2

[[symbol]]
name = "shared"
file = "s.h"
line = 3
hash = 5
`

func TestBuildAndCheck(t *testing.T) {
	c := newCLI(t, "")
	c.write("a.toml", listingA)
	c.write("b.toml", listingB)
	c.mustRun("build", c.path("a.toml"))
	c.mustRun("build", c.path("b.toml"), "-o", c.path("b.odrtab"))

	out, errOut, err := c.run("check", c.path("a.odrtab"), c.path("b.odrtab"))
	if !errors.Is(err, errViolations) {
		t.Fatalf("check error = %v, want errViolations", err)
	}
	if !strings.Contains(out, "odr violation: foo") {
		t.Fatalf("stdout lacks violation:\n%s", out)
	}
	if !strings.Contains(out, "a.cpp:10") || !strings.Contains(out, "b.cpp:20") {
		t.Fatalf("stdout lacks definitions:\n%s", out)
	}
	if strings.Contains(out, "shared") {
		t.Fatalf("identical definitions reported:\n%s", out)
	}
	if !strings.Contains(errOut, "1 ODR violation (2 inputs, 2 tables, 4 symbols)") {
		t.Fatalf("unexpected summary:\n%s", errOut)
	}

	if _, _, err := c.run("check", "--no-fail", c.path("a.odrtab"), c.path("b.odrtab")); err != nil {
		t.Fatalf("--no-fail: %v", err)
	}
}

func TestCheckJSON(t *testing.T) {
	c := newCLI(t, "")
	c.write("a.toml", listingA)
	c.write("b.toml", `producer = "other"
[[symbol]]
name = "foo"
file = "b.cpp"
hash = 2
`)
	c.mustRun("build", c.path("a.toml"))
	c.mustRun("build", c.path("b.toml"))

	out := c.mustRun("check", "--format", "json", c.path("a.odrtab"), c.path("b.odrtab"))
	var payload checkPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if payload.Halt != "producer mismatch" || payload.HaltInput != c.path("b.odrtab") {
		t.Fatalf("halt = %q at %q", payload.Halt, payload.HaltInput)
	}
	if len(payload.Diagnostics) != 0 {
		t.Fatalf("diagnostics after a halt: %+v", payload.Diagnostics)
	}
	if payload.Stats.Inputs != 2 || payload.Stats.Tables != 1 {
		t.Fatalf("stats = %+v", payload.Stats)
	}
}

func TestBuildAppendAndCodec(t *testing.T) {
	c := newCLI(t, "[table]\ncodec = \"zstd\"\n")
	c.write("a.toml", listingA)
	c.write("b.toml", listingB)
	lib := c.path("lib.odrtab")
	c.mustRun("build", c.path("a.toml"), "-o", lib)
	c.mustRun("build", c.path("b.toml"), "-o", lib, "--append")

	out, _, err := c.run("check", lib)
	if !errors.Is(err, errViolations) {
		t.Fatalf("check error = %v, want errViolations", err)
	}
	if strings.Count(out, lib+": ") != 2 {
		t.Fatalf("both definitions come from the same input:\n%s", out)
	}

	// таблицы сжаты zstd, zlib их не прочитает
	if _, _, err := c.run("check", "--codec", "zlib", lib); err == nil || errors.Is(err, errViolations) {
		t.Fatalf("zlib over zstd tables: err = %v", err)
	}
}

func TestDump(t *testing.T) {
	c := newCLI(t, "")
	c.write("a.toml", `producer = "clang 18"
[[symbol]]
name = "ns::ω"
file = "a.cpp"
line = 1
hash = 16
`)
	c.mustRun("build", c.path("a.toml"))

	text := c.mustRun("dump", c.path("a.odrtab"))
	if !strings.Contains(text, `producer="clang 18" symbols=1`) || !strings.Contains(text, "ns::ω  a.cpp:1") {
		t.Fatalf("text dump:\n%s", text)
	}

	listing := c.mustRun("dump", "--format", "toml", c.path("a.odrtab"))
	c.write("again.toml", listing)
	c.mustRun("build", c.path("again.toml"))
	again := c.mustRun("dump", "--format", "json", c.path("again.odrtab"))
	orig := c.mustRun("dump", "--format", "json", c.path("a.odrtab"))
	if strings.ReplaceAll(again, "again.odrtab", "a.odrtab") != orig {
		t.Fatalf("toml round trip changed the table:\n%s\nvs\n%s", again, orig)
	}
}

func TestConfigFailFalse(t *testing.T) {
	c := newCLI(t, "[check]\nfail = false\nformat = \"json\"\n")
	c.write("a.toml", listingA)
	c.write("b.toml", listingB)
	c.mustRun("build", c.path("a.toml"))
	c.mustRun("build", c.path("b.toml"))

	out := c.mustRun("check", c.path("a.odrtab"), c.path("b.odrtab"))
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("config format ignored:\n%s", out)
	}
}

func TestCheckMissingInput(t *testing.T) {
	c := newCLI(t, "")
	if _, _, err := c.run("check", c.path("missing.o")); err == nil {
		t.Fatal("missing input must fail")
	}
}

func TestRingDumpedOnFailure(t *testing.T) {
	c := newCLI(t, "")
	_, errOut, err := c.run("--trace-level", "phase", "--trace-mode", "ring", "check", c.path("missing.o"))
	if err == nil {
		t.Fatal("missing input must fail")
	}
	if !strings.Contains(errOut, "trace: last events before failure:") {
		t.Fatalf("ring not dumped:\n%s", errOut)
	}
}

func TestVersionJSON(t *testing.T) {
	c := newCLI(t, "")
	out := c.mustRun("version", "--format", "json")
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "odrtab" || payload.Producer == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestBuildProducerFlagWins(t *testing.T) {
	c := newCLI(t, "[table]\nproducer = \"from config\"\n")
	c.write("a.toml", "producer = \"from listing\"\n"+listingA)
	c.mustRun("build", c.path("a.toml"), "--producer", "from flag")

	text := c.mustRun("dump", c.path("a.odrtab"))
	if !strings.Contains(text, `producer="from flag"`) {
		t.Fatalf("flag producer ignored:\n%s", text)
	}

	c.mustRun("build", c.path("a.toml"))
	text = c.mustRun("dump", c.path("a.odrtab"))
	if !strings.Contains(text, `producer="from listing"`) {
		t.Fatalf("listing producer ignored:\n%s", text)
	}
}
