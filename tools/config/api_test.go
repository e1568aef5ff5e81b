// License: GPLv3 Copyright: 2023, Kovid Goyal, <kovid at kovidgoyal.net>

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var _ = fmt.Print

func TestConfigParsing(t *testing.T) {
	tdir := t.TempDir()
	conf_file := filepath.Join(tdir, "a.conf")
	os.Mkdir(filepath.Join(tdir, "sub"), 0o700)
	os.WriteFile(conf_file, []byte(`
# ignore me
a one
include sub/b.conf
1bad
include non-existent
globinclude sub/c?.conf
d multi
\ line
\ more
envinclude ENVINCLUDE
globinclude sub/[
`), 0o600)
	os.WriteFile(filepath.Join(tdir, "sub/b.conf"), []byte("incb cool\r\ninclude ../a.conf"), 0o600)
	os.WriteFile(filepath.Join(tdir, "sub/c1.conf"), []byte("inc1 cool"), 0o600)
	os.WriteFile(filepath.Join(tdir, "sub/c2.conf"), []byte("inc2 cool\nerror boom"), 0o600)
	os.WriteFile(filepath.Join(tdir, "sub/c.conf"), []byte("inc notcool"), 0o600)

	var parsed_lines, comments []string
	pl := func(key, val string) error {
		if key == "error" {
			return fmt.Errorf("%s", val)
		}
		parsed_lines = append(parsed_lines, key+" "+val)
		return nil
	}
	var sources []string

	p := ConfigParser{
		LineHandler:     pl,
		CommentsHandler: func(line string) error { comments = append(comments, line); return nil },
		SourceHandler:   func(text, path string) { sources = append(sources, path) },
		override_env:    []string{"ENVINCLUDE=env cool\ninclude sub/c.conf", "OTHER=x y"},
	}
	err := p.ParseFiles(conf_file)
	if err != nil {
		t.Fatal(err)
	}
	diff := cmp.Diff([]string{"a one", "incb cool", "inc1 cool", "inc2 cool", "d multi line more", "env cool", "inc notcool"}, parsed_lines)
	if diff != "" {
		t.Fatalf("Unexpected parsed config values:\n%s", diff)
	}
	if diff = cmp.Diff([]string{"# ignore me"}, comments); diff != "" {
		t.Fatalf("Unexpected comments:\n%s", diff)
	}
	if diff = cmp.Diff([]string{conf_file}, sources); diff != "" {
		t.Fatalf("Unexpected sources:\n%s", diff)
	}
	var bad []string
	for _, bl := range p.BadLines() {
		bad = append(bad, fmt.Sprintf("%s:%d:%s", filepath.Base(bl.Src_file), bl.Line_number, bl.Line))
	}
	if diff = cmp.Diff([]string{"a.conf:5:1bad", "c2.conf:2:error boom", "a.conf:12:globinclude sub/["}, bad); diff != "" {
		t.Fatalf("Unexpected bad lines:\n%s", diff)
	}

	parsed_lines = nil
	if err = p.ParseOverrides("x=1", "y 2=3"); err != nil {
		t.Fatal(err)
	}
	if diff = cmp.Diff([]string{"x 1", "y 2=3"}, parsed_lines); diff != "" {
		t.Fatalf("Unexpected parsed overrides:\n%s", diff)
	}

	if err = p.ParseFiles(filepath.Join(tdir, "missing.conf")); !os.IsNotExist(err) {
		t.Fatalf("Missing config file did not cause an error: %v", err)
	}
}

func TestLoadConfigIgnoresMissingFiles(t *testing.T) {
	tdir := t.TempDir()
	conf_file := filepath.Join(tdir, "x.conf")
	os.WriteFile(conf_file, []byte("a 1"), 0o600)
	var parsed_lines []string
	p := ConfigParser{LineHandler: func(key, val string) error {
		parsed_lines = append(parsed_lines, key+"="+val)
		return nil
	}}
	if err := p.LoadConfig([]string{filepath.Join(tdir, "nope.conf"), conf_file}, []string{"b=2"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a=1", "b=2"}, parsed_lines); diff != "" {
		t.Fatalf("Unexpected parsed config values:\n%s", diff)
	}
}
