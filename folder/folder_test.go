package folder

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/hub/kv/mem"
	"github.com/bobg/hub/meta"
)

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"*.mp3", "lol.mp3", true},
		{"*.mp3", "foo/bar/lol.mp3", true},
		{"*.mp3", "lol.mp4", false},
		{"dir/*", "dir", false},
		{"dir/*", "dir/a/b", true},
		{"t?t?", "toto", true},
		{"t?t?", "tototo", false},
		{"image/*", "image/png", true},
		{"*/ogg", "audio/ogg", true},
		{"application/vnd.oasis.opendocument.*", "application/vnd.oasis.opendocument.text", true},
		{"[", "[", false},
	}
	for _, c := range cases {
		if got := Match(c.pattern, c.name); got != c.want {
			t.Errorf("Match(%q, %q) = %v, want %v", c.pattern, c.name, got, c.want)
		}
	}
}

func TestAssertOptions(t *testing.T) {
	file := &meta.File{Filename: "music/song.mp3", Size: 1023, Mimetype: "audio/mpeg"}

	cases := []struct {
		name   string
		opts   *Options
		perm   Perm
		want   bool
		reason Reason
	}{
		{name: "nil", want: true},
		{name: "empty", opts: &Options{}, perm: Receive, want: true},
		{name: "mode_rw", opts: &Options{Mode: "rw"}, perm: Receive, want: true},
		{name: "mode_r_receive", opts: &Options{Mode: "r"}, perm: Receive, reason: IgnoredMode},
		{name: "mode_w_provide", opts: &Options{Mode: "w"}, perm: Provide, reason: IgnoredMode},
		{name: "mode_any", opts: &Options{Mode: "r"}, perm: AnyPerm, want: true},
		{name: "min_excl", opts: &Options{FileSize: &SizeRange{Min: 1024}}, reason: IgnoredSize},
		{name: "min_incl", opts: &Options{FileSize: &SizeRange{Min: "1023"}}, want: true},
		{name: "max_incl", opts: &Options{FileSize: &SizeRange{Max: 1023}}, want: true},
		{name: "max_excl", opts: &Options{FileSize: &SizeRange{Max: "1k"}}, reason: IgnoredSize},
		{name: "max_binary", opts: &Options{FileSize: &SizeRange{Max: "1ki"}}, want: true},
		{name: "bad_size", opts: &Options{FileSize: &SizeRange{Min: "lots"}}, want: true},
		{name: "mime_ok", opts: &Options{Mimetypes: []string{"image/*", "audio/*"}}, want: true},
		{name: "mime_no", opts: &Options{Mimetypes: []string{"image/*"}}, reason: IgnoredMime},
		{name: "mime_empty", opts: &Options{Mimetypes: []string{}}, reason: IgnoredMime},
		{name: "blacklisted", opts: &Options{Blacklist: []string{"*.mp3"}}, reason: Blacklisted},
		{name: "not_blacklisted", opts: &Options{Blacklist: []string{"*.ogg"}}, want: true},
		{name: "whitelisted", opts: &Options{Whitelist: []string{"music/*"}}, want: true},
		{name: "not_whitelisted", opts: &Options{Whitelist: []string{"video/*"}}, reason: NotWhitelisted},
		{name: "black_before_white", opts: &Options{Blacklist: []string{"*"}, Whitelist: []string{"*"}}, reason: Blacklisted},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, reason := AssertOptions(c.opts, file, c.perm)
			if got != c.want || reason != c.reason {
				t.Errorf("got %v (%q), want %v (%q)", got, reason, c.want, c.reason)
			}
		})
	}
}

func TestTargets(t *testing.T) {
	fo := &Folder{
		Name:    "default",
		Options: &Options{FileSize: &SizeRange{Min: 5, Max: 10}},
		Services: map[string]*ServiceFolder{
			"A": {Path: "a"},
			"B": {Path: "b"},
			"C": {Path: "c", Options: &Options{Mode: "rw"}},
			"R": {Path: "r", Options: &Options{Mode: "r"}},
		},
	}

	cases := []struct {
		size   int64
		source string
		want   []string
	}{
		{size: 3, source: "A"},
		{size: 7, source: "A", want: []string{"B", "C"}},
		{size: 11, source: "A"},
		{size: 5, source: "B", want: []string{"A", "C"}},
		{size: 10, source: "R", want: []string{"A", "B", "C"}},
		{size: 7, source: "outsider", want: []string{"A", "B", "C"}},
	}
	for _, c := range cases {
		f := meta.New("default", "f.bin", c.size)
		got, _ := fo.Targets(f, c.source)
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("size %d from %s: mismatch (-want +got):\n%s", c.size, c.source, diff)
		}
		for _, target := range got {
			if target == c.source {
				t.Errorf("source %s is among its own targets", c.source)
			}
		}
	}

	// A source whose own options forbid providing the file reaches nobody.
	fo.Services["W"] = &ServiceFolder{Path: "w", Options: &Options{Mode: "w"}}
	got, reason := fo.Targets(meta.New("default", "f.bin", 7), "W")
	if len(got) != 0 || reason != IgnoredMode {
		t.Errorf("got %v (%q), want no targets (%q)", got, reason, IgnoredMode)
	}
}

func TestServiceFolderPaths(t *testing.T) {
	sf := &ServiceFolder{Path: "/data/music"}
	cases := []struct {
		p      string
		rel    string
		inside bool
	}{
		{p: "/data/music/a.mp3", rel: "a.mp3", inside: true},
		{p: "/data/music/x/y.mp3", rel: "x/y.mp3", inside: true},
		{p: "/data/music", inside: false},
		{p: "/data/musicals/a.mp3", inside: false},
		{p: "/data/music/../a.mp3", inside: false},
	}
	for _, c := range cases {
		rel, ok := sf.Relpath(c.p)
		if ok != c.inside || rel != c.rel {
			t.Errorf("Relpath(%s) = %q, %v; want %q, %v", c.p, rel, ok, c.rel, c.inside)
		}
	}
	if got := sf.Join("x/y.mp3"); got != "/data/music/x/y.mp3" {
		t.Errorf("Join gave %s", got)
	}

	folders := []*ServiceFolder{
		{Name: "all", Path: "/data"},
		{Name: "music", Path: "/data/music"},
		{Name: "other", Path: "/elsewhere"},
	}
	if got := Deepest(folders, "/data/music/a.mp3"); got == nil || got.Name != "music" {
		t.Errorf("got %+v, want music", got)
	}
	if got := Deepest(folders, "/data/b.txt"); got == nil || got.Name != "all" {
		t.Errorf("got %+v, want all", got)
	}
	if got := Deepest(folders, "/tmp/c"); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	s := mem.New()

	if err := SaveServices(ctx, s, []string{"B", "A"}); err != nil {
		t.Fatal(err)
	}
	if err := SaveFolder(ctx, s, "default", &Options{Blacklist: []string{"*.tmp"}}); err != nil {
		t.Fatal(err)
	}
	if err := SaveServiceFolder(ctx, s, "A", &ServiceFolder{Name: "default", Path: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := SaveServiceFolder(ctx, s, "B", &ServiceFolder{Name: "default", Path: "b", Options: &Options{Mode: "w"}}); err != nil {
		t.Fatal(err)
	}
	if err := SaveServiceFolder(ctx, s, "B", &ServiceFolder{Name: "private", Path: "p"}); err != nil {
		t.Fatal(err)
	}

	folders, err := Load(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if len(folders) != 2 {
		t.Fatalf("got %d folders, want 2", len(folders))
	}
	def := folders["default"]
	if def == nil || len(def.Services) != 2 {
		t.Fatalf("got %+v", def)
	}
	if diff := cmp.Diff([]string{"*.tmp"}, def.Options.Blacklist); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if folders["private"].Options != nil {
		t.Error("folder with no stored options got some")
	}

	got, _ := def.Targets(meta.New("default", "x.txt", 1), "A")
	if diff := cmp.Diff([]string{"B"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	got, _ = def.Targets(meta.New("default", "x.tmp", 1), "A")
	if len(got) != 0 {
		t.Errorf("blacklisted file has targets %v", got)
	}
}
