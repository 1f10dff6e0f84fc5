package driver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/hub/meta"
)

var testManifest = Manifest{
	Name: "test",
	Options: map[string]Option{
		"root":    {Type: String},
		"retries": {Type: Integer, Default: 3},
		"ratio":   {Type: Float, Default: 0.5},
		"verbose": {Type: Boolean, Default: false},
		"mode":    {Type: Enum, Values: []interface{}{"fast", "safe"}, Default: "safe"},
	},
}

func TestValidate(t *testing.T) {
	got, err := testManifest.Validate(map[string]interface{}{
		"root":    "/tmp",
		"retries": json.Number("7"),
		"ratio":   1,
		"mode":    "fast",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := Options{
		"root":          "/tmp",
		"retries":       int64(7),
		"ratio":         float64(1),
		"verbose":       false,
		"mode":          "fast",
		ChunkSizeOption: int64(DefaultChunkSize),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		opts   map[string]interface{}
		option string
	}{
		{name: "missing", opts: map[string]interface{}{}, option: "root"},
		{name: "unknown", opts: map[string]interface{}{"root": "x", "colour": "red"}, option: "colour"},
		{name: "wrong_type", opts: map[string]interface{}{"root": 17}, option: "root"},
		{name: "fractional_int", opts: map[string]interface{}{"root": "x", "retries": 2.5}, option: "retries"},
		{name: "bad_enum", opts: map[string]interface{}{"root": "x", "mode": "reckless"}, option: "mode"},
		{name: "bool", opts: map[string]interface{}{"root": "x", "verbose": "yes"}, option: "verbose"},
		{name: "chunk_size", opts: map[string]interface{}{"root": "x", "chunk_size": 0}, option: ChunkSizeOption},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := testManifest.Validate(c.opts)
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("got %v, want a *ConfigError", err)
			}
			if cerr.Option != c.option {
				t.Errorf("error names option %s, want %s", cerr.Option, c.option)
			}
		})
	}
}

func TestChunkSizeOverride(t *testing.T) {
	got, err := testManifest.Validate(map[string]interface{}{"root": "x", "chunk_size": 20})
	if err != nil {
		t.Fatal(err)
	}
	if n := got.Int(ChunkSizeOption); n != 20 {
		t.Errorf("got chunk size %d, want 20", n)
	}
}

type readOnly struct{}

func (readOnly) GetFile(ctx context.Context, f *meta.File) ([]byte, error) { return nil, nil }

func TestResolve(t *testing.T) {
	c := Resolve(readOnly{})
	if !c.CanProvide() || c.CanReceive() {
		t.Errorf("got provide=%v receive=%v, want true, false", c.CanProvide(), c.CanReceive())
	}
	if c.FileReader == nil || c.ChunkReader != nil || c.Mover != nil {
		t.Errorf("wrong capabilities: %+v", c)
	}
}
