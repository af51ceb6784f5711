package store_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bobg/chunksync/store"
	"github.com/bobg/chunksync/store/file"
	_ "github.com/bobg/chunksync/store/logging"
	"github.com/bobg/chunksync/store/lru"
	_ "github.com/bobg/chunksync/store/mem"
)

func TestTypes(t *testing.T) {
	want := []string{"file", "logging", "lru", "mem"}
	if diff := cmp.Diff(want, store.Types()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownType(t *testing.T) {
	_, err := store.Create(context.Background(), "gcs", nil)
	if err == nil {
		t.Fatal("got no error for unknown store type")
	}
	if !strings.Contains(err.Error(), "[file logging lru mem]") {
		t.Errorf("error %q does not list the known types", err)
	}
}

func TestFromConfig(t *testing.T) {
	const conf = `{"type": "lru", "size": 100, "nested": {"type": "file", "root": "/tmp/chunks"}}`

	dec := json.NewDecoder(strings.NewReader(conf))
	dec.UseNumber()
	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		t.Fatal(err)
	}

	s, err := store.FromConfig(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*lru.Store); !ok {
		t.Errorf("got %T, want *lru.Store", s)
	}

	s, err = store.FromConfig(context.Background(), map[string]interface{}{"type": "file", "root": "/tmp/chunks"})
	if err != nil {
		t.Fatal(err)
	}
	if fs, ok := s.(*file.Store); !ok || fs.Root() != "/tmp/chunks" {
		t.Errorf("got %#v, want file store rooted at /tmp/chunks", s)
	}

	for _, bad := range []map[string]interface{}{
		{},
		{"type": "nosuch"},
		{"type": "file"},
		{"type": "lru", "nested": map[string]interface{}{"type": "mem"}},
		{"type": "lru", "size": "big", "nested": map[string]interface{}{"type": "mem"}},
	} {
		if _, err := store.FromConfig(context.Background(), bad); err == nil {
			t.Errorf("config %v: got no error", bad)
		}
	}
}
