package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/bobg/chunksync"
	"github.com/bobg/chunksync/store"
	"github.com/bobg/chunksync/store/file"
	_ "github.com/bobg/chunksync/store/logging"
	_ "github.com/bobg/chunksync/store/lru"
	_ "github.com/bobg/chunksync/store/mem"
)

type config struct {
	Source      map[string]interface{} `json:"source"`
	Destination map[string]interface{} `json:"destination"`
	Workers     json.Number            `json:"workers"`
	Journal     string                 `json:"journal"`
}

func loadConfig(filename string) (*config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %s", filename)
	}
	defer f.Close()

	var conf config
	dec := json.NewDecoder(f)
	dec.UseNumber()
	err = dec.Decode(&conf)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding config file %s", filename)
	}
	return &conf, nil
}

// openStore returns a file store rooted at dir if dir is nonempty,
// otherwise the store described by conf.
func openStore(ctx context.Context, which, dir string, conf map[string]interface{}) (chunksync.Store, error) {
	if dir != "" {
		return file.New(dir), nil
	}
	if conf == nil {
		return nil, fmt.Errorf("no %s store: supply a directory flag or a config file", which)
	}
	s, err := store.FromConfig(ctx, conf)
	return s, errors.Wrapf(err, "creating %s store", which)
}
