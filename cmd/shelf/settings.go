package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/jpl-au/shelf"
	"github.com/rs/zerolog"
)

// settings is the optional startup file. Only datapath matters for most
// installs; the other keys tune the store.
type settings struct {
	DataPath string `toml:"datapath"`
	History  bool   `toml:"history"`
	Workers  int    `toml:"workers"`
	Hash     string `toml:"hash"`
	Sync     bool   `toml:"sync"`
}

func defaultSettings() settings {
	return settings{DataPath: defaultDataPath()}
}

func defaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "Antiquar"
	}
	return filepath.Join(home, "Antiquar")
}

// loadSettings reads the config file at path. It never fails: a missing
// argument, a missing or unreadable file, or a file that does not parse
// all fall back to the defaults with a diagnostic on log.
func loadSettings(path string, log zerolog.Logger) settings {
	def := defaultSettings()
	if path == "" {
		log.Info().Str("datapath", def.DataPath).Msg("no config file provided, using defaults")
		return def
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Str("datapath", def.DataPath).Msg("cannot read config file, using defaults")
		return def
	}

	var st settings
	md, err := toml.Decode(string(data), &st)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Str("datapath", def.DataPath).Msg("cannot parse config file, using defaults")
		return def
	}
	for _, k := range md.Undecoded() {
		log.Warn().Str("path", path).Str("key", k.String()).Msg("unknown config key ignored")
	}
	if st.DataPath == "" {
		log.Warn().Str("path", path).Str("datapath", def.DataPath).Msg("config file has no datapath, using default")
		st.DataPath = def.DataPath
	}
	return st
}

func (st settings) hashAlgorithm() (int, error) {
	switch st.Hash {
	case "", "xxh3":
		return shelf.AlgXXHash3, nil
	case "fnv1a":
		return shelf.AlgFNV1a, nil
	case "blake2b":
		return shelf.AlgBlake2b, nil
	default:
		return 0, fmt.Errorf("unknown hash %q", st.Hash)
	}
}

func (st settings) storeConfig(log *zerolog.Logger) shelf.Config {
	alg, err := st.hashAlgorithm()
	if err != nil {
		log.Warn().Err(err).Msg("using default hash")
		alg = shelf.AlgXXHash3
	}
	return shelf.Config{
		HashAlgorithm: alg,
		Workers:       st.Workers,
		KeepHistory:   st.History,
		SyncWrites:    st.Sync,
		Logger:        log,
	}
}
