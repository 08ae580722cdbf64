package main

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/dolovcak/htpublish/ignore"
)

// config is the parsed config.json.
//
// The remote object is passed through to the backend factory as-is,
// so backend-specific keys (hostname, username, password, timeout, tls,
// port, keyFile) live there, next to the mandatory "type".
type config struct {
	remoteType string
	remoteConf map[string]interface{}
	srcDir     string
	destDir    string
	ignored    ignore.Patterns
	snapshot   string
}

func loadConfig(filename string) (*config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %s", filename)
	}
	defer f.Close()

	var raw map[string]interface{}
	dec := json.NewDecoder(f)
	dec.UseNumber()
	err = dec.Decode(&raw)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed JSON in %s", filename)
	}

	var conf config

	remoteConf, ok := raw["remote"].(map[string]interface{})
	if !ok {
		return nil, errors.Errorf(`config file %s missing "remote" object`, filename)
	}
	conf.remoteConf = remoteConf
	conf.remoteType, ok = remoteConf["type"].(string)
	if !ok {
		return nil, errors.Errorf(`config file %s missing remote "type" parameter`, filename)
	}

	conf.srcDir, ok = raw["srcDir"].(string)
	if !ok {
		return nil, errors.Errorf(`config file %s missing "srcDir" parameter`, filename)
	}
	if !filepath.IsAbs(conf.srcDir) {
		return nil, errors.New(`"srcDir" has to be an absolute path`)
	}
	info, err := os.Stat(conf.srcDir)
	if err != nil {
		return nil, errors.Errorf("source dir '%s' not found", conf.srcDir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("source dir '%s' is not a directory", conf.srcDir)
	}

	conf.destDir, ok = raw["destDir"].(string)
	if !ok {
		return nil, errors.Errorf(`config file %s missing "destDir" parameter`, filename)
	}
	if !path.IsAbs(conf.destDir) && !filepath.IsAbs(conf.destDir) {
		return nil, errors.New(`"destDir" has to be an absolute path`)
	}

	rawIgnored, ok := raw["ignored"].([]interface{})
	if !ok {
		return nil, errors.Errorf(`config file %s missing "ignored" parameter`, filename)
	}
	for _, p := range rawIgnored {
		pattern, ok := p.(string)
		if !ok {
			return nil, errors.Errorf(`non-string entry in "ignored": %v`, p)
		}
		conf.ignored = append(conf.ignored, pattern)
	}

	if s, ok := raw["snapshot"].(string); ok {
		conf.snapshot = s
	}

	return &conf, nil
}
