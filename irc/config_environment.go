// Copyright (c) 2026 The ircrelay Authors
// released under the MIT license

package irc

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	configEnvPrefix    = "IRCRELAY__"
	configEnvSeparator = "__"
)

// mungeFromEnvironment applies an override of the form
// IRCRELAY__SERVER__MAX_SENDQ=64k to config: components are separated by
// double underscores, single underscores stand for hyphens, and the value
// is parsed as YAML into the addressed field.
func mungeFromEnvironment(config *Config, envPair string) (applied bool, name string, err error) {
	equalIdx := strings.IndexByte(envPair, '=')
	if equalIdx < 0 {
		return false, "", nil
	}
	name, value := envPair[:equalIdx], envPair[equalIdx+1:]
	if !strings.HasPrefix(name, configEnvPrefix) || len(name) == len(configEnvPrefix) {
		return false, "", nil
	}

	var path []string
	for _, component := range strings.Split(strings.TrimPrefix(name, configEnvPrefix), configEnvSeparator) {
		path = append(path, strings.ToLower(strings.ReplaceAll(component, "_", "-")))
	}

	field := reflect.ValueOf(config).Elem()
	for i, component := range path {
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			field = field.Elem()
		}
		if field.Kind() != reflect.Struct {
			return false, name, fmt.Errorf("%s does not name a config section", strings.Join(path[:i], "."))
		}
		next, ok := yamlField(field, component)
		if !ok {
			return false, name, fmt.Errorf("unknown config key %s", strings.Join(path[:i+1], "."))
		}
		field = next
	}

	if err = yaml.Unmarshal([]byte(value), field.Addr().Interface()); err != nil {
		return false, name, err
	}
	return true, name, nil
}

// yamlField finds the field of a struct value that yaml.v2 would decode key into.
func yamlField(structVal reflect.Value, key string) (reflect.Value, bool) {
	structType := structVal.Type()
	for i := 0; i < structType.NumField(); i++ {
		fieldType := structType.Field(i)
		if fieldType.PkgPath != "" {
			continue
		}
		tagName := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if tagName == "-" {
			continue
		}
		if tagName == "" {
			tagName = strings.ToLower(fieldType.Name)
		}
		if tagName == key {
			return structVal.Field(i), true
		}
	}
	return reflect.Value{}, false
}
