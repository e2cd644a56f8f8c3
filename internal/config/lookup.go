package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LookupFunc looks up a configuration key, in the manner of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// EnvLookup reads the live process environment on every call.
func EnvLookup() LookupFunc {
	return os.LookupEnv
}

// MapLookup serves keys from a fixed map.
func MapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// DotEnvLookup parses a .env file once and serves its keys. A missing file
// is not an error and yields an empty lookup.
func DotEnvLookup(path string) (LookupFunc, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MapLookup(nil), nil
		}
		return nil, err
	}
	return MapLookup(values), nil
}

// Chain consults each lookup in order and returns the first non-empty value.
// Nil entries are skipped.
func Chain(lookups ...LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		for _, lookup := range lookups {
			if lookup == nil {
				continue
			}
			if v, ok := lookup(key); ok && v != "" {
				return v, true
			}
		}
		return "", false
	}
}
