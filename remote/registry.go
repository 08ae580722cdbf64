// Package remote is a registry of Remote factories,
// keyed by the "type" field of a JSON config object.
package remote

import (
	"context"
	"fmt"

	"github.com/dolovcak/htpublish"
)

type Factory func(context.Context, map[string]interface{}) (htpublish.Remote, error)

var registry = make(map[string]Factory)

func Register(key string, f Factory) {
	registry[key] = f
}

func Create(ctx context.Context, key string, conf map[string]interface{}) (htpublish.Remote, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry", key)
	}
	return f(ctx, conf)
}
