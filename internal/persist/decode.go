// Package persist holds the typed repositories built on top of the
// key-value store. Every read is schema-validated and falls back to a
// default on absence, malformed JSON or an unexpected shape.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/MrSnakeDoc/nearby/internal/logger"
	"github.com/MrSnakeDoc/nearby/internal/store"
)

// base is embedded by every repository.
type base struct {
	store  store.Store
	logger logger.Logger
	now    func() time.Time
}

func newBase(st store.Store, log logger.Logger) base {
	if log == nil {
		log = logger.Nop()
	}
	return base{store: st, logger: log, now: time.Now}
}

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("persist: invalid schema: %v", err))
	}
	return s
}

// decodeValidated unmarshals raw into out only if it satisfies schema.
func decodeValidated(raw json.RawMessage, schema *gojsonschema.Schema, out any) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("malformed document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("unexpected shape: %s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// load reads key into a T, returning def() whenever the stored document is
// missing or unusable. Only backend errors are returned.
func load[T any](ctx context.Context, b base, key string, schema *gojsonschema.Schema, def func() T) (T, error) {
	raw, ok, err := b.store.Get(ctx, key)
	if err != nil {
		return def(), err
	}
	if !ok {
		return def(), nil
	}

	var v T
	if err := decodeValidated(raw, schema, &v); err != nil {
		b.logger.Warn("ignoring unusable persisted document",
			logger.String("key", key),
			logger.Error(err))
		return def(), nil
	}
	return v, nil
}

func emptySlice[T any]() func() []T {
	return func() []T { return []T{} }
}
