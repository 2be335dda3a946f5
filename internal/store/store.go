// Package store keeps a single JSON document on disk through gache and the virtual filesystem.
//
// Every lectern record file (enrollments, certificates, comments, session,
// query history) is one Document. Writes replace the whole document.
package store

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/lectern-cli/lectern/filesystem"
	"github.com/metafates/gache"
)

type cacher[T any] interface {
	Get() (T, bool, error)
	Set(T) error
}

// Document is a lazily opened gache file holding a value of type T.
type Document[T any] struct {
	path     func() string
	lifetime time.Duration
	empty    func() T

	once  sync.Once
	cache cacher[T]
	mu    sync.Mutex
}

// Option tunes a Document.
type Option[T any] func(*Document[T])

// WithLifetime makes stored values expire, turning them into the empty value on load.
func WithLifetime[T any](d time.Duration) Option[T] {
	return func(doc *Document[T]) {
		doc.lifetime = d
	}
}

// New returns a Document stored at path(). The path is resolved on first access,
// so tests may switch the filesystem backend first.
func New[T any](path func() string, empty func() T, options ...Option[T]) *Document[T] {
	doc := &Document[T]{path: path, empty: empty}
	for _, option := range options {
		option(doc)
	}
	return doc
}

func (d *Document[T]) open() cacher[T] {
	d.once.Do(func() {
		d.cache = gache.New[T](&gache.Options{
			Path:       d.path(),
			Lifetime:   d.lifetime,
			FileSystem: &filesystem.GacheFs{},
		})
	})
	return d.cache
}

func (d *Document[T]) load() (T, error) {
	value, expired, err := d.open().Get()
	if err != nil {
		return d.empty(), fmt.Errorf("read %s: %w", d.path(), err)
	}
	if expired || reflect.ValueOf(&value).Elem().IsZero() {
		return d.empty(), nil
	}
	return value, nil
}

// Load returns the stored value, or the empty value when nothing is stored yet.
func (d *Document[T]) Load() (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load()
}

// Save replaces the stored value.
func (d *Document[T]) Save(value T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(value)
}

func (d *Document[T]) save(value T) error {
	if err := d.open().Set(value); err != nil {
		return fmt.Errorf("write %s: %w", d.path(), err)
	}
	return nil
}

// Update loads, applies fn and saves the result as one step.
// Nothing is written when fn returns an error.
func (d *Document[T]) Update(fn func(T) (T, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	value, err := d.load()
	if err != nil {
		return err
	}

	value, err = fn(value)
	if err != nil {
		return err
	}

	return d.save(value)
}

// Reset stores the empty value.
func (d *Document[T]) Reset() error {
	return d.Save(d.empty())
}
