// Copyright (c) 2022 Shivaram Lingamneni
// released under the MIT license

package utils

import "sync/atomic"

// ConfigStore holds the current config. Install a fully prepared config
// with Set and never modify it afterwards; Get is then free of data races.
type ConfigStore[T any] struct {
	ptr atomic.Pointer[T]
}

func (c *ConfigStore[T]) Get() *T {
	return c.ptr.Load()
}

func (c *ConfigStore[T]) Set(ptr *T) {
	c.ptr.Store(ptr)
}
