// Package repository loads the read-only conversion table.
package repository

import (
	"io/fs"

	"github.com/okian/bakeconv/pkg/logger"
)

// Option applies a configuration option to Load.
type Option func(*loadOptions)

type loadOptions struct {
	fsys   fs.FS
	name   string
	logger logger.Logger
}

// WithPath loads the table from a file on disk. An empty path keeps the
// embedded table.
func WithPath(path string) Option {
	return func(o *loadOptions) {
		if path != "" {
			o.fsys = osFS{}
			o.name = path
		}
	}
}

// WithFS loads the table from name inside fsys.
func WithFS(fsys fs.FS, name string) Option {
	return func(o *loadOptions) {
		if fsys != nil && name != "" {
			o.fsys = fsys
			o.name = name
		}
	}
}

// WithLogger sets the logger used to report the loaded table.
func WithLogger(l logger.Logger) Option {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
