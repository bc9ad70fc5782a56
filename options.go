package chkconfig

import (
	"github.com/hashicorp/go-multierror"

	"github.com/influxdata/chkconfig/kit/errors"
)

const (
	// DefaultStateDirectory is the compiled-in read/write flag state
	// backing file directory.
	DefaultStateDirectory = "/var/config"

	// DefaultDefaultDirectory is the compiled-in read-only flag state
	// fallback default backing file directory.
	DefaultDefaultDirectory = "/etc/config"
)

// Options configures a Store.
type Options struct {
	// StateDirectory is the read/write directory holding flag backing
	// files.
	StateDirectory string

	// DefaultDirectory is the read-only directory consulted as a
	// fallback when UseDefaultDirectory is set and a flag has no backing
	// file in StateDirectory.
	DefaultDirectory string

	// ForceState creates state backing files that do not already exist
	// on SetState.
	ForceState bool

	// UseDefaultDirectory enables the DefaultDirectory fallback for
	// lookups and enumeration.
	UseDefaultDirectory bool
}

// DefaultOptions returns the compiled-in option values.
func DefaultOptions() Options {
	return Options{
		StateDirectory:   DefaultStateDirectory,
		DefaultDirectory: DefaultDefaultDirectory,
	}
}

// Validate checks that the options are internally consistent, reporting
// every violation rather than the first.
func (o Options) Validate() error {
	var result *multierror.Error

	if o.StateDirectory == "" {
		result = multierror.Append(result, &errors.Error{
			Code: errors.EEmptyValue,
			Msg:  "state directory is required",
		})
	}

	if o.UseDefaultDirectory && o.DefaultDirectory == "" {
		result = multierror.Append(result, &errors.Error{
			Code: errors.EEmptyValue,
			Msg:  "default directory is required when the default directory fallback is enabled",
		})
	}

	return result.ErrorOrNil()
}

// Option customizes the Options a Store is constructed with.
type Option func(*Options)

// WithStateDirectory sets the read/write flag state directory.
func WithStateDirectory(dir string) Option {
	return func(o *Options) {
		o.StateDirectory = dir
	}
}

// WithDefaultDirectory sets the read-only fallback default directory.
func WithDefaultDirectory(dir string) Option {
	return func(o *Options) {
		o.DefaultDirectory = dir
	}
}

// WithForceState controls whether SetState creates backing files that do
// not already exist.
func WithForceState(force bool) Option {
	return func(o *Options) {
		o.ForceState = force
	}
}

// WithUseDefaultDirectory controls whether the default directory is
// consulted as a fallback.
func WithUseDefaultDirectory(use bool) Option {
	return func(o *Options) {
		o.UseDefaultDirectory = use
	}
}
