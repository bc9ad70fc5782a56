package chkconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/influxdata/chkconfig/kit/errors"
	"github.com/influxdata/chkconfig/pkg/mmap"
)

// Store resolves and mutates flag state against the configured backing
// directories.
//
// A Store retains no in-memory state between calls; every operation
// re-reads the filesystem. External writers racing a Store are tolerated
// at the cost of possible inconsistency between a Count and a subsequent
// CopyAll.
//
// Flag names are used verbatim as path components. No sanitization is
// performed, so a name containing a separator or ".." addresses whatever
// path it composes to; callers that accept untrusted names must filter
// them first.
type Store struct {
	opts Options
}

// NewStore returns a Store configured with the compiled-in defaults,
// adjusted by any opts. The resulting options are validated before the
// Store is returned.
func NewStore(opts ...Option) (*Store, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Store{opts: o}, nil
}

// Options returns the options the store is operating with.
func (s *Store) Options() Options {
	return s.opts
}

// Reset rebinds the store to the compiled-in default options.
func (s *Store) Reset() {
	s.opts = DefaultOptions()
}

// useDefaultDirectory reports whether lookups should fall back to the
// default directory.
func (s *Store) useDefaultDirectory() bool {
	return s.opts.UseDefaultDirectory && s.opts.DefaultDirectory != ""
}

// State returns the resolved boolean state of flag.
//
// When the flag has no backing file in the state directory and the
// default directory fallback is disabled, the state quietly defaults to
// off with no error. With the fallback enabled, a flag absent from both
// directories is an ENotFound error.
func (s *Store) State(flag string) (bool, error) {
	state, _, err := s.StateWithOrigin(flag)
	return state, err
}

// StateWithOrigin returns the resolved boolean state of flag along with
// the origin the state was resolved from.
func (s *Store) StateWithOrigin(flag string) (bool, Origin, error) {
	if err := validateFlag(flag); err != nil {
		return false, OriginUnknown, err
	}

	fallback := s.useDefaultDirectory()

	// First attempt the state directory. A miss there is only an error
	// when there is a fallback left to try; the error then routes the
	// lookup to the default directory below.
	state, origin, err := readFlagFile(filepath.Join(s.opts.StateDirectory, flag), OriginState, fallback)
	if err == nil || !fallback || errors.ErrorCode(err) != errors.ENotFound {
		return state, origin, err
	}

	// Second and final attempt: the default directory. A miss here has
	// no further fallback and surfaces as an error.
	return readFlagFile(filepath.Join(s.opts.DefaultDirectory, flag), OriginDefault, true)
}

// StateMultiple resolves each tuple's Flag field in place, filling in the
// State and Origin fields. The first resolution failure aborts the fill
// and is returned; earlier tuples keep their resolved values.
func (s *Store) StateMultiple(tuples []FlagState) error {
	for i := range tuples {
		state, origin, err := s.StateWithOrigin(tuples[i].Flag)
		if err != nil {
			return err
		}
		tuples[i].State = state
		tuples[i].Origin = origin
	}
	return nil
}

// Count returns the number of flags with a backing file.
//
// With the default directory fallback disabled this is the count of
// regular files in the state directory. With it enabled, it is the size
// of the union by flag name across both directories; overlapping names
// count once.
func (s *Store) Count() (int, error) {
	if !s.useDefaultDirectory() {
		return countFlagFiles(s.opts.StateDirectory)
	}

	// The union count requires the same merge as CopyAll; counting the
	// directories separately and summing would double-count flags
	// present in both.
	tuples, err := s.copyAllWithDefaultDirectory()
	if err != nil {
		return 0, err
	}
	return len(tuples), nil
}

// CopyAll returns one tuple per flag with a backing file.
//
// With the default directory fallback disabled, tuples come from the
// state directory alone, each with OriginState. With it enabled, both
// directories are snapshotted and merged into their union by flag name,
// state directory entries winning over default directory duplicates, and
// the result is sorted by flag name.
func (s *Store) CopyAll() ([]FlagState, error) {
	if !s.useDefaultDirectory() {
		return copyAllFlags(s.opts.StateDirectory, OriginState)
	}
	return s.copyAllWithDefaultDirectory()
}

func (s *Store) copyAllWithDefaultDirectory() ([]FlagState, error) {
	deflt, err := copyAllFlags(s.opts.DefaultDirectory, OriginDefault)
	if err != nil {
		return nil, err
	}

	state, err := copyAllFlags(s.opts.StateDirectory, OriginState)
	if err != nil {
		return nil, err
	}

	SortByFlag(state)
	SortByFlag(deflt)

	// State tuples on the left so their values win over default
	// directory duplicates.
	return unionByFlag(state, deflt), nil
}

// SetState writes state to the flag's backing file in the state
// directory, truncating any previous content. Unless the store was
// configured with ForceState, a backing file that does not already exist
// is an error rather than created.
func (s *Store) SetState(flag string, state bool) error {
	const op = "chkconfig.SetState"

	if err := validateFlag(flag); err != nil {
		return err
	}

	mode := os.O_WRONLY | os.O_TRUNC
	if s.opts.ForceState {
		mode |= os.O_CREATE
	}

	path := filepath.Join(s.opts.StateDirectory, flag)
	f, err := os.OpenFile(path, mode, 0666)
	if err != nil {
		code := errors.EInternal
		if os.IsNotExist(err) {
			code = errors.ENotFound
		}
		return &errors.Error{Code: code, Op: op, Err: err}
	}

	_, werr := fmt.Fprintf(f, "%s\n", FormatState(state))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return &errors.Error{Code: errors.EInternal, Op: op, Err: werr}
	}
	return nil
}

// SetStateMultiple writes each tuple's state in sequence, stopping at the
// first failure.
func (s *Store) SetStateMultiple(tuples []FlagState) error {
	for _, tuple := range tuples {
		if err := s.SetState(tuple.Flag, tuple.State); err != nil {
			return err
		}
	}
	return nil
}

func validateFlag(flag string) error {
	if flag == "" {
		return &errors.Error{
			Code: errors.EEmptyValue,
			Msg:  "flag name is required",
		}
	}
	return nil
}

// readFlagFile reads one backing file and parses its state.
//
// The whole file is memory-mapped and the leading keyword parsed from the
// mapping; backing files are expected to be a few bytes, so mapping the
// entire content is the cheap path. A missing file yields (false,
// OriginNone) and, when missIsError is clear, no error.
func readFlagFile(path string, origin Origin, missIsError bool) (bool, Origin, error) {
	const op = "chkconfig.readFlagFile"

	data, err := mmap.Map(path, 0)
	if err != nil {
		if os.IsNotExist(err) {
			if missIsError {
				return false, OriginNone, &errors.Error{
					Code: errors.ENotFound,
					Msg:  fmt.Sprintf("flag backing file %q does not exist", path),
					Op:   op,
					Err:  err,
				}
			}
			return false, OriginNone, nil
		}
		return false, OriginNone, &errors.Error{Code: errors.EInternal, Op: op, Err: err}
	}
	defer mmap.Unmap(data)

	// A zero-length backing file reads as off.
	if len(data) == 0 {
		return false, origin, nil
	}

	state, err := ParseState(string(data))
	if err != nil {
		return false, origin, err
	}
	return state, origin, nil
}

// countFlagFiles counts the regular files directly inside dir. The
// regular-file filter is what excludes "." and "..", subdirectories, and
// special files, not any name matching.
func countFlagFiles(dir string) (int, error) {
	const op = "chkconfig.countFlagFiles"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, wrapDirError(op, err)
	}

	var count int
	for _, entry := range entries {
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil {
			return 0, &errors.Error{Code: errors.EInternal, Op: op, Err: err}
		}
		if info.Mode().IsRegular() {
			count++
		}
	}
	return count, nil
}

// copyAllFlags snapshots every regular file directly inside dir as a
// tuple tagged with origin.
func copyAllFlags(dir string, origin Origin) ([]FlagState, error) {
	const op = "chkconfig.copyAllFlags"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, wrapDirError(op, err)
	}

	tuples := make([]FlagState, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		info, err := os.Stat(path)
		if err != nil {
			return nil, &errors.Error{Code: errors.EInternal, Op: op, Err: err}
		}
		if !info.Mode().IsRegular() {
			continue
		}

		state, _, err := readFlagFile(path, origin, false)
		if err != nil {
			return nil, err
		}

		tuples = append(tuples, FlagState{Flag: entry.Name(), State: state, Origin: origin})
	}
	return tuples, nil
}

func wrapDirError(op string, err error) error {
	code := errors.EInternal
	if os.IsNotExist(err) {
		code = errors.ENotFound
	}
	return &errors.Error{Code: code, Op: op, Err: err}
}
