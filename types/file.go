package types

import (
	"fmt"
	"os"

	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/parser"
)

// File opens the named file while processing, so the parameter value
// is an *os.File ready for use. The conventional "-" names standard
// input when the file is opened for reading, standard output
// otherwise. Files opened here are closed when the invocation ends;
// the standard streams are left alone.
type File struct {
	flag        int
	perm        os.FileMode
	defaultPath string
	single      bool
}

// NewFile returns a file type opened with the given flags, as in
// os.OpenFile: os.O_RDONLY to read an existing file, or
// os.O_WRONLY|os.O_CREATE|os.O_TRUNC to write a fresh one.
func NewFile(flag int) File {
	return File{flag: flag, perm: 0o666}
}

// WithDefault opens the given path when the parameter is absent.
func (f File) WithDefault(path string) File {
	f.defaultPath = path
	return f
}

// WithPerm sets the mode bits used when the file is created.
func (f File) WithPerm(perm os.FileMode) File {
	f.perm = perm
	return f
}

// Once rejects repeated occurrences instead of keeping the last value.
func (f File) Once() File { f.single = true; return f }

// Name implements the Type interface.
func (File) Name() string { return "file" }

// Arity implements the Type interface.
func (File) Arity() nargs.NArgs { return nargs.Exactly(1) }

// HasDefault reports whether a default path was configured.
func (f File) HasDefault() bool { return f.defaultPath != "" }

// Metavar implements the Type interface.
func (File) Metavar() string { return "" }

// ParseFlags uses the declared spellings as they are.
func (File) ParseFlags(flags []string) ([]string, []string, error) {
	return flags, nil, nil
}

// Format shows the file name, with "-" for the standard streams.
func (File) Format(value any) string {
	file, ok := value.(*os.File)
	if !ok {
		return fmt.Sprint(value)
	}

	if file == os.Stdin || file == os.Stdout {
		return "-"
	}

	return file.Name()
}

// Matches accepts any capture with a value.
func (File) Matches(arg parser.Arg) bool {
	_, ok := argValue(arg)
	return ok
}

// writing reports whether the open flags name the write side of the
// standard streams for "-".
func (f File) writing() bool {
	return f.flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE) != 0
}

func (f File) open(path string) (*os.File, error) {
	if path == "-" {
		if f.writing() {
			return os.Stdout, nil
		}

		return os.Stdin, nil
	}

	return os.OpenFile(path, f.flag, f.perm)
}

// Process opens the last capture, or the default path when the
// parameter is absent.
func (f File) Process(args []parser.Arg) (any, bool, error) {
	if len(args) == 0 {
		if f.defaultPath == "" {
			return nil, false, nil
		}

		file, err := f.open(f.defaultPath)
		if err != nil {
			return nil, false, err
		}

		return file, true, nil
	}

	if len(args) > 1 && f.single {
		return nil, false, ErrAlreadySet
	}

	value, ok := argValue(args[len(args)-1])
	if !ok {
		return nil, false, fmt.Errorf("file: expected a value")
	}

	file, err := f.open(value)
	if err != nil {
		return nil, false, err
	}

	return file, true, nil
}

// ParseEnv opens the named file.
func (f File) ParseEnv(value string) (any, error) {
	file, err := f.open(value)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// ParseConfig opens the named file.
func (f File) ParseConfig(value any) (any, error) {
	path, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("file: config value must be a string")
	}

	file, err := f.open(path)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Validate implements the Type interface.
func (File) Validate(value any) error {
	if _, ok := value.(*os.File); !ok {
		return fmt.Errorf("expected file value")
	}

	return nil
}

// Cleanup closes files opened during processing. The standard streams
// are never closed.
func (File) Cleanup(value any) func() error {
	file, ok := value.(*os.File)
	if !ok || file == os.Stdin || file == os.Stdout {
		return nil
	}

	return file.Close
}
