package types

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reeflective/decree/nargs"
	"github.com/reeflective/decree/parser"
)

// Path is a filesystem path with checks applied at validation time:
// existence, kind, and permission bits. The value is the path string,
// optionally made absolute. Checks on permissions look at the mode
// bits only, so they behave the same for every user.
type Path struct {
	absolute   bool
	allowDash  bool
	exists     bool
	noFiles    bool
	noDirs     bool
	readable   bool
	writable   bool
	executable bool
	single     bool
}

// NewPath returns a path type accepting any value.
func NewPath() Path { return Path{} }

// Exists requires the path to exist.
func (p Path) Exists() Path { p.exists = true; return p }

// FilesOnly rejects directories.
func (p Path) FilesOnly() Path { p.noDirs = true; return p }

// DirsOnly rejects regular files.
func (p Path) DirsOnly() Path { p.noFiles = true; return p }

// AllowDash accepts "-", the conventional spelling for the standard
// streams.
func (p Path) AllowDash() Path { p.allowDash = true; return p }

// Absolute resolves values against the working directory.
func (p Path) Absolute() Path { p.absolute = true; return p }

// Readable requires a read permission bit on the path.
func (p Path) Readable() Path { p.readable = true; return p }

// Writable requires a write permission bit on the path.
func (p Path) Writable() Path { p.writable = true; return p }

// Executable requires an execute permission bit on the path.
func (p Path) Executable() Path { p.executable = true; return p }

// Once rejects repeated occurrences instead of keeping the last value.
func (p Path) Once() Path { p.single = true; return p }

// WantsDirs reports whether regular files are rejected.
func (p Path) WantsDirs() bool { return p.noFiles }

// WantsFiles reports whether directories are rejected.
func (p Path) WantsFiles() bool { return p.noDirs }

// Name implements the Type interface.
func (Path) Name() string { return "path" }

// Arity implements the Type interface.
func (Path) Arity() nargs.NArgs { return nargs.Exactly(1) }

// HasDefault implements the Type interface.
func (Path) HasDefault() bool { return false }

// Metavar implements the Type interface.
func (Path) Metavar() string { return "" }

// ParseFlags uses the declared spellings as they are.
func (Path) ParseFlags(flags []string) ([]string, []string, error) {
	return flags, nil, nil
}

// Format implements the Type interface.
func (Path) Format(value any) string { return fmt.Sprint(value) }

// Matches accepts any capture with a value.
func (Path) Matches(arg parser.Arg) bool {
	_, ok := argValue(arg)
	return ok
}

func (p Path) parse(value string) (string, error) {
	if !p.absolute || value == "-" {
		return value, nil
	}

	return filepath.Abs(value)
}

// Process keeps the last capture.
func (p Path) Process(args []parser.Arg) (any, bool, error) {
	if len(args) == 0 {
		return nil, false, nil
	}

	if len(args) > 1 && p.single {
		return nil, false, ErrAlreadySet
	}

	value, ok := argValue(args[len(args)-1])
	if !ok {
		return nil, false, fmt.Errorf("path: expected a value")
	}

	parsed, err := p.parse(value)
	if err != nil {
		return nil, false, err
	}

	return parsed, true, nil
}

// ParseEnv implements the Type interface.
func (p Path) ParseEnv(value string) (any, error) {
	return p.parse(value)
}

// ParseConfig implements the Type interface.
func (p Path) ParseConfig(value any) (any, error) {
	if str, ok := value.(string); ok {
		return p.parse(str)
	}

	return value, nil
}

// Validate applies the configured checks against the filesystem.
func (p Path) Validate(value any) error {
	path, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected path value")
	}

	if path == "-" {
		if !p.allowDash {
			return fmt.Errorf(`"-" is not allowed`)
		}

		if p.executable {
			return fmt.Errorf("path must be executable")
		}

		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if p.exists {
			return fmt.Errorf("path %q must exist", path)
		}

		return nil
	}

	if p.noFiles && info.Mode().IsRegular() {
		return fmt.Errorf("path %q must not be a file", path)
	}

	if p.noDirs && info.IsDir() {
		return fmt.Errorf("path %q must not be a directory", path)
	}

	mode := info.Mode().Perm()

	if p.readable && mode&0o444 == 0 {
		return fmt.Errorf("path %q must be readable", path)
	}

	if p.writable && mode&0o222 == 0 {
		return fmt.Errorf("path %q must be writable", path)
	}

	if p.executable && mode&0o111 == 0 {
		return fmt.Errorf("path %q must be executable", path)
	}

	return nil
}
