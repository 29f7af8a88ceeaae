package types

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reeflective/decree/parser"
)

//
// File ------------------------------------------------------------------------- //
//

// TestFileRead checks that processing opens the named file for use.
func TestFileRead(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	path := filepath.Join(t.TempDir(), "in.txt")
	rq.NoError(os.WriteFile(path, []byte("hello"), 0o644))

	reader := NewFile(os.O_RDONLY)

	value, ok, err := reader.Process([]parser.Arg{pos(path)})
	rq.NoError(err)
	rq.True(ok)

	file, ok := value.(*os.File)
	rq.True(ok)

	content, err := io.ReadAll(file)
	rq.NoError(err)
	pt.Equal("hello", string(content))

	cleanup := reader.Cleanup(value)
	rq.NotNil(cleanup, "opened files must be released")
	pt.NoError(cleanup())

	pt.Equal(path, reader.Format(value))
}

// TestFileWrite checks creation flags and written content.
func TestFileWrite(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	path := filepath.Join(t.TempDir(), "out.txt")
	writer := NewFile(os.O_WRONLY | os.O_CREATE | os.O_TRUNC)

	value, _, err := writer.Process([]parser.Arg{pos(path)})
	rq.NoError(err)

	file := value.(*os.File)
	_, err = file.WriteString("done")
	rq.NoError(err)
	rq.NoError(writer.Cleanup(value)())

	content, err := os.ReadFile(path)
	rq.NoError(err)
	pt.Equal("done", string(content))
}

// TestFileDash checks that "-" selects the standard stream matching
// the open flags.
func TestFileDash(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	value, _, err := NewFile(os.O_RDONLY).Process([]parser.Arg{pos("-")})
	rq.NoError(err)
	pt.Same(os.Stdin, value)

	value, _, err = NewFile(os.O_WRONLY | os.O_APPEND).Process([]parser.Arg{pos("-")})
	rq.NoError(err)
	pt.Same(os.Stdout, value)

	pt.Nil(NewFile(os.O_RDONLY).Cleanup(os.Stdin), "standard streams are never closed")
	pt.Equal("-", NewFile(os.O_RDONLY).Format(os.Stdin))
}

// TestFileDefault checks the default path behavior.
func TestFileDefault(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	rq := require.New(t)

	path := filepath.Join(t.TempDir(), "default.txt")
	rq.NoError(os.WriteFile(path, []byte("x"), 0o644))

	plain := NewFile(os.O_RDONLY)
	pt.False(plain.HasDefault())

	_, ok, err := plain.Process(nil)
	pt.NoError(err)
	pt.False(ok, "no captures and no default produce no value")

	seeded := plain.WithDefault(path)
	pt.True(seeded.HasDefault())

	value, ok, err := seeded.Process(nil)
	rq.NoError(err)
	rq.True(ok)

	file := value.(*os.File)
	pt.Equal(path, file.Name())
	rq.NoError(seeded.Cleanup(value)())
}

// TestFileErrors checks failure paths.
func TestFileErrors(t *testing.T) {
	t.Parallel()

	pt := assert.New(t)
	missing := filepath.Join(t.TempDir(), "missing")

	_, _, err := NewFile(os.O_RDONLY).Process([]parser.Arg{pos(missing)})
	pt.Error(err)

	_, _, err = NewFile(os.O_RDONLY).Once().Process([]parser.Arg{pos("-"), pos("-")})
	pt.ErrorIs(err, ErrAlreadySet)

	_, err = NewFile(os.O_RDONLY).ParseConfig(42)
	pt.Error(err, "config values must name a path")
}
