package spec

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/hydrator/internal/config"
)

func TestGenerateCommand(t *testing.T) {
	t.Run("create table", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newGenerateCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{
			"-q", "CREATE TABLE users (name varchar(255) NOT NULL, age int DEFAULT 0)",
			"--name", "user",
		})
		require.NoError(t, cmd.Execute())

		c, err := config.NewHydrator(out.Bytes())
		require.NoError(t, err)

		specs, err := c.Specs()
		require.NoError(t, err)
		require.Contains(t, specs, "user")

		age, ok := specs["user"].Lookup("age")
		require.True(t, ok)
		assert.Equal(t, 0, age.Default)
		name, _ := specs["user"].Lookup("name")
		assert.True(t, name.Required)
	})

	t.Run("unsupported db", func(t *testing.T) {
		cmd := newGenerateCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"--db", "oracle", "-q", "CREATE TABLE t (a int)"})
		assert.Error(t, cmd.Execute())
	})

	t.Run("invalid sql", func(t *testing.T) {
		cmd := newGenerateCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"-q", "invalid sql"})
		assert.Error(t, cmd.Execute())
	})
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newValidateCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--config", "../../../dev/examples/users.hydrator.yml"})
		require.NoError(t, cmd.Execute())

		assert.Equal(t, "address: 3 fields\nuser: 4 fields\n", out.String())
	})

	t.Run("duplicate field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte(`
records:
  - name: user
    fields:
      - name: age
      - name: age
`), 0644))

		cmd := newValidateCommand()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--config", path})
		assert.Error(t, cmd.Execute())
	})
}
