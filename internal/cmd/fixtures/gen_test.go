package fixtures

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/hydrator/internal/hydrate"
	"github.com/turbolytics/hydrator/internal/payload"
)

func TestGenerator(t *testing.T) {
	s, err := hydrate.NewSpec(
		hydrate.Required("name").OfType(hydrate.TypeString),
		hydrate.Required("age").OfType(hydrate.TypeInteger),
		hydrate.Optional("tags").OfType(hydrate.TypeArray),
	)
	require.NoError(t, err)

	t.Run("no drift hydrates cleanly", func(t *testing.T) {
		g := NewGenerator(s, 7)
		for i := 0; i < 20; i++ {
			r := hydrate.Hydrate(s, g.Payload(i))
			assert.True(t, r.OK(), "issues: %v", r.Issues())
		}
	})

	t.Run("full drift", func(t *testing.T) {
		g := NewGenerator(s, 7)
		g.DropRate = 1
		g.ExtraRate = 1

		r := hydrate.Hydrate(s, g.Payload(0))
		assert.Equal(t, []string{"name", "age"}, r.Missing)
		assert.Len(t, r.Unknown, 1)
	})

	t.Run("same seed same payloads", func(t *testing.T) {
		a := NewGenerator(s, 3)
		b := NewGenerator(s, 3)
		assert.Equal(t, a.Payload(1), b.Payload(1))
	})
}

func TestGenerateCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newGenerateCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"-c", "../../../dev/examples/users.hydrator.yml",
		"-r", "user",
		"-n", "5",
		"--drop-rate", "0",
		"--extra-rate", "0",
	})
	require.NoError(t, cmd.Execute())

	payloads, err := payload.DecodeAll(payload.FormatNDJSON, strings.NewReader(out.String()))
	require.NoError(t, err)
	require.Len(t, payloads, 5)
	assert.Equal(t, "3 name", payloads[3]["name"])
}

func TestFixturesCommandHelp(t *testing.T) {
	var out bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Generates payload fixtures that drift from a configured record")
	assert.Contains(t, out.String(), "generate")
}
