package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/hydrator/internal/hydrate"
)

func TestParseCreateTable(t *testing.T) {
	t.Run("invalid create table sql", func(t *testing.T) {
		_, err := ParseCreateTable("invalid sql")
		assert.Error(t, err)
	})

	t.Run("not a create table", func(t *testing.T) {
		_, err := ParseCreateTable("select id from users")
		assert.ErrorIs(t, err, ErrNotCreateTable)
	})

	t.Run("users table", func(t *testing.T) {
		r, err := ParseCreateTable(`CREATE TABLE users (
			id int NOT NULL AUTO_INCREMENT,
			name varchar(255) NOT NULL,
			age int NOT NULL DEFAULT 0,
			role varchar(32) NOT NULL DEFAULT 'member',
			score double,
			bio text DEFAULT NULL,
			created_at timestamp NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id)
		)`)
		require.NoError(t, err)
		assert.Equal(t, "users", r.Name)

		s, err := r.Spec()
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "name", "age", "role", "score", "bio", "created_at"}, s.Names())

		id, _ := s.Lookup("id")
		assert.False(t, id.Required)
		assert.Equal(t, hydrate.TypeInteger, id.Type)

		name, _ := s.Lookup("name")
		assert.True(t, name.Required)
		assert.False(t, name.Nullable)
		assert.Equal(t, hydrate.TypeString, name.Type)

		age, _ := s.Lookup("age")
		assert.False(t, age.Required)
		assert.True(t, age.HasDefault)
		assert.Equal(t, 0, age.Default)

		role, _ := s.Lookup("role")
		assert.Equal(t, "member", role.Default)

		score, _ := s.Lookup("score")
		assert.Equal(t, hydrate.TypeNumber, score.Type)
		assert.True(t, score.Nullable)
		assert.False(t, score.HasDefault)

		bio, _ := s.Lookup("bio")
		assert.True(t, bio.HasDefault)
		assert.Nil(t, bio.Default)

		created, _ := s.Lookup("created_at")
		assert.False(t, created.Required)
		assert.False(t, created.HasDefault)

		res := hydrate.Hydrate(s, hydrate.Payload{"name": "Sophie"})
		assert.True(t, res.OK())
		assert.Equal(t, map[string]any{"name": "Sophie", "age": 0, "role": "member", "bio": nil}, res.Record.Map())
	})

	t.Run("quoted numeric defaults", func(t *testing.T) {
		r, err := ParseCreateTable("CREATE TABLE `accounts` (" +
			"`age` int NOT NULL DEFAULT '0'," +
			"`active` tinyint(1) DEFAULT '1'," +
			"`balance` decimal(10,2) NOT NULL DEFAULT '12.50'," +
			"`code` varchar(8) DEFAULT '007'" +
			")")
		require.NoError(t, err)

		s, err := r.Spec()
		require.NoError(t, err)

		age, _ := s.Lookup("age")
		assert.False(t, age.Required)
		assert.Equal(t, 0, age.Default)

		active, _ := s.Lookup("active")
		assert.Equal(t, 1, active.Default)

		balance, _ := s.Lookup("balance")
		assert.Equal(t, 12.5, balance.Default)

		code, _ := s.Lookup("code")
		assert.Equal(t, "007", code.Default)
	})

	t.Run("unparsable quoted numeric default", func(t *testing.T) {
		_, err := ParseCreateTable("CREATE TABLE t (age int DEFAULT 'abc')")
		assert.Error(t, err)
	})
}
