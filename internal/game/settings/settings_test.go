package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSettings_TypedAccess(t *testing.T) {
	s := New()
	s.SetString("prefix", "[Top 1]")
	s.SetBool("muted", true)
	s.SetNumber("goals", 3)

	prefix, ok := s.String("prefix")
	require.True(t, ok)
	assert.Equal(t, "[Top 1]", prefix)

	muted, ok := s.Bool("muted")
	require.True(t, ok)
	assert.True(t, muted)

	goals, ok := s.Number("goals")
	require.True(t, ok)
	assert.Equal(t, 3.0, goals)

	_, ok = s.Number("prefix")
	assert.False(t, ok, "kind mismatch must not coerce")
	assert.Equal(t, []string{"goals", "muted", "prefix"}, s.Keys())
}

func TestSettings_SetRejectsUnsupported(t *testing.T) {
	s := New()
	err := s.Set("list", []string{"a"})
	assert.Error(t, err)
	assert.False(t, s.Has("list"))

	require.NoError(t, s.Set("n", 7))
	assert.Equal(t, KindNumber, s.KindOf("n"))
}

func TestSettings_ZeroValueUsable(t *testing.T) {
	var s Settings
	s.SetBool("afk", true)
	assert.Equal(t, 1, s.Len())
	s.Delete("afk")
	assert.False(t, s.Has("afk"))
}

func TestPropertySettings_LastWriteWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New()
		key := rapid.StringMatching(`[a-z]{1,8}`).Draw(t, "key")
		s.SetString(key, rapid.String().Draw(t, "first"))
		n := rapid.Float64().Draw(t, "second")
		s.SetNumber(key, n)
		if _, ok := s.String(key); ok {
			t.Fatalf("string value survived overwrite")
		}
		got, ok := s.Number(key)
		if !ok || (got != n && n == n) {
			t.Fatalf("Number(%q) = %v, %v; want %v", key, got, ok, n)
		}
	})
}
