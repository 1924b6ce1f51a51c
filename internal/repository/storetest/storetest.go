// Package storetest is a conformance suite run against every
// model.ProfileStore backend.
package storetest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dtroode/profilekeeper/internal/model"
)

// Factory returns an empty store. Stores returned by separate calls must not
// observe each other's entries.
type Factory func(t *testing.T) model.ProfileStore

// Run executes the whole suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("save then get", func(t *testing.T) { testSaveThenGet(t, newStore(t)) })
	t.Run("save overwrites", func(t *testing.T) { testOverwrite(t, newStore(t)) })
	t.Run("delete absent key", func(t *testing.T) { testDeleteAbsent(t, newStore(t)) })
	t.Run("delete then get", func(t *testing.T) { testDeleteThenGet(t, newStore(t)) })
	t.Run("get all", func(t *testing.T) { testGetAll(t, newStore(t)) })
	t.Run("empty key", func(t *testing.T) { testEmptyKey(t, newStore(t)) })
	t.Run("invalid key lookups", func(t *testing.T) { testInvalidKeyLookups(t, newStore(t)) })
	t.Run("text round trip", func(t *testing.T) { testTextRoundTrip(t, newStore(t)) })
	t.Run("unstorable payload", func(t *testing.T) { testUnstorablePayload(t, newStore(t)) })
	t.Run("cancelled context", func(t *testing.T) { testCancelled(t, newStore(t)) })
	t.Run("alice scenario", func(t *testing.T) { testAliceScenario(t, newStore(t)) })
	t.Run("matches map model", func(t *testing.T) { testMatchesMapModel(t, newStore(t)) })
}

func testSaveThenGet(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()
	p := model.Profile{Name: "Alice", Bio: "likes Go", Attributes: map[string]string{"city": "Oslo", "team": "core"}}

	require.NoError(t, s.Save(ctx, "alice", p))

	got, err := s.GetByKey(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func testOverwrite(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()
	p1 := model.Profile{Name: "Bob", Bio: "first", Attributes: map[string]string{"a": "1"}}
	p2 := model.Profile{Name: "Robert"}

	require.NoError(t, s.Save(ctx, "bob", p1))
	require.NoError(t, s.Save(ctx, "bob", p2))

	got, err := s.GetByKey(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, p2, got, "save must replace the whole document, not merge")

	require.NoError(t, s.Save(ctx, "bob", p2))
	got, err = s.GetByKey(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, p2, got)
}

func testDeleteAbsent(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()
	assert.NoError(t, s.Delete(ctx, "nobody"))
	assert.NoError(t, s.Delete(ctx, "nobody"))
}

func testDeleteThenGet(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "carol", model.Profile{Name: "Carol"}))
	require.NoError(t, s.Delete(ctx, "carol"))

	_, err := s.GetByKey(ctx, "carol")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func testGetAll(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()

	before, err := s.GetAll(ctx)
	require.NoError(t, err)

	pa := model.Profile{Name: "A", Attributes: map[string]string{"k": "v"}}
	pb := model.Profile{Name: "B", Bio: "bee"}
	require.NoError(t, s.Save(ctx, "a", pa))
	require.NoError(t, s.Save(ctx, "b", pb))

	after, err := s.GetAll(ctx)
	require.NoError(t, err)

	want := append([]model.ProfileEntry{}, before...)
	want = append(want, model.ProfileEntry{Key: "a", Profile: pa}, model.ProfileEntry{Key: "b", Profile: pb})
	assert.ElementsMatch(t, want, after)
}

func testEmptyKey(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()

	err := s.Save(ctx, "", model.Profile{Name: "Nobody"})
	require.ErrorIs(t, err, model.ErrInvalidKey)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	for _, e := range all {
		assert.NotEmpty(t, e.Key)
		assert.NotEqual(t, "Nobody", e.Profile.Name)
	}
}

func testInvalidKeyLookups(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()

	_, err := s.GetByKey(ctx, "")
	assert.ErrorIs(t, err, model.ErrInvalidKey)

	err = s.Save(ctx, "a/b", model.Profile{Name: "Slash"})
	assert.ErrorIs(t, err, model.ErrInvalidKey)

	assert.NoError(t, s.Delete(ctx, ""))
}

func testTextRoundTrip(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()
	p := model.Profile{
		Name: "Åsa \"quoted\" \\ back\u2028slash 😀",
		Bio:  "line one\nline two\ttab\x01\x1f<html>&amp;",
		Attributes: map[string]string{
			"émoji 😀": "✓",
			"ctl":     "\x7f\u0085",
		},
	}

	require.NoError(t, s.Save(ctx, "text", p))
	got, err := s.GetByKey(ctx, "text")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func testUnstorablePayload(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()

	for name, p := range map[string]model.Profile{
		"invalid utf8 name":      {Name: "a\xffb"},
		"invalid utf8 attribute": {Name: "ok", Attributes: map[string]string{"k": "\xc3"}},
		"nul in bio":             {Name: "ok", Bio: "a\x00b"},
		"nul in attribute name":  {Name: "ok", Attributes: map[string]string{"a\x00": "v"}},
	} {
		err := s.Save(ctx, "bad", p)
		assert.ErrorIs(t, err, model.ErrInvalidProfile, name)
	}

	_, err := s.GetByKey(ctx, "bad")
	assert.ErrorIs(t, err, model.ErrNotFound, "rejected payloads must not be stored")
}

func testCancelled(t *testing.T, s model.ProfileStore) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetByKey(ctx, "")
	assert.ErrorIs(t, err, model.ErrInvalidKey, "key validation comes before the context check")
	assert.NoError(t, s.Delete(ctx, ""), "an invalid key is a no-op even with a done context")

	_, err = s.GetAll(ctx)
	assert.ErrorIs(t, err, model.ErrCancelled)

	_, err = s.GetByKey(ctx, "dave")
	assert.ErrorIs(t, err, model.ErrCancelled)

	err = s.Save(ctx, "dave", model.Profile{Name: "Dave"})
	assert.ErrorIs(t, err, model.ErrCancelled)

	err = s.Delete(ctx, "dave")
	assert.ErrorIs(t, err, model.ErrCancelled)

	_, err = s.GetByKey(context.Background(), "dave")
	assert.ErrorIs(t, err, model.ErrNotFound, "cancelled save must not be applied")
}

func testAliceScenario(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()
	alice := model.Profile{Name: "Alice", Bio: "x"}

	require.NoError(t, s.Save(ctx, "alice", alice))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, all, model.ProfileEntry{Key: "alice", Profile: alice})

	edit, err := s.GetByKey(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice, edit)

	require.NoError(t, s.Delete(ctx, "alice"))
	_, err = s.GetByKey(ctx, "alice")
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.NoError(t, s.Delete(ctx, "alice"))
}

// testMatchesMapModel drives random save/delete/get sequences and checks the
// store against a plain map.
func testMatchesMapModel(t *testing.T, s model.ProfileStore) {
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		purge(ctx, rt, s)
		state := map[string]model.Profile{}

		rt.Repeat(map[string]func(*rapid.T){
			"save": func(rt *rapid.T) {
				key := keyGen().Draw(rt, "key")
				p := profileGen().Draw(rt, "profile")
				require.NoError(rt, s.Save(ctx, key, p))
				state[key] = p
			},
			"delete": func(rt *rapid.T) {
				key := keyGen().Draw(rt, "key")
				require.NoError(rt, s.Delete(ctx, key))
				delete(state, key)
			},
			"get": func(rt *rapid.T) {
				key := keyGen().Draw(rt, "key")
				got, err := s.GetByKey(ctx, key)
				want, ok := state[key]
				if !ok {
					require.ErrorIs(rt, err, model.ErrNotFound)
					return
				}
				require.NoError(rt, err)
				require.Equal(rt, want, got)
			},
			"": func(rt *rapid.T) {
				all, err := s.GetAll(ctx)
				require.NoError(rt, err)
				want := make([]model.ProfileEntry, 0, len(state))
				for k, p := range state {
					want = append(want, model.ProfileEntry{Key: k, Profile: p})
				}
				require.ElementsMatch(rt, want, all)
			},
		})
	})
}

func purge(ctx context.Context, rt *rapid.T, s model.ProfileStore) {
	all, err := s.GetAll(ctx)
	require.NoError(rt, err)
	for _, e := range all {
		require.NoError(rt, s.Delete(ctx, e.Key))
	}
}

func keyGen() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-e][a-z0-9_.-]{0,3}`)
}

func profileGen() *rapid.Generator[model.Profile] {
	text := rapid.StringN(0, 12, -1).Filter(func(s string) bool {
		return !strings.ContainsRune(s, 0)
	})
	return rapid.Custom(func(rt *rapid.T) model.Profile {
		attrs := rapid.MapOfN(rapid.StringMatching(`[a-z]{1,6}`), text, 0, 3).Draw(rt, "attributes")
		return model.Profile{
			Name:       text.Draw(rt, "name"),
			Bio:        text.Draw(rt, "bio"),
			Attributes: model.Profile{Attributes: attrs}.Normalize().Attributes,
		}
	})
}
