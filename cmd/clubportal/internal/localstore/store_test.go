package localstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easymake/clubportal/cmd/clubportal/internal/auth"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutValueDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.Value(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "theme", "dark"))
	require.NoError(t, s.Put(ctx, "theme", "light"))

	v, ok, err := s.Value(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", v)

	require.NoError(t, s.Delete(ctx, "theme", "never-set"))
	_, ok, err = s.Value(ctx, "theme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ReopenKeepsValues(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.PutAll(ctx, map[string]string{"a": "1", "b": "2"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.MapMedium{"a": "1", "b": "2"}, snap)
}

func TestStore_SessionMirror(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	secret := []byte("local-store-test-secret-0123456789")
	now := time.Now()

	leader, err := auth.IssueSessionToken(secret, auth.Session{Subject: "u-1", Role: auth.RoleClubLeader, ClubID: "c-1"}, now, time.Hour)
	require.NoError(t, err)
	member, err := auth.IssueSessionToken(secret, auth.Session{Subject: "u-2", Role: auth.RoleMember}, now, time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "theme", "dark"))
	require.NoError(t, s.SaveSession(ctx, leader))
	require.NoError(t, s.SaveSession(ctx, member))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)

	resolver := auth.NewResolver(auth.ResolverOptions{})
	session := resolver.Resolve(snap)
	assert.Equal(t, auth.RoleMember, session.Role)
	assert.Equal(t, "u-2", session.Subject)
	assert.Empty(t, session.ClubID, "previous session's club must not leak")
	assert.Equal(t, member, session.Credential())

	require.NoError(t, s.ClearSession(ctx))
	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, auth.MapMedium{"theme": "dark"}, snap)
	assert.Equal(t, auth.RoleAnonymous, resolver.Resolve(snap).Role)

	assert.Error(t, s.SaveSession(ctx, "not-a-token"))
}
