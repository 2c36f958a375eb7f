package docservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/havenfs/internal/apperr"
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/testutil"
)

const tree = `#BRANCH base=main parent=b0011 head=b0012
#CHUNK files 0-999 @0
FILE f1a7e parent=92e1f name=logo.png size=20320 tags=b400
#CHUNK tagmap @4000
TAG b400 branding:#8E44AD FR=f1a7e
#CHUNK directories @25000
DIR 92e1f parent=root name=images
`

func newService(t *testing.T) *Service {
	t.Helper()
	_, store := testutil.TestWorkspace(t)
	return NewService(store, testutil.TestDB(t), nil)
}

func TestCreateAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.CreateDocument(ctx, "tree.havenfs", []byte(tree))
	require.NoError(t, err)
	require.Len(t, created.Result.Nodes, 2)
	require.False(t, created.Result.HasDiagnostics())

	got, err := svc.GetDocument(ctx, "tree.havenfs")
	require.NoError(t, err)
	assert.Equal(t, created.Checksum, got.Checksum)
	assert.Equal(t, tree, got.Content)
	require.NotNil(t, got.Result.Branch)
	assert.Equal(t, "b0012", got.Result.Branch.Head.Value)
}

func TestCreateDuplicate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateDocument(ctx, "dup.havenfs", []byte(tree))
	require.NoError(t, err)
	_, err = svc.CreateDocument(ctx, "dup.havenfs", []byte(tree))
	assert.ErrorIs(t, err, apperr.ErrAlreadyExists)
}

func TestUpdateIfMatch(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.CreateDocument(ctx, "u.havenfs", []byte(tree))
	require.NoError(t, err)
	next := tree + "DIR 92e20 parent=root name=docs\n"

	updated, err := svc.UpdateDocument(ctx, "u.havenfs", []byte(next), `"`+created.Checksum+`"`)
	require.NoError(t, err)
	assert.Len(t, updated.Result.Nodes, 3)

	_, err = svc.UpdateDocument(ctx, "u.havenfs", []byte(tree), created.Checksum)
	assert.ErrorIs(t, err, apperr.ErrConflict, "stale If-Match")

	_, err = svc.UpdateDocument(ctx, "missing.havenfs", []byte(tree), "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteDocument(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateDocument(ctx, "d.havenfs", []byte(tree))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteDocument(ctx, "d.havenfs"))

	_, err = svc.GetDocument(ctx, "d.havenfs")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	docs, total, err := svc.ListDocuments(ctx, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, docs)
}

func TestQueries(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	_, err := svc.CreateDocument(ctx, "q.havenfs", []byte(tree))
	require.NoError(t, err)
	_, err = svc.CreateDocument(ctx, "broken.havenfs", []byte("#CHUNK tagmap @0\nTAG b400 logo\n"))
	require.NoError(t, err)

	hits, err := svc.NodesByTag(ctx, "branding")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "f1a7e", hits[0].Node.ID)

	hits, err = svc.SearchNodes(ctx, "images", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "92e1f", hits[0].Node.ID)

	none, err := svc.NodesByTag(ctx, "nothing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	ds, err := svc.Diagnostics(ctx, "broken.havenfs")
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, diag.CodeMissingToken, ds[0].Code)

	_, err = svc.Diagnostics(ctx, "unknown.havenfs")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestParseText(t *testing.T) {
	svc := newService(t)
	res := svc.ParseText(context.Background(), "#CHUNK files @0\nFILE f1a7e parent=root name=a size=1\n")
	require.Len(t, res.Nodes, 1)

	docs, total, err := svc.ListDocuments(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total, "ParseText must not index anything")
	assert.Empty(t, docs)
}
