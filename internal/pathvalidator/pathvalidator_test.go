package pathvalidator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWorkspacePathAcceptsFileInWorkspace(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.rs"), []byte("fn main() {}"), 0o644))

	v, err := New([]string{root}, nil)
	require.NoError(t, err)

	canonicalRoot, err := safeCanonicalize(root)
	require.NoError(t, err)

	canonical, err := v.ValidateWorkspacePath("main.rs", canonicalRoot)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(canonicalRoot, "main.rs"), canonical)
}

func TestValidateWorkspacePathRejectsTraversal(t *testing.T) {
	root := t.TempDir()
	v, err := New([]string{root}, nil)
	require.NoError(t, err)

	canonicalRoot, err := safeCanonicalize(root)
	require.NoError(t, err)

	_, err = v.ValidateWorkspacePath("../../../etc/passwd", canonicalRoot)
	assert.Error(t, err)
}

func TestValidateWorkspacePathRejectsUnknownWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	v, err := New([]string{root}, nil)
	require.NoError(t, err)

	_, err = v.ValidateWorkspacePath("file.txt", "/not/an/allowed/root")
	assert.Error(t, err)
}

func TestValidateWorkspacePathRejectsUnicodeSeparatorAttack(t *testing.T) {
	root := t.TempDir()
	v, err := New([]string{root}, nil)
	require.NoError(t, err)

	canonicalRoot, err := safeCanonicalize(root)
	require.NoError(t, err)

	_, err = v.ValidateWorkspacePath("..／etc／passwd", canonicalRoot)
	assert.Error(t, err)
}

func TestValidateWorkspacePathRejectsURLEncodedTraversal(t *testing.T) {
	root := t.TempDir()
	v, err := New([]string{root}, nil)
	require.NoError(t, err)
	canonicalRoot, err := safeCanonicalize(root)
	require.NoError(t, err)

	for _, p := range []string{
		"%2e%2e/%2e%2e/etc/passwd",
		"%252e%252e/%252e%252e/etc/passwd",
	} {
		_, err = v.ValidateWorkspacePath(p, canonicalRoot)
		assert.Error(t, err, "expected rejection for %q", p)
	}
}

func TestEmptyAllowedRootsDeniesEverything(t *testing.T) {
	v, err := New(nil, nil)
	require.NoError(t, err)

	_, err = v.ValidateWorkspacePath("anything", "/tmp")
	assert.Error(t, err)
}

func TestEmptyBlockedPatternsBlocksNothing(t *testing.T) {
	v, err := New([]string{t.TempDir()}, nil)
	require.NoError(t, err)

	assert.False(t, v.IsBlockedPath("/any/path/at/all"))
}

func TestIsBlockedPathMatchesFilenameAndSuffix(t *testing.T) {
	v, err := New([]string{t.TempDir()}, []string{"*.env"})
	require.NoError(t, err)

	assert.True(t, v.IsBlockedPath("/workspace/.env"))
	assert.True(t, v.IsBlockedPath("config/.env"))
	assert.False(t, v.IsBlockedPath("/workspace/.env.sample"))
}

func TestGenerateWorkspacePathDeterministic(t *testing.T) {
	p1 := GenerateWorkspacePath("/root", "sess_abc", "worker")
	p2 := GenerateWorkspacePath("/root", "sess_abc", "worker")
	assert.Equal(t, p1, p2)
	assert.Equal(t, filepath.Join("/root", "sess_abc_worker"), p1)
}

func TestLongSingleComponentPathHandledWithoutPanic(t *testing.T) {
	root := t.TempDir()
	v, err := New([]string{root}, nil)
	require.NoError(t, err)
	canonicalRoot, err := safeCanonicalize(root)
	require.NoError(t, err)

	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}
	assert.NotPanics(t, func() {
		_, _ = v.ValidateWorkspacePath(string(long), canonicalRoot)
	})
}

func TestDeeplyNestedPathHandledWithoutPanic(t *testing.T) {
	root := t.TempDir()
	v, err := New([]string{root}, nil)
	require.NoError(t, err)
	canonicalRoot, err := safeCanonicalize(root)
	require.NoError(t, err)

	segments := make([]string, 500)
	for i := range segments {
		segments[i] = "d"
	}
	deep := filepath.Join(segments...)
	assert.NotPanics(t, func() {
		_, _ = v.ValidateWorkspacePath(deep, canonicalRoot)
	})
}

func TestMacosVarEquivalence(t *testing.T) {
	assert.True(t, isWithinWorkspace("/private/var/folders/x", "/var/folders"))
	assert.True(t, isWithinWorkspace("/var/folders/x", "/private/var/folders"))
	assert.False(t, isWithinWorkspace("/var/other/x", "/var/folders"))
}
