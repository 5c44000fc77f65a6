package catalog_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/andreyvit/clrmeta"
	"github.com/andreyvit/clrmeta/catalog"
	"github.com/andreyvit/clrmeta/internal/mdtest"
)

func openCatalog(t *testing.T) (*catalog.Catalog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	cat, err := catalog.Open(path, catalog.Options{IsTesting: true})
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat, path
}

func TestIndex_Lookup(t *testing.T) {
	cat, _ := openCatalog(t)
	src, err := cat.Index(mdtest.OpenSample(t, clrmeta.Options{}), "sample.winmd")
	require.NoError(t, err)
	assert.Equal(t, "Sample.winmd", src.Module)
	assert.Equal(t, mdtest.SampleMvid, src.Mvid)
	assert.Equal(t, 4, src.Types)
	assert.Equal(t, 1, src.Enums)
	assert.WithinDuration(t, time.Now(), src.IndexedAt, time.Minute)

	e, err := cat.Lookup("Sample", "Widget")
	require.NoError(t, err)
	assert.Equal(t, "Sample.Widget", e.FullName())
	assert.Equal(t, "sample.winmd", e.Source)
	assert.Equal(t, mdtest.Widget, e.Row)
	assert.Equal(t, uint32(0x02000002), e.Token())
	assert.Equal(t, "System.Object", e.Extends)
	assert.True(t, e.Flags.IsPublic())
	assert.False(t, e.IsEnum)

	kind, err := cat.Lookup("Sample", "Kind")
	require.NoError(t, err)
	assert.True(t, kind.IsEnum)
	assert.Equal(t, "System.Enum", kind.Extends)

	_, err = cat.Lookup("", "Inner")
	assert.ErrorIs(t, err, clrmeta.ErrNotFound)
	_, err = cat.Lookup("", "<Module>")
	assert.ErrorIs(t, err, clrmeta.ErrNotFound)
}

func TestTypesAndNamespaces(t *testing.T) {
	cat, _ := openCatalog(t)
	_, err := cat.Index(mdtest.OpenSample(t, clrmeta.Options{}), "sample.winmd")
	require.NoError(t, err)
	_, err = cat.Index(mdtest.External().Open(t, clrmeta.Options{}), "external.winmd")
	require.NoError(t, err)

	types, err := cat.Types("Sample")
	require.NoError(t, err)
	var names []string
	for _, e := range types {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Empty", "InfoAttribute", "Kind", "Widget"}, names)

	types, err = cat.Types("Nope")
	require.NoError(t, err)
	assert.Empty(t, types)

	namespaces, err := cat.Namespaces()
	require.NoError(t, err)
	assert.Equal(t, []string{"External", "Sample"}, namespaces)

	sources, err := cat.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "external.winmd", sources[0].Path)
	assert.Equal(t, "sample.winmd", sources[1].Path)
	assert.Equal(t, mdtest.ExternalMvid, sources[0].Mvid)
}

func TestResolveEnum(t *testing.T) {
	cat, _ := openCatalog(t)
	_, err := cat.Index(mdtest.External().Open(t, clrmeta.Options{}), "external.winmd")
	require.NoError(t, err)

	info, err := cat.ResolveEnum("External", "Color")
	require.NoError(t, err)
	assert.Equal(t, mdtest.ColorEnum, info)

	_, err = cat.ResolveEnum("External", "PaintAttribute")
	assert.ErrorIs(t, err, clrmeta.ErrNotFound)
}

func TestResolveEnum_AcrossImages(t *testing.T) {
	cat, _ := openCatalog(t)
	_, err := cat.Index(mdtest.External().Open(t, clrmeta.Options{}), "external.winmd")
	require.NoError(t, err)

	db := mdtest.OpenSample(t, clrmeta.Options{Resolver: cat})
	row, err := db.Row(clrmeta.TableTypeDef, mdtest.Empty)
	require.NoError(t, err)
	cas := clrmeta.TypeDef{Row: row}.CustomAttributes()
	require.Equal(t, 1, cas.Len())

	sig, err := cas.At(0).Value()
	require.NoError(t, err)
	e := sig.FixedArgs[0].Elems[0]
	assert.Equal(t, clrmeta.ElementEnum, e.Type)
	assert.Equal(t, "Blue", e.Enum.String())
	assert.Equal(t, "External.Color", e.Enum.Type.FullName())
}

func TestIndex_Replace(t *testing.T) {
	cat, _ := openCatalog(t)
	_, err := cat.Index(mdtest.OpenSample(t, clrmeta.Options{}), "a.winmd")
	require.NoError(t, err)
	_, err = cat.Index(mdtest.External().Open(t, clrmeta.Options{}), "a.winmd")
	require.NoError(t, err)

	_, err = cat.Lookup("Sample", "Widget")
	assert.ErrorIs(t, err, clrmeta.ErrNotFound)
	_, err = cat.ResolveEnum("Sample", "Kind")
	assert.ErrorIs(t, err, clrmeta.ErrNotFound)
	e, err := cat.Lookup("External", "Color")
	require.NoError(t, err)
	assert.Equal(t, "a.winmd", e.Source)

	sources, err := cat.Sources()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "External.winmd", sources[0].Module)
}

func TestIndex_SameTypeTwoSources(t *testing.T) {
	cat, _ := openCatalog(t)
	_, err := cat.Index(mdtest.External().Open(t, clrmeta.Options{}), "old.winmd")
	require.NoError(t, err)
	_, err = cat.Index(mdtest.External().Open(t, clrmeta.Options{}), "new.winmd")
	require.NoError(t, err)

	require.NoError(t, cat.Remove("old.winmd"))
	e, err := cat.Lookup("External", "Color")
	require.NoError(t, err)
	assert.Equal(t, "new.winmd", e.Source)

	require.NoError(t, cat.Remove("new.winmd"))
	_, err = cat.Lookup("External", "Color")
	assert.ErrorIs(t, err, clrmeta.ErrNotFound)

	assert.ErrorIs(t, cat.Remove("new.winmd"), clrmeta.ErrNotFound)
}

func TestOpen_Persistence(t *testing.T) {
	cat, path := openCatalog(t)
	_, err := cat.Index(mdtest.OpenSample(t, clrmeta.Options{}), "sample.winmd")
	require.NoError(t, err)
	require.NoError(t, cat.Close())

	ro, err := catalog.Open(path, catalog.Options{IsTesting: true, ReadOnly: true})
	require.NoError(t, err)
	defer ro.Close()
	e, err := ro.Lookup("Sample", "Kind")
	require.NoError(t, err)
	assert.True(t, e.IsEnum)
}

func TestOpen_FormatVersion(t *testing.T) {
	cat, path := openCatalog(t)
	err := cat.Bolt().Update(func(btx *bbolt.Tx) error {
		return btx.Bucket([]byte("meta")).Put([]byte("version"), []byte{0x02})
	})
	require.NoError(t, err)
	require.NoError(t, cat.Close())

	_, err = catalog.Open(path, catalog.Options{IsTesting: true})
	assert.ErrorIs(t, err, catalog.ErrFormat)
}
