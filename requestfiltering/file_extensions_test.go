package requestfiltering_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/reglet-config-sdk/configstore"
	"github.com/reglet-dev/reglet-config-sdk/configstore/memstore"
	"github.com/reglet-dev/reglet-config-sdk/configstore/yamlstore"
	"github.com/reglet-dev/reglet-config-sdk/feature"
	"github.com/reglet-dev/reglet-config-sdk/requestfiltering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCreator struct {
	item  requestfiltering.FileExtension
	ok    bool
	calls []feature.CreateRequest
}

func (s *stubCreator) Create(_ context.Context, req feature.CreateRequest) (requestfiltering.FileExtension, bool, error) {
	s.calls = append(s.calls, req)
	return s.item, s.ok, nil
}

type stubConfirmer struct {
	resp     feature.Response
	messages []string
}

func (s *stubConfirmer) Confirm(_ context.Context, _, message string) (feature.Response, error) {
	s.messages = append(s.messages, message)
	return s.resp, nil
}

const emptyDocument = `schemaVersion: 1.0.0
system.webServer:
  security:
    requestFiltering:
      fileExtensions: []
`

const seeded = `schemaVersion: 1.0.0
system.webServer:
  security:
    requestFiltering:
      fileExtensions:
        - fileExtension: .config
          allowed: false
`

func openStore(t *testing.T, content string) (*yamlstore.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "applicationHost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	s, err := yamlstore.Open(yamlstore.WithPath(path))
	require.NoError(t, err)
	return s, path
}

func storeExtensions(t *testing.T, path string) []requestfiltering.FileExtension {
	t.Helper()
	s, err := yamlstore.Open(yamlstore.WithPath(path))
	require.NoError(t, err)
	c, err := s.Collection(requestfiltering.SectionPath, requestfiltering.CollectionName)
	require.NoError(t, err)
	codec := requestfiltering.MustNewExtensionCodec()
	out := []requestfiltering.FileExtension{}
	for _, e := range c.Entries() {
		item, err := codec.FromEntry(e)
		require.NoError(t, err)
		out = append(out, item)
	}
	return out
}

func TestFileExtensionsFeature_Metadata(t *testing.T) {
	f := requestfiltering.NewFileExtensionsFeature(memstore.New(), nil)
	assert.Equal(t, "File Name Extensions", f.Name())
	assert.Equal(t, requestfiltering.HelpURL, f.HelpTopic())
}

func TestFileExtensionsFeature_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("A: empty collection", func(t *testing.T) {
		store, _ := openStore(t, emptyDocument)
		f := requestfiltering.NewFileExtensionsFeature(store, nil)

		require.NoError(t, f.Load(ctx))
		assert.Empty(t, f.Items())
		assert.Equal(t, []string{"Allow File Name Extension...", "Deny File Name Extension..."}, f.Actions().Labels())
	})

	t.Run("B: add allowed", func(t *testing.T) {
		store, path := openStore(t, emptyDocument)
		creator := &stubCreator{item: requestfiltering.FileExtension{Extension: ".config", Allowed: true}, ok: true}
		f := requestfiltering.NewFileExtensionsFeature(store, nil, feature.WithCreator[requestfiltering.FileExtension](creator))
		require.NoError(t, f.Load(ctx))

		require.NoError(t, f.Actions().Invoke(ctx, requestfiltering.ActionAddExtension))

		assert.Equal(t, []feature.CreateRequest{{Allowed: true}}, creator.calls)
		want := []requestfiltering.FileExtension{{Extension: ".config", Allowed: true}}
		assert.Equal(t, want, f.Items())
		assert.Equal(t, want, storeExtensions(t, path))
	})

	t.Run("C: add cancelled", func(t *testing.T) {
		store, path := openStore(t, emptyDocument)
		creator := &stubCreator{ok: false}
		f := requestfiltering.NewFileExtensionsFeature(store, nil, feature.WithCreator[requestfiltering.FileExtension](creator))
		require.NoError(t, f.Load(ctx))

		require.NoError(t, f.AddDenyExtension(ctx))

		assert.Equal(t, []feature.CreateRequest{{Allowed: false}}, creator.calls)
		assert.Empty(t, f.Items())
		assert.Empty(t, storeExtensions(t, path))
	})

	t.Run("D: remove declined", func(t *testing.T) {
		store, path := openStore(t, seeded)
		confirmer := &stubConfirmer{resp: feature.ResponseNo}
		f := requestfiltering.NewFileExtensionsFeature(store, nil, feature.WithConfirmer[requestfiltering.FileExtension](confirmer))
		require.NoError(t, f.Load(ctx))
		require.True(t, f.Select(".config"))

		require.NoError(t, f.Remove(ctx))

		assert.Equal(t, []string{requestfiltering.RemovePrompt}, confirmer.messages)
		assert.Len(t, f.Items(), 1)
		assert.Len(t, storeExtensions(t, path), 1)
	})

	t.Run("E: remove confirmed", func(t *testing.T) {
		store, path := openStore(t, seeded)
		confirmer := &stubConfirmer{resp: feature.ResponseYes}
		f := requestfiltering.NewFileExtensionsFeature(store, nil, feature.WithConfirmer[requestfiltering.FileExtension](confirmer))
		require.NoError(t, f.Load(ctx))
		require.True(t, f.SelectAt(0))

		labels := f.Actions().Labels()
		assert.Equal(t, []string{"Allow File Name Extension...", "Deny File Name Extension...", "-", "Remove"}, labels)

		require.NoError(t, f.Actions().Invoke(ctx, requestfiltering.ActionRemove))
		assert.Empty(t, f.Items())
		assert.Empty(t, storeExtensions(t, path))
	})

	t.Run("F: remove without selection", func(t *testing.T) {
		store, _ := openStore(t, seeded)
		confirmer := &stubConfirmer{resp: feature.ResponseYes}
		f := requestfiltering.NewFileExtensionsFeature(store, nil, feature.WithConfirmer[requestfiltering.FileExtension](confirmer))
		require.NoError(t, f.Load(ctx))

		err := f.Remove(ctx)
		assert.True(t, errors.Is(err, feature.ErrNothingSelected))
		assert.Empty(t, confirmer.messages)
	})
}

func TestFileExtensionsFeature_LoadMalformed(t *testing.T) {
	store := memstore.New()
	store.Seed(requestfiltering.SectionPath, requestfiltering.CollectionName,
		configstore.NewEntry(configstore.Attribute{Name: "fileExtension", Value: ".config"}),
		configstore.NewEntry(configstore.Attribute{Name: "allowed", Value: "sometimes"}),
	)
	f := requestfiltering.NewFileExtensionsFeature(store, nil)

	err := f.Load(context.Background())
	assert.ErrorIs(t, err, feature.ErrMalformedEntry)
	assert.Empty(t, f.Items())
}

func TestFileExtensionsFeature_SectionOutOfScope(t *testing.T) {
	scope, err := configstore.NewScope("system.applicationHost/**")
	require.NoError(t, err)
	store := memstore.New(memstore.WithScope(scope))
	store.Seed(requestfiltering.SectionPath, requestfiltering.CollectionName)

	f := requestfiltering.NewFileExtensionsFeature(store, nil)
	assert.ErrorIs(t, f.Load(context.Background()), feature.ErrSectionUnavailable)
}

func TestFileExtensionsFeature_MappingCollectionIsPreserved(t *testing.T) {
	const mapped = `system.webServer:
  security:
    requestFiltering:
      fileExtensions:
        allowUnlisted: true
        applyToWebDAV: false
`
	store, path := openStore(t, mapped)
	creator := &stubCreator{item: requestfiltering.FileExtension{Extension: ".x", Allowed: true}, ok: true}
	f := requestfiltering.NewFileExtensionsFeature(store, nil, feature.WithCreator[requestfiltering.FileExtension](creator))
	ctx := context.Background()

	err := f.Load(ctx)
	assert.ErrorIs(t, err, feature.ErrSectionUnavailable)
	assert.ErrorIs(t, err, configstore.ErrMalformedCollection)

	assert.ErrorIs(t, f.AddExtension(ctx), configstore.ErrMalformedCollection)
	assert.Empty(t, creator.calls, "nothing is collected for an unusable collection")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, mapped, string(data))
}
