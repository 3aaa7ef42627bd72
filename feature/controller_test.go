package feature_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/reglet-dev/reglet-config-sdk/configstore"
	"github.com/reglet-dev/reglet-config-sdk/configstore/memstore"
	"github.com/reglet-dev/reglet-config-sdk/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	section    = "system.webServer/security/requestFiltering"
	collection = "fileExtensions"
	prompt     = "Are you sure that you want to remove the selected file extension?"
)

type rule struct {
	Extension string
	Allowed   bool
}

type ruleCodec struct{}

func (ruleCodec) FromEntry(e configstore.Entry) (rule, error) {
	ext, ok := e.Get("fileExtension")
	if !ok {
		return rule{}, errors.New("missing fileExtension")
	}
	allowed, ok := e.Get("allowed")
	if !ok {
		return rule{}, errors.New("missing allowed")
	}
	return rule{Extension: ext.(string), Allowed: allowed.(bool)}, nil
}

func (ruleCodec) ToEntry(r rule) configstore.Entry {
	return configstore.NewEntry(
		configstore.Attribute{Name: "fileExtension", Value: r.Extension},
		configstore.Attribute{Name: "allowed", Value: r.Allowed},
	)
}

func (ruleCodec) Key(r rule) string { return r.Extension }

// MockCreator implements feature.Creator
type MockCreator struct {
	mock.Mock
}

func (m *MockCreator) Create(ctx context.Context, req feature.CreateRequest) (rule, bool, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(rule), args.Bool(1), args.Error(2)
}

// MockConfirmer implements feature.Confirmer
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) Confirm(ctx context.Context, title, message string) (feature.Response, error) {
	args := m.Called(ctx, title, message)
	return args.Get(0).(feature.Response), args.Error(1)
}

// MockHelp implements feature.HelpLauncher
type MockHelp struct {
	mock.Mock
}

func (m *MockHelp) Open(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type fixture struct {
	store     *memstore.Store
	creator   *MockCreator
	confirmer *MockConfirmer
	help      *MockHelp
	ctrl      *feature.Controller[rule]
}

func definition() feature.Definition[rule] {
	return feature.Definition[rule]{
		Name:           "File Name Extensions",
		HelpTopic:      "http://go.microsoft.com/fwlink/?LinkId=210526",
		SectionPath:    section,
		CollectionName: collection,
		RemovePrompt:   prompt,
		Actions: []feature.ActionDef[rule]{
			{ID: "AddExtension", Label: "Allow File Name Extension...", Run: (*feature.Controller[rule]).AddAllowed},
			{ID: "AddDenyExtension", Label: "Deny File Name Extension...", Run: (*feature.Controller[rule]).AddDenied},
			{ID: "Remove", Label: "Remove", RequiresSelection: true, Run: (*feature.Controller[rule]).Remove},
		},
	}
}

func newFixture(t *testing.T, seed ...rule) *fixture {
	t.Helper()
	f := &fixture{
		store:     memstore.New(),
		creator:   new(MockCreator),
		confirmer: new(MockConfirmer),
		help:      new(MockHelp),
	}
	entries := make([]configstore.Entry, 0, len(seed))
	for _, r := range seed {
		entries = append(entries, ruleCodec{}.ToEntry(r))
	}
	f.store.Seed(section, collection, entries...)
	f.ctrl = feature.New(definition(), f.store, feature.Codec[rule](ruleCodec{}),
		feature.WithCreator[rule](f.creator),
		feature.WithConfirmer[rule](f.confirmer),
		feature.WithHelpLauncher[rule](f.help),
		feature.WithLogger[rule](slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return f
}

func (f *fixture) storeRules(t *testing.T) []rule {
	t.Helper()
	c, err := f.store.Collection(section, collection)
	require.NoError(t, err)
	out := []rule{}
	for _, e := range c.Entries() {
		r, err := ruleCodec{}.FromEntry(e)
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestController_Load(t *testing.T) {
	t.Parallel()

	t.Run("empty collection", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.ctrl.Load(context.Background()))
		assert.Empty(t, f.ctrl.Items())
		assert.Equal(t, []string{"Allow File Name Extension...", "Deny File Name Extension..."}, f.ctrl.Actions().Labels())
	})

	t.Run("mirrors store order", func(t *testing.T) {
		seed := []rule{{".config", false}, {".html", true}, {".config", true}}
		f := newFixture(t, seed...)
		require.NoError(t, f.ctrl.Load(context.Background()))
		assert.Equal(t, seed, f.ctrl.Items(), "duplicates are surfaced, not merged")
	})

	t.Run("section unavailable", func(t *testing.T) {
		ctrl := feature.New(definition(), memstore.New(), feature.Codec[rule](ruleCodec{}))
		err := ctrl.Load(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, feature.ErrSectionUnavailable)
		assert.ErrorIs(t, err, configstore.ErrNotFound)
		assert.Empty(t, ctrl.Items())
	})

	t.Run("malformed entry aborts the whole load", func(t *testing.T) {
		f := newFixture(t, rule{".config", false})
		require.NoError(t, f.ctrl.Load(context.Background()))
		require.True(t, f.ctrl.Select(".config"))

		f.store.Seed(section, collection, configstore.NewEntry(configstore.Attribute{Name: "allowed", Value: true}))
		err := f.ctrl.Load(context.Background())

		var malformed *feature.MalformedEntryError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 1, malformed.Index)
		assert.ErrorIs(t, err, feature.ErrMalformedEntry)
		assert.Empty(t, f.ctrl.Items())
		_, selected := f.ctrl.Selected()
		assert.False(t, selected)
	})
}

func TestController_Add(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("appends to store and items", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.ctrl.Load(ctx))
		f.creator.On("Create", ctx, feature.CreateRequest{Allowed: true}).Return(rule{".config", true}, true, nil).Once()

		require.NoError(t, f.ctrl.Add(ctx, true))

		assert.Equal(t, []rule{{".config", true}}, f.ctrl.Items())
		assert.Equal(t, []rule{{".config", true}}, f.storeRules(t))
		f.creator.AssertExpectations(t)
	})

	t.Run("deny polarity reaches creator", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.ctrl.Load(ctx))
		f.creator.On("Create", ctx, feature.CreateRequest{Allowed: false}).Return(rule{".exe", false}, true, nil).Once()

		require.NoError(t, f.ctrl.AddDenied(ctx))
		assert.Equal(t, []rule{{".exe", false}}, f.ctrl.Items())
		f.creator.AssertExpectations(t)
	})

	t.Run("cancel is a no-op", func(t *testing.T) {
		f := newFixture(t, rule{".html", true})
		require.NoError(t, f.ctrl.Load(ctx))
		f.creator.On("Create", ctx, feature.CreateRequest{Allowed: true}).Return(rule{}, false, nil).Once()

		require.NoError(t, f.ctrl.Add(ctx, true))
		assert.Equal(t, []rule{{".html", true}}, f.ctrl.Items())
		assert.Equal(t, []rule{{".html", true}}, f.storeRules(t))
	})

	t.Run("persist failure leaves items unchanged", func(t *testing.T) {
		f := newFixture(t, rule{".html", true})
		require.NoError(t, f.ctrl.Load(ctx))
		f.creator.On("Create", ctx, feature.CreateRequest{Allowed: false}).Return(rule{".config", false}, true, nil).Once()
		f.store.FailNext(errors.New("read-only"))

		err := f.ctrl.Add(ctx, false)
		assert.ErrorIs(t, err, feature.ErrPersistFailed)
		assert.Equal(t, []rule{{".html", true}}, f.ctrl.Items())
		assert.Equal(t, []rule{{".html", true}}, f.storeRules(t))
	})

	t.Run("creator error is surfaced", func(t *testing.T) {
		f := newFixture(t)
		boom := errors.New("terminal closed")
		f.creator.On("Create", ctx, feature.CreateRequest{Allowed: true}).Return(rule{}, false, boom).Once()

		assert.ErrorIs(t, f.ctrl.Add(ctx, true), boom)
		assert.Empty(t, f.ctrl.Items())
	})

	t.Run("loads before the first add", func(t *testing.T) {
		f := newFixture(t, rule{".html", true})
		f.creator.On("Create", ctx, feature.CreateRequest{Allowed: true}).Return(rule{".css", true}, true, nil).Once()

		require.NoError(t, f.ctrl.Add(ctx, true))
		assert.Equal(t, []rule{{".html", true}, {".css", true}}, f.ctrl.Items())
	})

	t.Run("unavailable section does not prompt", func(t *testing.T) {
		creator := new(MockCreator)
		ctrl := feature.New(definition(), memstore.New(), feature.Codec[rule](ruleCodec{}), feature.WithCreator[rule](creator))

		assert.ErrorIs(t, ctrl.Add(ctx, true), feature.ErrSectionUnavailable)
		creator.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing creator", func(t *testing.T) {
		ctrl := feature.New(definition(), memstore.New(), feature.Codec[rule](ruleCodec{}))
		assert.ErrorIs(t, ctrl.Add(ctx, true), feature.ErrCollaboratorMissing)
	})
}

func TestController_Remove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("nothing selected", func(t *testing.T) {
		f := newFixture(t, rule{".config", false})
		require.NoError(t, f.ctrl.Load(ctx))

		assert.ErrorIs(t, f.ctrl.Remove(ctx), feature.ErrNothingSelected)
		f.confirmer.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything)
		assert.Len(t, f.ctrl.Items(), 1)
	})

	t.Run("declined", func(t *testing.T) {
		for _, resp := range []feature.Response{feature.ResponseNo, feature.ResponseCancel} {
			f := newFixture(t, rule{".config", false})
			require.NoError(t, f.ctrl.Load(ctx))
			require.True(t, f.ctrl.Select(".config"))
			f.confirmer.On("Confirm", ctx, "File Name Extensions", prompt).Return(resp, nil).Once()

			require.NoError(t, f.ctrl.Remove(ctx))
			assert.Equal(t, []rule{{".config", false}}, f.ctrl.Items(), resp.String())
			assert.Equal(t, []rule{{".config", false}}, f.storeRules(t), resp.String())
			f.confirmer.AssertExpectations(t)
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		f := newFixture(t, rule{".config", false})
		require.NoError(t, f.ctrl.Load(ctx))
		require.True(t, f.ctrl.Select(".config"))
		f.confirmer.On("Confirm", ctx, "File Name Extensions", prompt).Return(feature.ResponseYes, nil).Once()

		require.NoError(t, f.ctrl.Remove(ctx))
		assert.Empty(t, f.ctrl.Items())
		assert.Empty(t, f.storeRules(t))
		_, selected := f.ctrl.Selected()
		assert.False(t, selected)
	})

	t.Run("persist failure leaves items unchanged", func(t *testing.T) {
		f := newFixture(t, rule{".config", false}, rule{".html", true})
		require.NoError(t, f.ctrl.Load(ctx))
		require.True(t, f.ctrl.Select(".html"))
		f.confirmer.On("Confirm", ctx, "File Name Extensions", prompt).Return(feature.ResponseYes, nil).Once()
		f.store.FailNext(errors.New("locked"))

		err := f.ctrl.Remove(ctx)
		var persist *feature.PersistError
		require.ErrorAs(t, err, &persist)
		assert.Equal(t, ".html", persist.Key)
		assert.Len(t, f.ctrl.Items(), 2)
		assert.Len(t, f.storeRules(t), 2)
	})

	t.Run("removes the selected duplicate", func(t *testing.T) {
		f := newFixture(t, rule{".config", false}, rule{".config", true})
		require.NoError(t, f.ctrl.Load(ctx))
		require.True(t, f.ctrl.SelectAt(1))
		f.confirmer.On("Confirm", ctx, "File Name Extensions", prompt).Return(feature.ResponseYes, nil).Once()

		require.NoError(t, f.ctrl.Remove(ctx))
		assert.Equal(t, []rule{{".config", false}}, f.ctrl.Items())
		assert.Equal(t, []rule{{".config", false}}, f.storeRules(t))
	})

	t.Run("stale selection after reload", func(t *testing.T) {
		f := newFixture(t, rule{".config", false})
		require.NoError(t, f.ctrl.Load(ctx))
		require.True(t, f.ctrl.Select(".config"))

		c, err := f.store.Collection(section, collection)
		require.NoError(t, err)
		require.NoError(t, c.RemoveAt(0))
		require.NoError(t, f.ctrl.Load(ctx))

		assert.ErrorIs(t, f.ctrl.Remove(ctx), feature.ErrNothingSelected)
	})

	t.Run("confirmer error", func(t *testing.T) {
		f := newFixture(t, rule{".config", false})
		require.NoError(t, f.ctrl.Load(ctx))
		require.True(t, f.ctrl.SelectAt(0))
		f.confirmer.On("Confirm", ctx, "File Name Extensions", prompt).Return(feature.ResponseCancel, errors.New("no tty")).Once()

		assert.Error(t, f.ctrl.Remove(ctx))
		assert.Len(t, f.ctrl.Items(), 1)
	})
}

func TestController_Selection(t *testing.T) {
	f := newFixture(t, rule{".config", false})
	require.NoError(t, f.ctrl.Load(context.Background()))

	assert.False(t, f.ctrl.Select(".missing"))
	assert.False(t, f.ctrl.SelectAt(3))
	assert.True(t, f.ctrl.SelectAt(0))

	got, ok := f.ctrl.Selected()
	require.True(t, ok)
	assert.Equal(t, rule{".config", false}, got)

	f.ctrl.ClearSelection()
	_, ok = f.ctrl.Selected()
	assert.False(t, ok)
}

func TestController_Actions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, rule{".config", false})
	require.NoError(t, f.ctrl.Load(ctx))

	assert.Equal(t, 2, f.ctrl.Actions().Len())

	require.True(t, f.ctrl.Select(".config"))
	list := f.ctrl.Actions()
	assert.Equal(t, []string{"Allow File Name Extension...", "Deny File Name Extension...", "-", "Remove"}, list.Labels())
	assert.True(t, list.Actions()[2].Separator)

	f.confirmer.On("Confirm", ctx, "File Name Extensions", prompt).Return(feature.ResponseYes, nil).Once()
	require.NoError(t, list.Invoke(ctx, "Remove"))
	assert.Empty(t, f.ctrl.Items())

	// Recomputed per request: the selection is gone.
	assert.Equal(t, 2, f.ctrl.Actions().Len())

	assert.ErrorIs(t, f.ctrl.Actions().Invoke(ctx, "Remove"), feature.ErrUnknownAction)
	assert.ErrorIs(t, f.ctrl.Actions().Invoke(ctx, ""), feature.ErrUnknownAction)
}

func TestController_ShowHelp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.help.On("Open", ctx, "http://go.microsoft.com/fwlink/?LinkId=210526").Return(nil).Once()
	assert.True(t, f.ctrl.ShowHelp(ctx))

	f.help.On("Open", ctx, "http://go.microsoft.com/fwlink/?LinkId=210526").Return(errors.New("no opener")).Once()
	assert.False(t, f.ctrl.ShowHelp(ctx))
	f.help.AssertExpectations(t)

	bare := feature.New(definition(), f.store, feature.Codec[rule](ruleCodec{}))
	assert.False(t, bare.ShowHelp(ctx))
	assert.Equal(t, "File Name Extensions", bare.Name())
	assert.Equal(t, "http://go.microsoft.com/fwlink/?LinkId=210526", bare.HelpTopic())
}
