package excluder

import (
	"context"
	"testing"

	"cleanview/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyRoot(t *testing.T) {
	_, err := New(context.Background(), "", Deps{State: &memState{}, Settings: newMemSettings(nil)})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestNew_StateLoadFailure(t *testing.T) {
	_, err := New(context.Background(), t.TempDir(), Deps{State: &memState{failLoad: true}, Settings: newMemSettings(nil)})
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "load state", se.Op)
	assert.ErrorIs(t, err, errInjected)
}

func TestNilExcluder_NotInitialized(t *testing.T) {
	var ex *Excluder
	ctx := context.Background()

	assert.ErrorIs(t, ex.Hide(ctx), ErrNotInitialized)
	assert.ErrorIs(t, ex.Show(ctx), ErrNotInitialized)
	assert.ErrorIs(t, ex.Refresh(ctx), ErrNotInitialized)
	assert.ErrorIs(t, ex.Disable(ctx), ErrNotInitialized)
	_, err := ex.Toggle(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = ex.LoadPatterns(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.False(t, ex.IsHidingGitignored())
	assert.Nil(t, ex.GitignorePatterns())
	assert.Equal(t, types.Status{}, ex.Status())
	assert.False(t, ex.ShouldIgnore("a.log"))
}

func TestHide_Failures(t *testing.T) {
	tests := []struct {
		name   string
		inject func(f *fixture)
		op     string
	}{
		{"read", func(f *fixture) { f.settings.failRead = true }, "read exclusions"},
		{"write", func(f *fixture) { f.settings.failWrite = true }, "write exclusions"},
		{"save", func(f *fixture) { f.state.failSave = true }, "save state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, sampleIgnore, nil)
			tt.inject(f)

			err := f.ex.Hide(context.Background())
			var se *StoreError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.op, se.Op)
			assert.False(t, f.ex.IsHidingGitignored(), "失败时状态保持 Inactive")
			assert.True(t, f.state.record().IsZero())

			got, err := f.ex.Toggle(context.Background())
			assert.Error(t, err)
			assert.False(t, got)
		})
	}
}

func TestShow_Failures(t *testing.T) {
	tests := []struct {
		name   string
		inject func(f *fixture)
		op     string
	}{
		{"load", func(f *fixture) { f.state.failLoad = true }, "load state"},
		{"read", func(f *fixture) { f.settings.failRead = true }, "read exclusions"},
		{"write", func(f *fixture) { f.settings.failWrite = true }, "write exclusions"},
		{"clear", func(f *fixture) { f.state.failClear = true }, "clear state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := types.ExclusionMap{"**/.git": true}
			f := newFixture(t, sampleIgnore, original)
			ctx := context.Background()
			require.NoError(t, f.ex.Hide(ctx))

			tt.inject(f)
			err := f.ex.Show(ctx)
			var se *StoreError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.op, se.Op)
			assert.True(t, f.ex.IsHidingGitignored(), "失败时状态保持 Active")

			// 故障恢复后重试可以完整撤销
			f.settings.failRead, f.settings.failWrite = false, false
			f.state.failLoad, f.state.failClear = false, false
			require.NoError(t, f.ex.Show(ctx))
			assert.Equal(t, original, f.settings.snapshot())
			assert.True(t, f.state.record().IsZero())
		})
	}
}

func TestRefresh_FailureDuringHideLeavesInactive(t *testing.T) {
	f := newFixture(t, sampleIgnore, types.ExclusionMap{"a": true})
	ctx := context.Background()
	require.NoError(t, f.ex.Hide(ctx))

	f.state.failSave = true
	err := f.ex.Refresh(ctx)
	assert.Error(t, err)
	// show 已完成，hide 在持久化时失败：状态为 Inactive
	assert.False(t, f.ex.IsHidingGitignored())
	assert.Equal(t, 0, len(f.state.record().OwnedKeys))
}
