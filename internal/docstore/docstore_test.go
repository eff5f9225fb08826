package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewTestStore()

	_, err := store.Get(ctx, "diet_weeks", "rosy")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "diet_weeks", "rosy", []byte(`{"week":1}`)))

	data, err := store.Get(ctx, "diet_weeks", "rosy")
	require.NoError(t, err)
	assert.Equal(t, `{"week":1}`, string(data))

	// overwrite replaces the whole document
	require.NoError(t, store.Set(ctx, "diet_weeks", "rosy", []byte(`{"week":2}`)))
	data, err = store.Get(ctx, "diet_weeks", "rosy")
	require.NoError(t, err)
	assert.Equal(t, `{"week":2}`, string(data))

	require.NoError(t, store.Delete(ctx, "diet_weeks", "rosy"))
	_, err = store.Get(ctx, "diet_weeks", "rosy")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "diet_weeks", "rosy"), ErrNotFound)
}

func TestTestStore_List(t *testing.T) {
	ctx := context.Background()
	store := NewTestStore()

	require.NoError(t, store.Set(ctx, "settings", "rosy", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, "settings", "serj", []byte(`{}`)))
	require.NoError(t, store.Set(ctx, "users", "rosy", []byte(`{}`)))

	docs, err := store.List(ctx, "settings")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestTestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store := NewTestStore()

	events, cancel := store.Subscribe("diet_progress")
	defer cancel()

	require.NoError(t, store.Set(ctx, "diet_progress", "rosy", []byte(`{"v":1}`)))
	require.NoError(t, store.Set(ctx, "diet_progress", "rosy", []byte(`{"v":2}`)))
	require.NoError(t, store.Delete(ctx, "diet_progress", "rosy"))
	// other collections do not leak into this subscription
	require.NoError(t, store.Set(ctx, "settings", "rosy", []byte(`{}`)))

	ev := <-events
	assert.Equal(t, `{"v":1}`, string(ev.Data))
	ev = <-events
	assert.Equal(t, `{"v":2}`, string(ev.Data))
	ev = <-events
	assert.True(t, ev.Deleted)

	select {
	case ev = <-events:
		t.Fatalf("unexpected event: %+v", ev)
	default:
	}
}

func TestTestStore_SubscribeCancel(t *testing.T) {
	ctx := context.Background()
	store := NewTestStore()

	events, cancel := store.Subscribe("diet_progress")
	cancel()

	require.NoError(t, store.Set(ctx, "diet_progress", "rosy", []byte(`{}`)))

	_, open := <-events
	assert.False(t, open)
}
