package persist_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/config"
	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/persist"
	"github.com/l1jgo/gridworld/internal/persist/mocks"
)

func newTestWriter(t *testing.T) (*persist.Writer, *mocks.MockStore, *persist.Spool) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	spool, err := persist.OpenSpool(filepath.Join(t.TempDir(), "spool.db"))
	require.NoError(t, err)
	t.Cleanup(func() { spool.Close() })
	w := persist.NewWriter(store, spool, config.PersistConfig{QueueSize: 8, SaveTimeout: time.Second}, nil, zap.NewNop())
	return w, store, spool
}

// runWriter starts the worker and stops it when the test ends.
func runWriter(t *testing.T, w *persist.Writer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func next(t *testing.T, w *persist.Writer) persist.Completion {
	t.Helper()
	select {
	case c := <-w.Completions():
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no completion")
		return persist.Completion{}
	}
}

func TestWriterLoad(t *testing.T) {
	w, store, _ := newTestWriter(t)
	rec := &persist.Record{UserID: "u1", Name: "Alice"}
	store.EXPECT().Load(gomock.Any(), "u1").Return(rec, nil)
	store.EXPECT().Load(gomock.Any(), "u2").Return(nil, errors.NotFound("none"))
	store.EXPECT().Load(gomock.Any(), "u3").Return(nil, errors.Persistence(fmt.Errorf("down"), "load"))
	runWriter(t, w)

	require.True(t, w.Load("u1", 7))
	require.True(t, w.Load("u2", 8))
	require.True(t, w.Load("u3", 9))

	c := next(t, w)
	assert.Equal(t, persist.JobLoad, c.Kind)
	assert.Equal(t, uint64(7), c.Token)
	assert.Same(t, rec, c.Record)
	assert.NoError(t, c.Err)

	c = next(t, w)
	assert.Nil(t, c.Record, "a new user has no record")
	assert.NoError(t, c.Err)

	c = next(t, w)
	assert.Equal(t, "u3", c.UserID)
	assert.Error(t, c.Err)
}

func TestWriterLoadPrefersSpool(t *testing.T) {
	w, _, spool := newTestWriter(t)
	require.NoError(t, spool.Put(&persist.Record{UserID: "u1", Name: "Pending"}))
	runWriter(t, w)

	require.True(t, w.Load("u1", 1))
	c := next(t, w)
	require.NotNil(t, c.Record)
	assert.Equal(t, "Pending", c.Record.Name)
}

func TestWriterFailedSaveIsSpooledAndRetried(t *testing.T) {
	w, store, spool := newTestWriter(t)
	rec := &persist.Record{UserID: "u1", Name: "Alice"}

	store.EXPECT().Save(gomock.Any(), rec).Return(errors.Persistence(fmt.Errorf("down"), "save"))
	err := w.SaveNow(context.Background(), rec)
	require.Error(t, err)
	assert.Equal(t, 1, spool.Len())

	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.Persistence(fmt.Errorf("down"), "save"))
	assert.Zero(t, w.RetrySpool(context.Background()))
	assert.Equal(t, 1, spool.Len())

	store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, got *persist.Record) error {
		assert.Equal(t, "Alice", got.Name)
		return nil
	})
	assert.Equal(t, 1, w.RetrySpool(context.Background()))
	assert.Zero(t, spool.Len())
}

func TestWriterSaveCompletes(t *testing.T) {
	w, store, spool := newTestWriter(t)
	require.NoError(t, spool.Put(&persist.Record{UserID: "u1", Name: "Old"}))
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	runWriter(t, w)

	require.True(t, w.Save(&persist.Record{UserID: "u1", Name: "New"}, 3))
	c := next(t, w)
	assert.Equal(t, persist.JobSave, c.Kind)
	assert.Equal(t, uint64(3), c.Token)
	assert.NoError(t, c.Err)
	assert.Zero(t, spool.Len(), "successful save clears the older snapshot")
}

func TestWriterFullQueueSpools(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	spool, err := persist.OpenSpool(filepath.Join(t.TempDir(), "spool.db"))
	require.NoError(t, err)
	defer spool.Close()
	w := persist.NewWriter(store, spool, config.PersistConfig{QueueSize: 1}, nil, zap.NewNop())

	assert.True(t, w.Save(&persist.Record{UserID: "u1"}, 1))
	assert.False(t, w.Save(&persist.Record{UserID: "u2"}, 2))
	got, err := spool.Get("u2")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestWriterDrainsOnShutdown(t *testing.T) {
	w, store, _ := newTestWriter(t)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	store.EXPECT().SaveFaction(gomock.Any(), persist.FactionRecord{ID: "f1"}).Return(nil)
	store.EXPECT().DeleteFaction(gomock.Any(), "f0").Return(nil)

	require.True(t, w.Save(&persist.Record{UserID: "u1"}, 1))
	require.True(t, w.Save(&persist.Record{UserID: "u2"}, 2))
	require.True(t, w.SaveFaction(persist.FactionRecord{ID: "f1"}))
	require.True(t, w.DeleteFaction("f0"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
}
