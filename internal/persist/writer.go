package persist

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/gridworld/internal/config"
	"github.com/l1jgo/gridworld/internal/errors"
	"github.com/l1jgo/gridworld/internal/metrics"
)

// JobKind identifies what a Completion answers.
type JobKind int

const (
	JobLoad JobKind = iota + 1
	JobSave
	jobFactionSave
	jobFactionDelete
)

func (k JobKind) String() string {
	switch k {
	case JobLoad:
		return "load"
	case JobSave:
		return "save"
	case jobFactionSave:
		return "faction_save"
	case jobFactionDelete:
		return "faction_delete"
	}
	return "unknown"
}

// Completion reports a finished load or save back to the game loop.
// Token is the caller's correlation value, returned untouched.
type Completion struct {
	Kind   JobKind
	UserID string
	Token  uint64
	Record *Record // JobLoad only; nil when nothing is stored
	Err    error
}

type job struct {
	kind    JobKind
	userID  string
	token   uint64
	rec     *Record
	faction FactionRecord
}

// Writer runs storage calls off the game loop. A single worker goroutine
// executes jobs in submission order, so a load queued after a save of the
// same user observes that save.
type Writer struct {
	store      Store
	spool      *Spool // optional
	jobs       chan job
	done       chan Completion
	timeout    time.Duration
	retryEvery time.Duration
	metrics    *metrics.Metrics
	log        *zap.Logger
}

func NewWriter(store Store, spool *Spool, cfg config.PersistConfig, m *metrics.Metrics, log *zap.Logger) *Writer {
	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}
	timeout := cfg.SaveTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Writer{
		store:      store,
		spool:      spool,
		jobs:       make(chan job, size),
		done:       make(chan Completion, size),
		timeout:    timeout,
		retryEvery: cfg.RetryInterval,
		metrics:    m,
		log:        log,
	}
}

// Completions delivers finished load and save jobs. The game loop drains
// it every tick.
func (w *Writer) Completions() <-chan Completion {
	return w.done
}

// Load queues a read of userID. Returns false when the queue is full.
func (w *Writer) Load(userID string, token uint64) bool {
	return w.enqueue(job{kind: JobLoad, userID: userID, token: token})
}

// Save queues rec for writing. When the queue is full the snapshot goes
// straight to the spool and false is returned; no completion follows.
func (w *Writer) Save(rec *Record, token uint64) bool {
	if w.enqueue(job{kind: JobSave, userID: rec.UserID, token: token, rec: rec}) {
		return true
	}
	w.spoolRecord(rec)
	return false
}

func (w *Writer) SaveFaction(f FactionRecord) bool {
	return w.enqueue(job{kind: jobFactionSave, faction: f})
}

func (w *Writer) DeleteFaction(id string) bool {
	return w.enqueue(job{kind: jobFactionDelete, faction: FactionRecord{ID: id}})
}

func (w *Writer) enqueue(j job) bool {
	select {
	case w.jobs <- j:
		return true
	default:
		w.log.Warn("存檔佇列已滿", zap.Stringer("kind", j.kind), zap.String("user", j.userID))
		return false
	}
}

// Run executes jobs until ctx is cancelled, then drains what is already
// queued before returning. Spooled snapshots are retried every
// RetryInterval.
func (w *Writer) Run(ctx context.Context) error {
	var retry <-chan time.Time
	if w.spool != nil && w.retryEvery > 0 {
		t := time.NewTicker(w.retryEvery)
		defer t.Stop()
		retry = t.C
	}

	for {
		select {
		case j := <-w.jobs:
			if c := w.handle(j); c != nil {
				select {
				case w.done <- *c:
				case <-ctx.Done():
				}
			}
		case <-retry:
			w.RetrySpool(ctx)
		case <-ctx.Done():
			w.drain()
			return nil
		}
	}
}

// drain runs queued jobs after shutdown. Completions are delivered only
// if there is room; nobody may be reading any more.
func (w *Writer) drain() {
	for {
		select {
		case j := <-w.jobs:
			if c := w.handle(j); c != nil {
				select {
				case w.done <- *c:
				default:
				}
			}
		default:
			return
		}
	}
}

// handle runs one job. Storage calls are bounded by the save timeout only,
// so a job already taken off the queue finishes during shutdown.
func (w *Writer) handle(j job) *Completion {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	switch j.kind {
	case JobLoad:
		return w.load(ctx, j)
	case JobSave:
		err := w.SaveNow(ctx, j.rec)
		return &Completion{Kind: JobSave, UserID: j.userID, Token: j.token, Err: err}
	case jobFactionSave:
		if err := w.store.SaveFaction(ctx, j.faction); err != nil {
			w.metrics.PersistFailed(j.kind.String())
			w.log.Error("陣營存檔失敗", zap.String("faction", j.faction.ID), zap.Error(err))
		}
	case jobFactionDelete:
		if err := w.store.DeleteFaction(ctx, j.faction.ID); err != nil {
			w.metrics.PersistFailed(j.kind.String())
			w.log.Error("陣營刪除失敗", zap.String("faction", j.faction.ID), zap.Error(err))
		}
	}
	return nil
}

// load prefers a spooled snapshot: it is newer than anything the store
// holds.
func (w *Writer) load(ctx context.Context, j job) *Completion {
	c := &Completion{Kind: JobLoad, UserID: j.userID, Token: j.token}
	if w.spool != nil {
		rec, err := w.spool.Get(j.userID)
		if err != nil {
			w.log.Error("讀取暫存快照失敗", zap.String("user", j.userID), zap.Error(err))
		} else if rec != nil {
			c.Record = rec
			return c
		}
	}

	rec, err := w.store.Load(ctx, j.userID)
	switch {
	case err == nil:
		c.Record = rec
	case errors.IsNotFound(err):
	default:
		w.metrics.PersistFailed("load")
		w.log.Error("角色讀取失敗", zap.String("user", j.userID), zap.Error(err))
		c.Err = err
	}
	return c
}

// SaveNow writes rec synchronously. On failure the snapshot is spooled
// for retry and the error returned.
func (w *Writer) SaveNow(ctx context.Context, rec *Record) error {
	if err := w.store.Save(ctx, rec); err != nil {
		w.metrics.PersistFailed("save")
		w.log.Error("角色存檔失敗，寫入暫存", zap.String("user", rec.UserID), zap.Error(err))
		w.spoolRecord(rec)
		return err
	}
	if w.spool != nil {
		// A successful save supersedes any older pending snapshot.
		if err := w.spool.Delete(rec.UserID); err != nil {
			w.log.Warn("清除暫存快照失敗", zap.String("user", rec.UserID), zap.Error(err))
		}
	}
	return nil
}

func (w *Writer) spoolRecord(rec *Record) {
	if w.spool == nil {
		w.log.Error("無暫存可用，快照遺失", zap.String("user", rec.UserID))
		return
	}
	if err := w.spool.Put(rec); err != nil {
		w.log.Error("寫入暫存失敗，快照遺失", zap.String("user", rec.UserID), zap.Error(err))
	}
}

// RetrySpool re-saves pending snapshots. It stops at the first failure
// since the store is most likely still down. Returns the number saved.
func (w *Writer) RetrySpool(ctx context.Context) int {
	if w.spool == nil {
		return 0
	}
	pending, err := w.spool.All()
	if err != nil {
		w.log.Error("讀取暫存失敗", zap.Error(err))
		return 0
	}
	saved := 0
	for _, rec := range pending {
		sctx, cancel := context.WithTimeout(ctx, w.timeout)
		err := w.store.Save(sctx, rec)
		cancel()
		if err != nil {
			w.metrics.PersistFailed("retry")
			w.log.Warn("暫存重試失敗", zap.String("user", rec.UserID), zap.Error(err))
			break
		}
		if err := w.spool.Delete(rec.UserID); err != nil {
			w.log.Warn("清除暫存快照失敗", zap.String("user", rec.UserID), zap.Error(err))
		}
		saved++
	}
	if saved > 0 {
		w.log.Info("暫存快照已重新存檔", zap.Int("count", saved))
	}
	return saved
}
