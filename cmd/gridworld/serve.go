package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/l1jgo/gridworld/internal/auth"
	"github.com/l1jgo/gridworld/internal/combat"
	"github.com/l1jgo/gridworld/internal/config"
	"github.com/l1jgo/gridworld/internal/core/event"
	coresys "github.com/l1jgo/gridworld/internal/core/system"
	"github.com/l1jgo/gridworld/internal/data"
	"github.com/l1jgo/gridworld/internal/handler"
	"github.com/l1jgo/gridworld/internal/metrics"
	gonet "github.com/l1jgo/gridworld/internal/net"
	"github.com/l1jgo/gridworld/internal/persist"
	"github.com/l1jgo/gridworld/internal/scripting"
	"github.com/l1jgo/gridworld/internal/system"
	"github.com/l1jgo/gridworld/internal/world"
)

type tables struct {
	items *data.ItemTable
	maps  *data.MapTable
	npcs  *data.NpcTable
	drops *data.DropTable
}

func loadTables(dir string) (*tables, error) {
	printSection("資料載入")
	var (
		t   tables
		err error
	)
	if t.items, err = data.LoadItemTable(filepath.Join(dir, "items.yaml")); err != nil {
		return nil, fmt.Errorf("load item table: %w", err)
	}
	printStat("道具模板", t.items.Count())

	if t.maps, err = data.LoadMapTable(filepath.Join(dir, "maps.yaml")); err != nil {
		return nil, fmt.Errorf("load map table: %w", err)
	}
	printStat("地圖資料", t.maps.Count())

	if t.npcs, err = data.LoadNpcTable(filepath.Join(dir, "npcs.yaml")); err != nil {
		return nil, fmt.Errorf("load npc table: %w", err)
	}
	printStat("NPC 模板", t.npcs.Count())

	if t.drops, err = data.LoadDropTable(filepath.Join(dir, "drops.yaml")); err != nil {
		return nil, fmt.Errorf("load drop table: %w", err)
	}
	printStat("掉寶表", t.drops.Count())
	return &t, nil
}

// openStore connects the configured backend. Postgres is migrated on
// connect.
func openStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (persist.Store, error) {
	switch cfg.Driver {
	case "", "postgres":
		db, err := persist.NewDB(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		printOK("PostgreSQL 連線成功")
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		printOK("資料庫遷移完成")
		return persist.NewPgStore(db), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		printOK("Redis 連線成功")
		rs, err := persist.NewRedisStore(client, cfg.RedisPrefix)
		if err != nil {
			client.Close()
			return nil, err
		}
		return rs, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

func loadFactions(ctx context.Context, ws *world.State, store persist.Store, log *zap.Logger) (int, error) {
	recs, err := store.LoadFactions(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range recs {
		if err := ws.Factions().Add(rec.Faction()); err != nil {
			log.Warn("略過重複的陣營", zap.String("faction", rec.Name), zap.Error(err))
			continue
		}
		n++
	}
	return n, nil
}

// ── Main server logic ─────────────────────────────────────────────

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.Addr)

	t, err := loadTables(cfg.Server.DataDir)
	if err != nil {
		return err
	}
	fmt.Println()

	// 1. Storage
	printSection("資料庫")
	bootCtx, cancelBoot := context.WithTimeout(ctx, 30*time.Second)
	defer cancelBoot()

	store, err := openStore(bootCtx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer store.Close()

	spool, err := persist.OpenSpool(cfg.Persist.SpoolPath)
	if err != nil {
		return fmt.Errorf("spool: %w", err)
	}
	defer spool.Close()
	printStat("待重送快照", spool.Len())

	m := metrics.New(time.Now())
	writer := persist.NewWriter(store, spool, cfg.Persist, m, log)

	// 2. World
	ws := world.NewState(t.maps)
	factionCount, err := loadFactions(bootCtx, ws, store, log)
	if err != nil {
		return fmt.Errorf("load factions: %w", err)
	}
	printStat("陣營", factionCount)

	npcCount, err := system.SpawnNPCs(ws, t.npcs, t.items, log)
	if err != nil {
		return fmt.Errorf("spawn npcs: %w", err)
	}
	printStat("NPC 生成", npcCount)
	fmt.Println()

	// 3. Scripting
	printSection("腳本")
	engine, err := scripting.NewEngine(cfg.Scripting.Dir, combat.DefaultFormulas{}, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	printOK("Lua 腳本載入完成")

	var watcher *scripting.Watcher
	if cfg.Scripting.Watch {
		if watcher, err = scripting.NewWatcher(cfg.Scripting.Dir, log); err != nil {
			return fmt.Errorf("script watcher: %w", err)
		}
		printOK("腳本熱重載已啟用")
	}
	fmt.Println()

	// 4. Systems
	bus := event.NewBus()
	runner := coresys.NewRunner()
	deps := &handler.Deps{
		Config: cfg,
		Log:    log,
		World:  ws,
		Items:  t.items,
		Combat: combat.NewResolver(ws, combat.Config{
			Formulas: engine,
			Items:    t.items,
			Drops:    t.drops,
			Bus:      bus,
			FistMin:  cfg.Game.FistDamageMin,
			FistMax:  cfg.Game.FistDamageMax,
		}),
		Now: runner.Now,
	}
	reg := handler.NewRegistry(log, m)
	handler.RegisterAll(reg, cfg.Game)

	netServer := gonet.NewServer(cfg.Network, cfg.RateLimit, auth.NewService(cfg.Auth), m, log)
	sessions := gonet.NewSessionStore()
	hub := gonet.NewHub(log)
	router := system.NewRouter(hub, sessions, ws)

	persistSys := system.NewPersistenceSystem(ws, writer, log, cfg.Persist.AutosaveTicks)
	runner.Register(system.NewInputSystem(netServer, sessions, hub, router, reg, deps, writer, bus, cfg.Network.MaxCommandsPerTick, log))
	runner.Register(system.NewEventsSystem(bus, ws, log))
	runner.Register(system.NewNpcAISystem(deps, t.npcs, engine, router))
	runner.Register(system.NewOutputSystem(sessions, ws, m))
	runner.Register(persistSys)
	if watcher != nil {
		runner.Register(system.NewScriptReloadSystem(engine, watcher.Changed(), log))
	}

	// 5. HTTP
	mux := http.NewServeMux()
	mux.Handle(cfg.Network.WSPath, netServer)
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, m.Handler())
	}
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// The writer outlives the game loop so the final saves can drain.
	writerCtx, stopWriter := context.WithCancel(context.Background())
	defer stopWriter()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return writer.Run(writerCtx) })
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}
	g.Go(func() error {
		defer stopWriter()
		gameLoop(gctx, cfg, runner, m)

		log.Info("收到關閉信號，開始存檔")
		netServer.Shutdown()
		saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		saved := persistSys.SaveAllPlayers(saveCtx)
		sessions.ForEach(func(sess *gonet.Session) { sess.Close() })
		log.Info("伺服器已停止", zap.Int("saved", saved))
		return nil
	})

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s%s", cfg.Server.Addr, cfg.Network.WSPath))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.Server.TickRate))
	fmt.Println()

	return g.Wait()
}

// gameLoop ticks the runner until ctx ends. Every world mutation happens
// on this goroutine.
func gameLoop(ctx context.Context, cfg *config.Config, runner *coresys.Runner, m *metrics.Metrics) {
	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			start := time.Now()
			runner.Tick(cfg.Server.TickRate)
			m.ObserveTick(time.Since(start))
		case <-ctx.Done():
			return
		}
	}
}
