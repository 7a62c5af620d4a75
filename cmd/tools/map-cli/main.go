package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/annel0/arena-maps/internal/arena"
	"github.com/annel0/arena-maps/internal/auth"
	"github.com/annel0/arena-maps/internal/catalog"
	"github.com/annel0/arena-maps/internal/logging"
	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/mapgen"
	"github.com/annel0/arena-maps/internal/materialize"
	"github.com/annel0/arena-maps/internal/storage"
	"github.com/annel0/arena-maps/internal/vec"
	"github.com/annel0/arena-maps/internal/workerpool"
)

func main() {
	var (
		root     = flag.String("root", "data/maps", "каталог с картами")
		command  = flag.String("cmd", "list", "Command: list, generate, inspect, regions, place, delete, hash-password")
		mapArg   = flag.String("map", "", "идентификатор карты namespace:path")
		teams    = flag.String("teams", "red,blue,green,yellow", "команды через запятую (generate)")
		theme    = flag.String("theme", "default", "тема (generate)")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "seed генератора (generate)")
		origin   = flag.String("origin", "0,0,0", "точка размещения x,y,z (place)")
		password = flag.String("password", "", "пароль (hash-password)")
		verbose  = flag.Bool("v", false, "подробный лог")
	)
	flag.Parse()

	logging.SetDefaultLevel(logging.WARN)
	if *verbose {
		logging.SetDefaultLevel(logging.DEBUG)
	}

	if *command == "hash-password" {
		if *password == "" {
			log.Fatalf("❌ -password обязателен")
		}
		hash, err := auth.HashPassword(*password)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		fmt.Println(hash)
		return
	}

	blobs, err := storage.NewFileBlobStore(*root)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer blobs.Close()

	pool := workerpool.New(1, 1)
	defer pool.Stop()

	codec := catalog.Default()
	repo := mapdata.NewRepository[catalog.BlockState](blobs, codec, pool, mapdata.RepositoryOptions{})
	ctx := context.Background()

	if *command == "list" {
		ids, err := blobs.List(ctx)
		if err != nil {
			log.Fatalf("❌ List failed: %v", err)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return
	}

	id, err := mapdata.ParseIdentifier(*mapArg)
	if err != nil {
		log.Fatalf("❌ -map: %v", err)
	}

	switch *command {
	case "generate":
		cfg := mapgen.DefaultConfig()
		cfg.Seed = *seed
		cfg.Theme = *theme
		cfg.Teams = parseStringList(*teams)
		store, err := mapgen.Generate(id, cfg)
		if err != nil {
			log.Fatalf("❌ Generate failed: %v", err)
		}
		mapgen.RegisterBlocks(codec, cfg)
		if err := repo.Save(ctx, store); err != nil {
			log.Fatalf("❌ Save failed: %v", err)
		}
		fmt.Printf("✅ %s: seed=%d theme=%s bounds=%s chunks=%d\n", id, cfg.Seed, cfg.Theme, store.Bounds(), store.ChunkCount())

	case "inspect":
		store := mustLoad(ctx, repo, id)
		fmt.Printf("Map:       %s\n", id)
		fmt.Printf("Bounds:    %s\n", store.Bounds())
		fmt.Printf("Chunks:    %d\n", store.ChunkCount())
		fmt.Printf("Auxiliary: %d\n", store.AuxiliaryCount())
		fmt.Printf("Regions:   %d\n", len(store.Regions()))
		for _, w := range store.Warnings() {
			fmt.Printf("⚠️  %v\n", w)
		}

	case "regions":
		store := mustLoad(ctx, repo, id)
		for _, r := range store.Regions() {
			meta := ""
			if len(r.Metadata) > 0 {
				raw, _ := json.Marshal(r.Metadata)
				meta = " " + string(raw)
			}
			fmt.Printf("%-24s %s%s\n", r.Name, r.Bounds, meta)
		}

	case "place":
		store := mustLoad(ctx, repo, id)
		at, err := parseVec(*origin)
		if err != nil {
			log.Fatalf("❌ -origin: %v", err)
		}
		world := arena.NewWorld("cli")
		handle, stats, err := materialize.ApplyWithStats(store, materialize.Opener[catalog.BlockState](arena.Placer{Map: id}), world, at, nil)
		if err != nil {
			log.Fatalf("❌ Place failed: %v", err)
		}
		inst := handle.(*arena.Instance)
		fmt.Printf("✅ %s placed at %s in %v: %d voxels (%d non-empty), %d chunks\n",
			id, at, stats.Duration, stats.Voxels, stats.NonEmpty, world.LoadedChunks())
		out, _ := json.MarshalIndent(teamRegions(inst), "", "  ")
		fmt.Println(string(out))

	case "delete":
		if err := repo.Delete(ctx, id); err != nil {
			log.Fatalf("❌ Delete failed: %v", err)
		}
		fmt.Printf("🗑️ %s deleted\n", id)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		flag.Usage()
		os.Exit(2)
	}
}

func mustLoad(ctx context.Context, repo *mapdata.Repository[catalog.BlockState], id mapdata.Identifier) *mapdata.Store[catalog.BlockState] {
	store, err := repo.Load(ctx, id).Await(ctx)
	if err != nil {
		log.Fatalf("❌ Load failed: %v", err)
	}
	return store
}

func teamRegions(inst *arena.Instance) []arena.TeamRegions {
	var out []arena.TeamRegions
	for _, team := range inst.Teams() {
		out = append(out, inst.TeamRegions(team))
	}
	return out
}

func parseVec(s string) (vec.Vec3, error) {
	var v vec.Vec3
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &v.X, &v.Y, &v.Z); err != nil {
		return vec.Vec3{}, fmt.Errorf("ожидалось x,y,z: %w", err)
	}
	return v, nil
}

func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
