package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/annel0/arena-maps/internal/arena"
	"github.com/annel0/arena-maps/internal/catalog"
	"github.com/annel0/arena-maps/internal/eventbus"
	"github.com/annel0/arena-maps/internal/logging"
	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/mapgen"
	"github.com/annel0/arena-maps/internal/materialize"
	"github.com/annel0/arena-maps/internal/vec"
)

// BoundsDTO границы в JSON
type BoundsDTO struct {
	Min [3]int `json:"min"`
	Max [3]int `json:"max"`
}

func boundsDTO(b vec.Bounds) BoundsDTO {
	return BoundsDTO{
		Min: [3]int{b.Min.X, b.Min.Y, b.Min.Z},
		Max: [3]int{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// RegionDTO регион карты в JSON
type RegionDTO struct {
	Name     string            `json:"name"`
	Bounds   BoundsDTO         `json:"bounds"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MapSummary краткое описание загруженной карты
type MapSummary struct {
	ID        string    `json:"id"`
	Bounds    BoundsDTO `json:"bounds"`
	Chunks    int       `json:"chunks"`
	Auxiliary int       `json:"auxiliary"`
	Regions   []string  `json:"regions"`
	Warnings  []string  `json:"warnings,omitempty"`
}

// PreviewRequest тело запроса предпросмотра
type PreviewRequest struct {
	Origin [3]int `json:"origin"`
}

// PreviewResult итог размещения карты в пустом мире
type PreviewResult struct {
	InstanceID   string              `json:"instance_id"`
	Bounds       BoundsDTO           `json:"bounds"`
	Voxels       int                 `json:"voxels"`
	NonEmpty     int                 `json:"non_empty"`
	Auxiliary    int                 `json:"auxiliary"`
	Regions      int                 `json:"regions"`
	LoadedChunks int                 `json:"loaded_chunks"`
	DurationMS   int64               `json:"duration_ms"`
	Teams        []arena.TeamRegions `json:"teams"`
}

func mapID(c *gin.Context) (mapdata.Identifier, bool) {
	id, err := mapdata.NewIdentifier(c.Param("ns"), c.Param("name"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return mapdata.Identifier{}, false
	}
	return id, true
}

// statusOf сопоставляет ошибки репозитория с HTTP кодами
func statusOf(err error) int {
	var fe *mapdata.FormatError
	switch {
	case errors.Is(err, mapdata.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (rs *RestServer) load(c *gin.Context, id mapdata.Identifier) (*mapdata.Store[catalog.BlockState], bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), rs.loadTimeout)
	defer cancel()

	store, err := rs.repo.Load(ctx, id).Await(ctx)
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			logging.Error("Ошибка загрузки карты %s: %v", id, err)
		}
		respondError(c, status, err.Error())
		return nil, false
	}
	return store, true
}

// handleThemes список тем генератора
func (rs *RestServer) handleThemes(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Темы", Data: mapgen.ThemeNames()})
}

// handleListMaps список сохранённых карт
func (rs *RestServer) handleListMaps(c *gin.Context) {
	if rs.lister == nil {
		respondError(c, http.StatusNotImplemented, "Хранилище не поддерживает список карт")
		return
	}
	ids, err := rs.lister.List(c.Request.Context())
	if err != nil {
		logging.Error("Ошибка получения списка карт: %v", err)
		respondError(c, http.StatusInternalServerError, "Не удалось получить список карт")
		return
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: fmt.Sprintf("Найдено карт: %d", len(out)), Data: out})
}

// handleMapSummary загружает карту и возвращает её описание
func (rs *RestServer) handleMapSummary(c *gin.Context) {
	id, ok := mapID(c)
	if !ok {
		return
	}
	store, ok := rs.load(c, id)
	if !ok {
		return
	}

	names := make(map[string]struct{})
	for _, r := range store.Regions() {
		names[r.Name] = struct{}{}
	}
	summary := MapSummary{
		ID:        id.String(),
		Bounds:    boundsDTO(store.Bounds()),
		Chunks:    store.ChunkCount(),
		Auxiliary: store.AuxiliaryCount(),
		Regions:   make([]string, 0, len(names)),
	}
	for n := range names {
		summary.Regions = append(summary.Regions, n)
	}
	sort.Strings(summary.Regions)
	for _, w := range store.Warnings() {
		summary.Warnings = append(summary.Warnings, w.Error())
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Карта загружена", Data: summary})
}

// handleMapRegions регионы карты в порядке хранения
func (rs *RestServer) handleMapRegions(c *gin.Context) {
	id, ok := mapID(c)
	if !ok {
		return
	}
	store, ok := rs.load(c, id)
	if !ok {
		return
	}

	regions := store.Regions()
	out := make([]RegionDTO, 0, len(regions))
	for _, r := range regions {
		out = append(out, RegionDTO{Name: r.Name, Bounds: boundsDTO(r.Bounds), Metadata: r.Metadata})
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Регионы карты", Data: out})
}

// handleGenerate строит арену и сохраняет её под указанным идентификатором.
// Пустое тело означает конфигурацию по умолчанию.
func (rs *RestServer) handleGenerate(c *gin.Context) {
	id, ok := mapID(c)
	if !ok {
		return
	}

	cfg := mapgen.DefaultConfig()
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&cfg); err != nil {
			respondError(c, http.StatusBadRequest, "Неверный формат запроса")
			return
		}
	}

	store, err := mapgen.Generate(id, cfg)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if rs.catalog != nil {
		mapgen.RegisterBlocks(rs.catalog, cfg)
	}

	if err := rs.repo.Save(c.Request.Context(), store); err != nil {
		respondError(c, statusOf(err), err.Error())
		return
	}

	if err := eventbus.PublishMapEvent(c.Request.Context(), rs.bus, eventbus.MapGenerated, rs.nodeID, eventbus.MapEvent{
		Namespace: id.Namespace,
		Path:      id.Path,
		Chunks:    store.ChunkCount(),
	}); err != nil {
		logging.Warn("Не удалось опубликовать %s для %s: %v", eventbus.MapGenerated, id, err)
	}

	c.JSON(http.StatusCreated, GenericResponse{
		Success: true,
		Message: fmt.Sprintf("Карта %s сгенерирована", id),
		Data: gin.H{
			"id":     id.String(),
			"bounds": boundsDTO(store.Bounds()),
			"chunks": store.ChunkCount(),
			"teams":  cfg.Teams,
			"theme":  cfg.Theme,
			"seed":   cfg.Seed,
		},
	})
}

// handlePreview размещает карту в новом мире и возвращает статистику и регионы команд
func (rs *RestServer) handlePreview(c *gin.Context) {
	id, ok := mapID(c)
	if !ok {
		return
	}

	var req PreviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "Неверный формат запроса")
			return
		}
	}

	store, ok := rs.load(c, id)
	if !ok {
		return
	}

	world := arena.NewWorld("preview:" + id.String())
	origin := vec.New3(req.Origin[0], req.Origin[1], req.Origin[2])
	handle, stats, err := materialize.ApplyWithStats(store, materialize.Opener[catalog.BlockState](arena.Placer{Map: id}), world, origin, rs.mapMetrics)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	inst := handle.(*arena.Instance)

	result := PreviewResult{
		InstanceID:   inst.ID.String(),
		Bounds:       boundsDTO(inst.Bounds),
		Voxels:       stats.Voxels,
		NonEmpty:     stats.NonEmpty,
		Auxiliary:    stats.Auxiliary,
		Regions:      stats.Regions,
		LoadedChunks: world.LoadedChunks(),
		DurationMS:   stats.Duration.Milliseconds(),
		Teams:        []arena.TeamRegions{},
	}
	for _, team := range inst.Teams() {
		result.Teams = append(result.Teams, inst.TeamRegions(team))
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Предпросмотр построен", Data: result})
}

// handleDelete удаляет карту
func (rs *RestServer) handleDelete(c *gin.Context) {
	id, ok := mapID(c)
	if !ok {
		return
	}
	if err := rs.repo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, statusOf(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: fmt.Sprintf("Карта %s удалена", id)})
}
