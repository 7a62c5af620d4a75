package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/arena-maps/internal/auth"
	"github.com/annel0/arena-maps/internal/catalog"
	"github.com/annel0/arena-maps/internal/eventbus"
	"github.com/annel0/arena-maps/internal/logging"
	"github.com/annel0/arena-maps/internal/mapdata"
	"github.com/annel0/arena-maps/internal/metrics"
	"github.com/annel0/arena-maps/internal/middleware"
	"github.com/annel0/arena-maps/internal/storage"
)

// RestServer представляет REST API сервиса карт
type RestServer struct {
	router      *gin.Engine
	repo        *mapdata.Repository[catalog.BlockState]
	lister      storage.Lister
	catalog     *catalog.Catalog
	bus         eventbus.EventBus
	issuer      *auth.Issuer
	credentials *auth.Credentials
	tokenTTL    time.Duration
	mapMetrics  *metrics.MapMetrics
	system      *systemProbe
	nodeID      string
	port        string
	loadTimeout time.Duration
	httpServer  *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port        string                                  // адрес, например ":8088"
	Repo        *mapdata.Repository[catalog.BlockState] // репозиторий карт
	Blobs       mapdata.BlobStore                       // хранилище; список карт, если реализует storage.Lister
	Catalog     *catalog.Catalog                        // каталог блоков, пополняется при генерации
	Bus         eventbus.EventBus                       // может быть nil
	Issuer      *auth.Issuer                            // проверка JWT для /api/admin
	Credentials *auth.Credentials                       // вход по паролю; nil запрещает /api/auth/login
	TokenTTL    time.Duration                           // по умолчанию 24ч
	Registry    *prometheus.Registry                    // nil - глобальный реестр
	MapMetrics  *metrics.MapMetrics
	Logger      *logging.Logger
	NodeID      string
	LoadTimeout time.Duration // по умолчанию 10с
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.LoadTimeout <= 0 {
		config.LoadTimeout = 10 * time.Second
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = 24 * time.Hour
	}

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if config.Registry != nil {
		reg, gatherer = config.Registry, config.Registry
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())
	router.Use(otelgin.Middleware("arena_maps_api"))

	promMw := middleware.NewPrometheusMiddleware("arena_maps_api", reg)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, gatherer)

	server := &RestServer{
		router:      router,
		repo:        config.Repo,
		catalog:     config.Catalog,
		bus:         config.Bus,
		issuer:      config.Issuer,
		credentials: config.Credentials,
		tokenTTL:    config.TokenTTL,
		mapMetrics:  config.MapMetrics,
		system:      newSystemProbe(),
		nodeID:      config.NodeID,
		port:        config.Port,
		loadTimeout: config.LoadTimeout,
	}
	if l, ok := config.Blobs.(storage.Lister); ok {
		server.lister = l
	}

	server.setupRoutes()
	return server
}

// Router возвращает gin.Engine, используется в тестах
func (rs *RestServer) Router() *gin.Engine { return rs.router }

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// Middleware для CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := rs.router.Group("/api")

	// Эндпоинт для аутентификации (без JWT защиты)
	api.POST("/auth/login", rs.handleLogin)

	{
		api.GET("/server", rs.handleServerInfo)
		api.GET("/themes", rs.handleThemes)
		api.GET("/maps", rs.handleListMaps)
		api.GET("/maps/:ns/:name", rs.handleMapSummary)
		api.GET("/maps/:ns/:name/regions", rs.handleMapRegions)
	}

	// Административные эндпоинты (только для админов)
	admin := api.Group("/admin")
	admin.Use(middleware.JWT(rs.issuer), middleware.RequireAdmin())
	{
		admin.POST("/maps/:ns/:name/generate", rs.handleGenerate)
		admin.POST("/maps/:ns/:name/preview", rs.handlePreview)
		admin.DELETE("/maps/:ns/:name", rs.handleDelete)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Start запускает HTTP сервер в отдельной горутине
func (rs *RestServer) Start() {
	rs.httpServer = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info("🌐 REST API запущен на %s", rs.port)
		if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка REST API сервера: %v", err)
		}
	}()
}

// Shutdown останавливает HTTP сервер
func (rs *RestServer) Shutdown(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	if err := rs.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("остановка REST API: %w", err)
	}
	return nil
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse представляет ответ на вход
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

// handleLogin обрабатывает запрос на вход
func (rs *RestServer) handleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, LoginResponse{Message: "Неверный формат запроса"})
		return
	}

	isAdmin, ok := rs.credentials.Authenticate(req.Username, req.Password)
	if !ok {
		logging.Warn("Неудачная попытка входа: %s (%s)", req.Username, c.ClientIP())
		c.JSON(http.StatusUnauthorized, LoginResponse{Message: "Неверное имя пользователя или пароль"})
		return
	}

	token, err := rs.issuer.Generate(req.Username, isAdmin, rs.tokenTTL)
	if err != nil {
		logging.Error("Ошибка генерации токена для %s: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, LoginResponse{Message: "Внутренняя ошибка сервера"})
		return
	}

	logging.Info("🔐 Вход: %s (admin=%v)", req.Username, isAdmin)
	c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		Token:   token,
		Message: "Вход выполнен",
		IsAdmin: isAdmin,
	})
}

// handleHealth проверка работоспособности
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"node_id":   rs.nodeID,
	})
}

// handleServerInfo возвращает состояние процесса
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    rs.system.Snapshot(),
	})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, GenericResponse{Success: false, Message: msg})
}
