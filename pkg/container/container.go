package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"books-commons/internal/config"
	"books-commons/internal/infrastructure/bookmeta"
	infraCache "books-commons/internal/infrastructure/cache"
	"books-commons/internal/infrastructure/database"
	"books-commons/internal/infrastructure/identity"
	"books-commons/internal/infrastructure/queue"
	"books-commons/internal/infrastructure/storage"
	"books-commons/pkg/cache"
	pkgDatabase "books-commons/pkg/database"
	"books-commons/pkg/jwt"

	accountHandler "books-commons/internal/domains/account/handler"
	accountRepo "books-commons/internal/domains/account/repository"
	accountService "books-commons/internal/domains/account/service"
	catalogHandler "books-commons/internal/domains/catalog/handler"
	catalogRepo "books-commons/internal/domains/catalog/repository"
	catalogService "books-commons/internal/domains/catalog/service"
	loanHandler "books-commons/internal/domains/loan/handler"
	loanRepo "books-commons/internal/domains/loan/repository"
	loanService "books-commons/internal/domains/loan/service"
	notificationHandler "books-commons/internal/domains/notification/handler"
	notificationRepo "books-commons/internal/domains/notification/repository"
	notificationService "books-commons/internal/domains/notification/service"
	reviewHandler "books-commons/internal/domains/review/handler"
	reviewRepo "books-commons/internal/domains/review/repository"
	reviewService "books-commons/internal/domains/review/service"
	shelfHandler "books-commons/internal/domains/shelf/handler"
	shelfRepo "books-commons/internal/domains/shelf/repository"
	shelfService "books-commons/internal/domains/shelf/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application.
// cmd/api, cmd/worker và cmd/commonsctl dùng chung một container.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	Transactor  pkgDatabase.Transactor
	Metadata    *bookmeta.CachedProvider
	Storage     *storage.MinIOStorage // nil khi MINIO_ENABLED=false
	AsynqClient *queue.Client
	RedisOpt    asynq.RedisClientOpt

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================
	Identities       *identity.LocalProvider
	MemberRepo       accountRepo.MemberRepository
	InvitationRepo   accountRepo.InvitationRepository
	BookRepo         catalogRepo.Repository
	CopyRepo         shelfRepo.Repository
	LoanRepo         loanRepo.Repository
	NotificationRepo notificationRepo.Repository
	ReviewRepo       reviewRepo.Repository

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================
	AccountService      accountService.Service
	CatalogService      catalogService.Service
	ShelfService        shelfService.Service
	LoanService         loanService.Service
	NotificationService notificationService.Service
	ReviewService       reviewService.Service

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	AccountHandler      *accountHandler.AccountHandler
	CatalogHandler      *catalogHandler.CatalogHandler
	ShelfHandler        *shelfHandler.ShelfHandler
	LoanHandler         *loanHandler.LoanHandler
	NotificationHandler *notificationHandler.NotificationHandler
	ReviewHandler       *reviewHandler.ReviewHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer tạo và initialize toàn bộ dependency graph.
//
// Thứ tự initialization:
// 1. Config
// 2. Infrastructure (DB, Redis, JWT, metadata providers, storage, queue)
// 3. Repositories
// 4. Services
// 5. Handlers
func NewContainer() (*Container, error) {
	log.Info().Msg("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("env", cfg.App.Environment).Msg("✅ Config loaded")

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	c.Transactor = pkgDatabase.NewTransactor(db.Pool)
	log.Info().Msg("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE REDIS
	// ========================================
	// Redis chỉ dùng cho metadata cache và asynq -> lỗi không critical với API
	c.Redis = infraCache.NewRedisClient(cfg.Redis)
	if err := c.Redis.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("⚠️  Redis connection failed (non-critical)")
	} else {
		log.Info().Msg("✅ Redis connected")
	}
	c.Cache = cache.NewRedisCache(c.Redis.Client, "commons")
	c.RedisOpt = asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	c.AsynqClient = queue.NewClient(c.RedisOpt)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// ========================================
	// STEP 4: EXTERNAL METADATA + STORAGE
	// ========================================
	c.Metadata = bookmeta.NewCachedProvider(bookmeta.NewDefaultChain(cfg.Catalog), c.Cache, cfg.Catalog.CacheTTL, cfg.Catalog.NegativeCacheTTL)

	if cfg.MinIO.Enabled {
		s, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			// Không có MinIO thì giữ nguyên cover URL của provider
			log.Warn().Err(err).Msg("⚠️  MinIO unavailable, cover mirroring disabled")
		} else {
			c.Storage = s
			log.Info().Str("bucket", cfg.MinIO.Bucket).Msg("✅ MinIO connected")
		}
	}

	// ========================================
	// STEP 5: INITIALIZE REPOSITORIES
	// ========================================
	c.initRepositories()
	log.Info().Msg("✅ Repositories initialized")

	// ========================================
	// STEP 6: INITIALIZE SERVICES
	// ========================================
	c.initServices()
	log.Info().Msg("✅ Services initialized")

	// ========================================
	// STEP 7: INITIALIZE HANDLERS
	// ========================================
	c.initHandlers()
	log.Info().Msg("✅ Handlers initialized")

	log.Info().Msg("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.Identities = identity.NewLocalProvider(pool, c.Config.Auth.BcryptCost)
	c.MemberRepo = accountRepo.NewMemberRepository(pool)
	c.InvitationRepo = accountRepo.NewInvitationRepository(pool)
	c.BookRepo = catalogRepo.NewPostgresRepository(pool)
	c.CopyRepo = shelfRepo.NewPostgresRepository(pool)
	c.LoanRepo = loanRepo.NewPostgresRepository(pool)
	c.NotificationRepo = notificationRepo.NewPostgresRepository(pool)
	c.ReviewRepo = reviewRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	// ----------------------------------------
	// ACCOUNT SERVICE
	// ----------------------------------------
	c.AccountService = accountService.NewAccountService(
		c.Transactor,
		c.MemberRepo,
		c.InvitationRepo,
		c.Identities,
		c.JWTManager,
		c.Config.Auth.InviteRequired,
	)

	// ----------------------------------------
	// CATALOG SERVICE
	// ----------------------------------------
	// covers phải là nil interface (không phải *CoverMirror nil) khi MinIO tắt
	var covers catalogService.CoverMirror
	if c.Storage != nil {
		covers = storage.NewCoverMirror(c.Storage, storage.NewImageProcessor(), c.Config.Catalog.ProviderTimeout)
	}
	cc := c.Config.Catalog
	c.CatalogService = catalogService.NewCatalogService(
		c.BookRepo,
		c.CopyRepo,
		c.Metadata,
		c.AsynqClient,
		covers,
		catalogService.Options{
			ExternalTimeout: cc.ExternalTimeout,
			InternalLimit:   cc.InternalLimit,
			ResultLimit:     cc.ResultLimit,
			CollationLocale: cc.CollationLocale,
			SweepBatch:      cc.EnrichSweepBatch,
		},
	)

	c.ShelfService = shelfService.NewShelfService(c.Transactor, c.CopyRepo, c.LoanRepo)
	c.LoanService = loanService.NewLoanService(c.Transactor, c.LoanRepo, c.CopyRepo, c.NotificationRepo)
	c.NotificationService = notificationService.NewNotificationService(c.NotificationRepo)
	c.ReviewService = reviewService.NewReviewService(c.Transactor, c.ReviewRepo)
}

func (c *Container) initHandlers() {
	c.AccountHandler = accountHandler.NewAccountHandler(c.AccountService)
	c.CatalogHandler = catalogHandler.NewCatalogHandler(c.CatalogService)
	c.ShelfHandler = shelfHandler.NewShelfHandler(c.ShelfService)
	c.LoanHandler = loanHandler.NewLoanHandler(c.LoanService)
	c.NotificationHandler = notificationHandler.NewNotificationHandler(c.NotificationService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close asynq client")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("⚠️  Failed to close Redis")
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	log.Info().Msg("✅ Container cleanup completed")
}
