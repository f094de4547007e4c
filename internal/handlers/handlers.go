package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/openmohaa/hiscores-dash/internal/catalog"
	"github.com/openmohaa/hiscores-dash/internal/hiscores"
	"github.com/openmohaa/hiscores-dash/internal/mapper"
	"github.com/openmohaa/hiscores-dash/internal/models"
	"github.com/openmohaa/hiscores-dash/internal/selection"
)

// MaxBodySize limits the size of request bodies to 64KB
const MaxBodySize = 65536

// RefreshQueue defines the interface for the background refresh pool
type RefreshQueue interface {
	QueueDepth() int
}

// Pinger is an optional dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Fetcher hiscores.Fetcher
	Mapper  *mapper.Mapper
	Catalog *catalog.Catalog
	Logger  *zap.Logger

	// Session is the template every new session controller is built from.
	// Fetcher, Mapper and Logger are filled in from the fields above.
	Session     selection.Config
	MaxSessions int

	DefaultPlayer string
	Players       []string
	Group         []models.GroupMember

	Queue RefreshQueue
	Cache Pinger
}

type Handler struct {
	fetcher   hiscores.Fetcher
	mapper    *mapper.Mapper
	catalog   *catalog.Catalog
	logger    *zap.SugaredLogger
	zl        *zap.Logger
	validator *validator.Validate

	sessionCfg selection.Config
	sessions   *sessionStore

	defaultPlayer string
	players       []string
	group         []models.GroupMember

	queue RefreshQueue
	cache Pinger
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Mapper == nil {
		cfg.Mapper = mapper.New(mapper.Options{Catalog: cfg.Catalog})
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1000
	}

	sessionCfg := cfg.Session
	sessionCfg.Fetcher = cfg.Fetcher
	sessionCfg.Mapper = cfg.Mapper
	sessionCfg.Logger = cfg.Logger.Named("session")

	players := cfg.Players
	if len(players) == 0 && cfg.DefaultPlayer != "" {
		players = []string{cfg.DefaultPlayer}
	}

	return &Handler{
		fetcher:       cfg.Fetcher,
		mapper:        cfg.Mapper,
		catalog:       cfg.Catalog,
		logger:        cfg.Logger.Sugar(),
		zl:            cfg.Logger,
		validator:     validator.New(),
		sessionCfg:    sessionCfg,
		sessions:      newSessionStore(cfg.MaxSessions),
		defaultPlayer: cfg.DefaultPlayer,
		players:       players,
		group:         cfg.Group,
		queue:         cfg.Queue,
		cache:         cfg.Cache,
	}
}

// Close stops every live session.
func (h *Handler) Close() {
	n := h.sessions.closeAll()
	h.logger.Infow("Sessions closed", "count", n)
}
