// Package leads wires the lead management feature: repository, duplicate
// detector, lifecycle service and HTTP handlers.
package leads

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mafiaidola/leads-manager-sub000/internal/audit"
	"github.com/mafiaidola/leads-manager-sub000/internal/events"
	apphttp "github.com/mafiaidola/leads-manager-sub000/internal/http"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/duplicate"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/handler"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/ports"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/repository"
	"github.com/mafiaidola/leads-manager-sub000/internal/leads/service"
	"github.com/mafiaidola/leads-manager-sub000/internal/settings"
	"github.com/mafiaidola/leads-manager-sub000/internal/users"
	"github.com/mafiaidola/leads-manager-sub000/platform/config"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
	"github.com/mafiaidola/leads-manager-sub000/platform/validator"
)

type Module struct {
	repo    *repository.Repository
	service *service.Service
	handler *handler.Handler
}

var _ apphttp.Module = (*Module)(nil)

func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, cfg config.PhoneConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	detector := duplicate.New(repo, cfg.GetDefaultPhoneRegion())
	auditor := audit.NewRecorder(audit.NewRepository(pool), log)
	svc := service.New(
		repo,
		detector,
		&userDirectory{repo: users.New(pool)},
		&statusVocabulary{repo: settings.New(pool)},
		auditor,
		bus,
		log,
		cfg.GetDefaultPhoneRegion(),
	)
	return &Module{
		repo:    repo,
		service: svc,
		handler: handler.New(svc, val, log),
	}
}

func (m *Module) Name() string { return "leads" }

// Service exposes the lifecycle engine to other composition roots.
func (m *Module) Service() *service.Service { return m.service }

// Repository exposes the persistence layer to worker-side wiring.
func (m *Module) Repository() *repository.Repository { return m.repo }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/leads")

	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.GET("/search", m.handler.Search)
	group.GET("/check-duplicate", m.handler.CheckDuplicatePhone)
	group.GET("/check-duplicate-lead", m.handler.CheckDuplicateLead)

	group.POST("/bulk/status", m.handler.BulkUpdateStatus)
	group.POST("/bulk/assign", m.handler.BulkAssign)
	group.POST("/bulk/delete", m.handler.BulkSoftDelete)

	group.GET("/:id", m.handler.Get)
	group.PATCH("/:id", m.handler.Update)
	group.PATCH("/:id/status", m.handler.UpdateStatus)
	group.POST("/:id/transfer", m.handler.Transfer)
	group.POST("/:id/star", m.handler.ToggleStar)
	group.DELETE("/:id", m.handler.Delete)
	group.POST("/:id/restore", m.handler.Restore)
	group.DELETE("/:id/permanent", m.handler.PermanentDelete)

	group.GET("/:id/timeline", m.handler.Timeline)
	group.GET("/:id/notes", m.handler.ListNotes)
	group.POST("/:id/notes", m.handler.AddNote)
	group.POST("/:id/actions", m.handler.AddAction)
}

// userDirectory adapts the users repository to the leads port.
type userDirectory struct {
	repo *users.Repository
}

func (d *userDirectory) GetUser(ctx context.Context, id uuid.UUID) (*ports.DirectoryUser, error) {
	user, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.DirectoryUser{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		Active: user.Active,
	}, nil
}

// statusVocabulary adapts the settings repository to the leads port.
type statusVocabulary struct {
	repo *settings.Repository
}

func (v *statusVocabulary) HasStatus(ctx context.Context, key string) (bool, error) {
	s, err := v.repo.Get(ctx)
	if err != nil {
		return false, err
	}
	return s.HasStatus(key), nil
}

func (v *statusVocabulary) DefaultStatus(ctx context.Context) (string, error) {
	s, err := v.repo.Get(ctx)
	if err != nil {
		return "", err
	}
	if len(s.Statuses) == 0 {
		return "New", nil
	}
	return s.Statuses[0], nil
}
