package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mafiaidola/leads-manager-sub000/internal/events"
	apphttp "github.com/mafiaidola/leads-manager-sub000/internal/http"
	"github.com/mafiaidola/leads-manager-sub000/internal/notification/inapp"
	"github.com/mafiaidola/leads-manager-sub000/internal/notification/outbox"
	"github.com/mafiaidola/leads-manager-sub000/internal/users"
	"github.com/mafiaidola/leads-manager-sub000/platform/apperr"
	"github.com/mafiaidola/leads-manager-sub000/platform/httpkit"
	"github.com/mafiaidola/leads-manager-sub000/platform/logger"
)

type Module struct {
	dispatcher *Dispatcher
	inApp      *inapp.Repository
	emails     *outbox.Repository
	log        *logger.Logger
}

var _ apphttp.Module = (*Module)(nil)

func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	inAppRepo := inapp.New(pool)
	outboxRepo := outbox.New(pool)
	return &Module{
		dispatcher: NewDispatcher(inAppRepo, outboxRepo, users.New(pool), log),
		inApp:      inAppRepo,
		emails:     outboxRepo,
		log:        log,
	}
}

func (m *Module) Name() string { return "notifications" }

// RegisterHandlers hooks the dispatcher into the event bus. Both the API
// and the worker composition roots call this.
func (m *Module) RegisterHandlers(bus events.Bus) {
	m.dispatcher.RegisterHandlers(bus)
}

// Outbox exposes the delivery store to the worker-side wiring.
func (m *Module) Outbox() *outbox.Repository { return m.emails }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/notifications")
	group.GET("", m.list)
	group.GET("/unread-count", m.unreadCount)
	group.POST("/:id/read", m.markRead)
	group.POST("/read-all", m.markAllRead)
}

type listResult struct {
	Message       string                `json:"message"`
	Success       bool                  `json:"success"`
	Notifications []*inapp.Notification `json:"notifications"`
}

type unreadCountResult struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Count   int64  `json:"count"`
}

func (m *Module) list(c *gin.Context) {
	identity, ok := httpkit.GetIdentity(c)
	if !ok {
		httpkit.HandleError(c, m.log, apperr.Unauthorized("you must be signed in"))
		return
	}
	notifications, err := m.inApp.ListForUser(c.Request.Context(), identity.UserID, 50)
	if err != nil {
		httpkit.HandleError(c, m.log, apperr.Internal("could not list notifications", err))
		return
	}
	httpkit.OK(c, http.StatusOK, listResult{
		Message:       "Notifications retrieved",
		Success:       true,
		Notifications: notifications,
	})
}

func (m *Module) unreadCount(c *gin.Context) {
	identity, ok := httpkit.GetIdentity(c)
	if !ok {
		httpkit.HandleError(c, m.log, apperr.Unauthorized("you must be signed in"))
		return
	}
	count, err := m.inApp.CountUnread(c.Request.Context(), identity.UserID)
	if err != nil {
		httpkit.HandleError(c, m.log, apperr.Internal("could not count notifications", err))
		return
	}
	httpkit.OK(c, http.StatusOK, unreadCountResult{
		Message: "Unread count retrieved",
		Success: true,
		Count:   count,
	})
}

func (m *Module) markRead(c *gin.Context) {
	identity, ok := httpkit.GetIdentity(c)
	if !ok {
		httpkit.HandleError(c, m.log, apperr.Unauthorized("you must be signed in"))
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, m.log, apperr.BadRequest("invalid notification id"))
		return
	}
	if err := m.inApp.MarkRead(c.Request.Context(), id, identity.UserID); err != nil {
		httpkit.HandleError(c, m.log, apperr.Internal("could not mark notification read", err))
		return
	}
	httpkit.OK(c, http.StatusOK, gin.H{"message": "Notification marked read", "success": true})
}

func (m *Module) markAllRead(c *gin.Context) {
	identity, ok := httpkit.GetIdentity(c)
	if !ok {
		httpkit.HandleError(c, m.log, apperr.Unauthorized("you must be signed in"))
		return
	}
	if err := m.inApp.MarkAllRead(c.Request.Context(), identity.UserID); err != nil {
		httpkit.HandleError(c, m.log, apperr.Internal("could not mark notifications read", err))
		return
	}
	httpkit.OK(c, http.StatusOK, gin.H{"message": "All notifications marked read", "success": true})
}
