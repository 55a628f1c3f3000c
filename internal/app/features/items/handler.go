// internal/app/features/items/handler.go
package items

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/itemmanager/internal/app/features/errors"
	itemstore "github.com/dalemusser/itemmanager/internal/app/store/items"
	"github.com/dalemusser/itemmanager/internal/app/system/flash"
	"github.com/dalemusser/itemmanager/internal/app/system/listmirror"
	"github.com/dalemusser/itemmanager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Store is the item persistence the handlers use. *itemstore.Store
// satisfies it.
type Store interface {
	Create(ctx context.Context, owner models.Account, f itemstore.Fields) (models.Item, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Item, error)
	ListAll(ctx context.Context) ([]models.Item, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Item, error)
	Update(ctx context.Context, id primitive.ObjectID, f itemstore.Fields) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Handler is the feature-level entry point for Items.
type Handler struct {
	Items    Store
	Mirror   *listmirror.Mirror
	Sessions flash.SessionGetter
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler constructs an Items handler.
func NewHandler(store Store, mirror *listmirror.Mirror, sessions flash.SessionGetter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Items:    store,
		Mirror:   mirror,
		Sessions: sessions,
		ErrLog:   errLog,
		Log:      logger,
	}
}

func (h *Handler) setFlash(w http.ResponseWriter, r *http.Request, msg string) {
	if h.Sessions == nil {
		return
	}
	if err := flash.Set(h.Sessions, w, r, msg); err != nil {
		h.Log.Warn("set flash failed", zap.Error(err))
	}
}

func (h *Handler) popFlash(w http.ResponseWriter, r *http.Request) string {
	if h.Sessions == nil {
		return ""
	}
	return flash.Pop(h.Sessions, w, r)
}

// clientGone reports whether the request was abandoned, in which case
// nothing should be written.
func clientGone(r *http.Request) bool {
	return r.Context().Err() != nil
}
