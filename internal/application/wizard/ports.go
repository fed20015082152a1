package wizard

import (
	"context"
	"time"

	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
)

// SessionStore guarda las sesiones por conversación con expiración.
// Get devuelve (nil, nil) si no existe o expiró.
// Take lee y borra la sesión en una sola operación atómica: de dos llamadas concurrentes
// solo una recibe la sesión, la otra recibe (nil, nil).
type SessionStore interface {
	Get(ctx context.Context, conversationID string) (*Session, error)
	Take(ctx context.Context, conversationID string) (*Session, error)
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Delete(ctx context.Context, conversationID string) error
}

// BarcodeDecoder lee el código de barras de una imagen (JPEG o PNG).
type BarcodeDecoder interface {
	Decode(image []byte) (string, error)
}

// ProductFinder búsquedas de producto que usa el paso de selección.
type ProductFinder interface {
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	Search(ctx context.Context, term string, limit int) ([]*entity.Product, error)
}

// MovementApplier el gateway de movimientos.
type MovementApplier interface {
	ApplyMovement(ctx context.Context, in inventory.MovementInput) (*entity.Product, *entity.StockMovement, error)
}
