package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stockmanager-api/internal/application/inventory"
	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
	"github.com/jhoicas/stockmanager-api/pkg/logger"
	"github.com/jhoicas/stockmanager-api/pkg/metrics"
)

// SearchLimit máximo de candidatos en la búsqueda aproximada.
const SearchLimit = 5

// Message mensaje entrante de una conversación.
type Message struct {
	Text     string
	Callback string
	Image    []byte
	CallerID string // vacío = identidad de sistema
}

// Service ejecuta los turnos del asistente: carga la sesión, resuelve el producto,
// aplica Transition y, al final, llama al gateway exactamente una vez.
type Service struct {
	store    SessionStore
	products ProductFinder
	decoder  BarcodeDecoder
	gateway  MovementApplier
	ttl      time.Duration
	log      *logger.Logger
	metrics  *metrics.LedgerMetrics
	now      func() time.Time
}

// NewService construye el servicio. decoder puede ser nil (sin lectura de imágenes).
func NewService(
	store SessionStore,
	products ProductFinder,
	decoder BarcodeDecoder,
	gateway MovementApplier,
	ttl time.Duration,
	log *logger.Logger,
	m *metrics.LedgerMetrics,
) *Service {
	return &Service{
		store:    store,
		products: products,
		decoder:  decoder,
		gateway:  gateway,
		ttl:      ttl,
		log:      log.WithComponent("wizard"),
		metrics:  m,
		now:      time.Now,
	}
}

// HandleTurn procesa un mensaje de la conversación indicada.
func (s *Service) HandleTurn(ctx context.Context, conversationID string, msg Message) (Reply, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return Reply{}, domain.ErrInvalidInput
	}
	current, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return Reply{}, fmt.Errorf("cargar sesión: %w", err)
	}
	session := NewSession(conversationID)
	if current != nil {
		session = *current
	}

	in := Input{Text: msg.Text, Callback: msg.Callback}
	if session.State == StateAwaitingProduct && !isControl(msg) {
		lookup, err := s.lookup(ctx, msg)
		if err != nil {
			return Reply{}, fmt.Errorf("buscar producto: %w", err)
		}
		in.Lookup = lookup
	}

	next, reply, cmd := Transition(session, in)
	s.metrics.IncWizardTurn(string(next.State))

	if cmd != nil {
		claimed, err := s.claim(ctx, session)
		if err != nil {
			return Reply{}, err
		}
		if !claimed {
			s.log.Info().Str("conversation_id", conversationID).Msg("turno final duplicado descartado")
			return alreadyProcessedReply(), nil
		}
		return s.execute(ctx, conversationID, msg.CallerID, cmd), nil
	}

	if next.State.Terminal() {
		if err := s.store.Delete(ctx, conversationID); err != nil {
			s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("no se pudo descartar la sesión")
		}
	} else {
		next.UpdatedAt = s.now()
		if err := s.store.Save(ctx, next, s.ttl); err != nil {
			return Reply{}, fmt.Errorf("guardar sesión: %w", err)
		}
	}
	return reply, nil
}

// claim retira la sesión del almacén antes de ejecutar el comando. Solo gana el turno
// que retira exactamente la sesión que leyó; si otra la cambió entre medias, se restaura.
func (s *Service) claim(ctx context.Context, read Session) (bool, error) {
	taken, err := s.store.Take(ctx, read.ConversationID)
	if err != nil {
		return false, fmt.Errorf("reclamar sesión: %w", err)
	}
	if taken == nil {
		return false, nil
	}
	if taken.State != read.State || !taken.UpdatedAt.Equal(read.UpdatedAt) {
		if err := s.store.Save(ctx, *taken, s.ttl); err != nil {
			return false, fmt.Errorf("restaurar sesión: %w", err)
		}
		return false, nil
	}
	return true, nil
}

func alreadyProcessedReply() Reply {
	return Reply{
		Text:    "⏳ Este ajuste ya fue procesado.",
		Options: []Option{{Label: "🔄 Ajustar otro", Data: CallbackStartAdjust}},
		State:   StateExecuted,
	}
}

func (s *Service) execute(ctx context.Context, conversationID, callerID string, cmd *Command) Reply {
	reason := cmd.Reason
	product, _, err := s.gateway.ApplyMovement(ctx, inventory.MovementInput{
		ProductID: cmd.ProductID,
		Type:      cmd.Type,
		Quantity:  cmd.Quantity,
		Reason:    &reason,
		CallerID:  callerID,
	})
	if err != nil {
		s.log.Warn().Err(err).
			Str("conversation_id", conversationID).
			Str("product_id", cmd.ProductID).
			Msg("ajuste desde el asistente rechazado")
		return FailedReply(err)
	}
	return CompletedReply(cmd, product.Quantity)
}

// lookup resuelve el producto: SKU exacto, luego código de barras de la imagen y por último
// coincidencia parcial en nombre o SKU (máximo SearchLimit). Ignora productos inactivos.
func (s *Service) lookup(ctx context.Context, msg Message) (*Lookup, error) {
	term := strings.TrimSpace(msg.Text)
	if term == "" && len(msg.Image) == 0 {
		return nil, nil
	}
	l := &Lookup{}

	if term != "" {
		p, err := s.products.GetBySKU(ctx, term)
		if err != nil {
			return nil, err
		}
		if p != nil && p.IsActive {
			l.Matches = []ProductRef{toRef(p)}
			return l, nil
		}
	}

	if len(msg.Image) > 0 {
		code, err := s.decode(msg.Image)
		if err != nil {
			s.log.Debug().Err(err).Msg("código de barras ilegible")
			if term == "" {
				l.Unreadable = true
				return l, nil
			}
		} else {
			l.Barcode = code
			p, err := s.products.GetByBarcode(ctx, code)
			if err != nil {
				return nil, err
			}
			if p != nil && p.IsActive {
				l.Matches = []ProductRef{toRef(p)}
				return l, nil
			}
		}
	}

	if term == "" {
		return l, nil
	}
	candidates, err := s.products.Search(ctx, term, SearchLimit)
	if err != nil {
		return nil, err
	}
	for _, p := range candidates {
		if p.IsActive {
			l.Matches = append(l.Matches, toRef(p))
		}
	}
	return l, nil
}

func (s *Service) decode(image []byte) (string, error) {
	if s.decoder == nil {
		return "", fmt.Errorf("lector de códigos no configurado")
	}
	return s.decoder.Decode(image)
}

func isControl(msg Message) bool {
	t := strings.TrimSpace(msg.Text)
	return isCancel(t) || isStart(t) || isCancel(msg.Callback) || msg.Callback == CallbackStartAdjust
}

func toRef(p *entity.Product) ProductRef {
	return ProductRef{ID: p.ID, SKU: p.SKU, Name: p.Name, Quantity: p.Quantity}
}
