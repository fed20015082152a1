package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/stockmanager-api/internal/domain"
	"github.com/jhoicas/stockmanager-api/internal/domain/entity"
)

// Datos de callback de los botones.
const (
	CallbackActionPrefix = "adjust_type_"
	CallbackReasonPrefix = "reason_"
	CallbackReasonSkip   = "reason_skip"
	CallbackStartAdjust  = "stock_start_adjust"

	DefaultReason = "Stock Adjustment"
)

// ProductRef datos del producto que la conversación necesita.
type ProductRef struct {
	ID       string
	SKU      string
	Name     string
	Quantity int
}

// Lookup resultado de la búsqueda de producto que el servicio adjunta al turno.
type Lookup struct {
	Matches    []ProductRef
	Barcode    string // código leído de la imagen, si lo hubo
	Unreadable bool   // se envió una imagen y no se pudo leer
}

// Input un turno del usuario. Lookup solo se rellena en el paso de producto.
type Input struct {
	Text     string
	Callback string
	Lookup   *Lookup
}

// Option botón ofrecido al usuario.
type Option struct {
	Label string
	Data  string
}

// Reply respuesta del asistente.
type Reply struct {
	Text    string
	Options []Option
	State   State
}

// Command movimiento a ejecutar al terminar el asistente.
type Command struct {
	ProductID     string
	ProductName   string
	PreviousStock int
	Action        Action
	Type          entity.MovementType
	Quantity      int
	Reason        string
}

// Transition avanza la conversación un turno. Es una función pura: no hace I/O.
// Devuelve la nueva sesión, la respuesta y, solo al ejecutar, el comando para el gateway.
func Transition(s Session, in Input) (Session, Reply, *Command) {
	next, reply, cmd := step(s, in)
	reply.State = next.State
	return next, reply, cmd
}

func step(s Session, in Input) (Session, Reply, *Command) {
	text := strings.TrimSpace(in.Text)
	cb := strings.TrimSpace(in.Callback)

	if isCancel(text) || isCancel(cb) {
		s.State = StateCancelled
		return s, Reply{Text: "❌ Ajuste cancelado."}, nil
	}
	if isStart(text) || cb == CallbackStartAdjust {
		return NewSession(s.ConversationID), promptProduct(), nil
	}

	switch s.State {
	case StateAwaitingProduct, "":
		s.State = StateAwaitingProduct
		return onProduct(s, in.Lookup)
	case StateAwaitingAction:
		return onAction(s, firstNonEmpty(cb, text))
	case StateAwaitingQuantity:
		return onQuantity(s, text)
	case StateAwaitingReason:
		return onReason(s, cb, text)
	default:
		// Sesión terminal reutilizada: empezar de nuevo
		return NewSession(s.ConversationID), promptProduct(), nil
	}
}

func onProduct(s Session, l *Lookup) (Session, Reply, *Command) {
	if l == nil {
		return s, promptProduct(), nil
	}
	if l.Unreadable {
		return s, Reply{Text: "❌ No se pudo leer el código de barras. Envía el SKU o el nombre."}, nil
	}
	switch len(l.Matches) {
	case 0:
		if l.Barcode != "" {
			return s, Reply{Text: fmt.Sprintf("🔍 Código detectado: %s, pero ningún producto coincide.", l.Barcode)}, nil
		}
		return s, Reply{Text: "❌ No se encontró ningún producto. Intenta de nuevo o /cancel."}, nil
	case 1:
		p := l.Matches[0]
		s.ProductID = p.ID
		s.ProductSKU = p.SKU
		s.ProductName = p.Name
		s.CurrentStock = p.Quantity
		s.State = StateAwaitingAction
		return s, promptAction(s), nil
	default:
		lines := make([]string, 0, len(l.Matches))
		for _, m := range l.Matches {
			lines = append(lines, fmt.Sprintf("• %s: %s", m.SKU, m.Name))
		}
		return s, Reply{Text: "Se encontraron varios productos:\n" + strings.Join(lines, "\n") + "\n\nEscribe el SKU exacto."}, nil
	}
}

func onAction(s Session, data string) (Session, Reply, *Command) {
	action := Action(strings.ToLower(strings.TrimPrefix(data, CallbackActionPrefix)))
	if !action.Valid() {
		r := promptAction(s)
		r.Text = "Elige una de las opciones."
		return s, r, nil
	}
	s.Action = action
	s.State = StateAwaitingQuantity
	if action == ActionSet {
		return s, Reply{Text: "Nueva cantidad total:"}, nil
	}
	return s, Reply{Text: fmt.Sprintf("Cantidad a %s:", actionVerb(action))}, nil
}

func onQuantity(s Session, text string) (Session, Reply, *Command) {
	qty, err := strconv.Atoi(text)
	if err != nil || qty < 0 || (qty == 0 && s.Action != ActionSet) {
		return s, Reply{Text: "Ingresa un número entero válido (mayor que 0; 0 solo para fijar el total)."}, nil
	}
	s.Quantity = qty
	s.State = StateAwaitingReason
	return s, Reply{
		Text: "¿Motivo del ajuste?",
		Options: []Option{
			{Label: "📦 Shipment", Data: "reason_shipment"},
			{Label: "📝 Audit", Data: "reason_audit"},
			{Label: "🗑️ Damaged", Data: "reason_damaged"},
			{Label: "↩️ Return", Data: "reason_return"},
			{Label: "Skip", Data: CallbackReasonSkip},
		},
	}, nil
}

func onReason(s Session, cb, text string) (Session, Reply, *Command) {
	reason := DefaultReason
	switch {
	case strings.HasPrefix(cb, CallbackReasonPrefix):
		reason = ReasonFromCallback(cb)
	case text != "":
		reason = text
	}
	s.State = StateExecuted
	cmd := &Command{
		ProductID:     s.ProductID,
		ProductName:   s.ProductName,
		PreviousStock: s.CurrentStock,
		Action:        s.Action,
		Type:          s.Action.MovementType(),
		Quantity:      s.Quantity,
		Reason:        reason,
	}
	return s, Reply{Text: "Aplicando ajuste..."}, cmd
}

// ReasonFromCallback traduce reason_<x> a un motivo legible; reason_skip usa el motivo por defecto.
func ReasonFromCallback(cb string) string {
	key := strings.TrimPrefix(cb, CallbackReasonPrefix)
	if key == "" || cb == CallbackReasonSkip {
		return DefaultReason
	}
	return cases.Title(language.English).String(key)
}

// CompletedReply respuesta tras aplicar el movimiento.
func CompletedReply(cmd *Command, newStock int) Reply {
	return Reply{
		Text: fmt.Sprintf("✅ Ajuste completado\n\n📦 %s\nStock anterior: %d\nStock nuevo: %d\nMotivo: %s",
			cmd.ProductName, cmd.PreviousStock, newStock, cmd.Reason),
		Options: []Option{{Label: "🔄 Ajustar otro", Data: CallbackStartAdjust}},
		State:   StateExecuted,
	}
}

// FailedReply respuesta cuando el gateway rechaza el movimiento.
func FailedReply(err error) Reply {
	text := "❌ No se pudo actualizar el stock."
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		text = "❌ Stock insuficiente: la cantidad no puede quedar negativa."
	case errors.Is(err, domain.ErrNotFound):
		text = "❌ El producto ya no existe."
	}
	return Reply{
		Text:    text,
		Options: []Option{{Label: "🔄 Intentar de nuevo", Data: CallbackStartAdjust}},
		State:   StateExecuted,
	}
}

func promptProduct() Reply {
	return Reply{Text: "📦 Ajuste de stock\n\n¿Qué producto? Envía nombre, SKU o una foto del código de barras."}
}

func promptAction(s Session) Reply {
	return Reply{
		Text: fmt.Sprintf("📦 %s\nStock actual: %d\n\n¿Qué deseas hacer?", s.ProductName, s.CurrentStock),
		Options: []Option{
			{Label: "➕ Agregar", Data: CallbackActionPrefix + string(ActionAdd)},
			{Label: "➖ Retirar", Data: CallbackActionPrefix + string(ActionRemove)},
			{Label: "🔄 Fijar total", Data: CallbackActionPrefix + string(ActionSet)},
		},
	}
}

func actionVerb(a Action) string {
	if a == ActionAdd {
		return "agregar"
	}
	return "retirar"
}

func isCancel(v string) bool {
	v = strings.ToLower(v)
	return v == "/cancel" || v == "cancel"
}

func isStart(v string) bool {
	v = strings.ToLower(v)
	return v == "/start" || v == "/adjust"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
