package http

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmanager-api/internal/application/dto"
	"github.com/jhoicas/stockmanager-api/internal/application/wizard"
	"github.com/jhoicas/stockmanager-api/internal/domain"
)

// maxImageBytes límite de la foto decodificada del código de barras.
const maxImageBytes = 5 << 20

// BotHandler canal HTTP del asistente de ajuste de stock.
type BotHandler struct {
	svc *wizard.Service
}

// NewBotHandler construye el handler.
func NewBotHandler(svc *wizard.Service) *BotHandler {
	return &BotHandler{svc: svc}
}

// HandleMessage godoc
// @Summary      Enviar un turno al asistente
// @Description  text, callback (botón pulsado) o image_base64 (foto del código de barras).
// @Tags         bot
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la conversación"
// @Param        body  body  dto.BotMessageRequest  true  "Mensaje"
// @Success      200   {object}  dto.BotMessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/bot/conversations/{id}/messages [post]
func (h *BotHandler) HandleMessage(c *fiber.Ctx) error {
	var in dto.BotMessageRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	msg := wizard.Message{Text: in.Text, Callback: in.Callback, CallerID: GetUserID(c)}
	if in.ImageBase64 != "" {
		img, err := decodeImage(in.ImageBase64)
		if err != nil {
			return writeError(c, err)
		}
		msg.Image = img
	}
	reply, err := h.svc.HandleTurn(c.UserContext(), c.Params("id"), msg)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.BotMessageResponse{Text: reply.Text, State: string(reply.State)}
	for _, o := range reply.Options {
		out.Options = append(out.Options, dto.BotOption{Label: o.Label, Data: o.Data})
	}
	return c.JSON(out)
}

// decodeImage acepta base64 estándar, con o sin prefijo data URL.
func decodeImage(s string) ([]byte, error) {
	if i := strings.Index(s, ","); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+1:]
	}
	img, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: image_base64 no es base64 válido", domain.ErrInvalidInput)
	}
	if len(img) > maxImageBytes {
		return nil, fmt.Errorf("%w: imagen demasiado grande", domain.ErrInvalidInput)
	}
	return img, nil
}
