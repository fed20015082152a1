package dto

// BotMessageRequest body para POST /api/bot/conversations/:id/messages.
// Callback corresponde a la pulsación de un botón; ImageBase64 a una foto del código de barras.
type BotMessageRequest struct {
	Text        string `json:"text" validate:"max=500"`
	Callback    string `json:"callback" validate:"max=100"`
	ImageBase64 string `json:"image_base64"`
}

// BotMessageResponse respuesta del asistente.
type BotMessageResponse struct {
	Text    string      `json:"text"`
	Options []BotOption `json:"options,omitempty"`
	State   string      `json:"state"`
}

// BotOption botón ofrecido al usuario.
type BotOption struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}
