package handler

type textRequest struct {
	Text string `json:"text" validate:"required"`
}

func (textRequest) validationMessages() map[string]string {
	return map[string]string{"text": "Text is required!"}
}
