package thanksio

// Recipient: destinatário da nota manuscrita
type Recipient struct {
	Name    string `json:"name"`
	Street  string `json:"address"`
	City    string `json:"city"`
	State   string `json:"province"`
	ZipCode string `json:"postal_code"`
}

// NoteInput: DTO limpo que o usecase manda para o canal de notas
type NoteInput struct {
	IdempotencyKey string
	Recipient      Recipient
	Message        string
	SenderName     string
	ReturnStreet   string
	ReturnCity     string
	ReturnState    string
	ReturnZipCode  string
}

type createOrderRequest struct {
	Recipients []Recipient `json:"recipients"`
	Message    string      `json:"message"`
	Handwriting string     `json:"handwriting_style"`

	SenderName    string `json:"sender_name"`
	ReturnStreet  string `json:"return_address"`
	ReturnCity    string `json:"return_city"`
	ReturnState   string `json:"return_province"`
	ReturnZipCode string `json:"return_postal_code"`
}

type orderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}
