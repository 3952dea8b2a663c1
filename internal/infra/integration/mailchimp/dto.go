package mailchimp

// UpsertContactInput: DTO limpo que o usecase manda para o canal de email
type UpsertContactInput struct {
	ListID    string
	Email     string
	FirstName string
	LastName  string
	CID       string // vira tag no membro, para segmentação por tenant
}

// upsertMemberRequest é o shape que a API do Mailchimp espera
type upsertMemberRequest struct {
	EmailAddress string            `json:"email_address"`
	StatusIfNew  string            `json:"status_if_new"`
	MergeFields  map[string]string `json:"merge_fields"`
	Tags         []string          `json:"tags"`
}

type memberResponse struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
	Status       string `json:"status"`
}

type errorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}
