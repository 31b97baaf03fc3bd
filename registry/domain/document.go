package domain

// Document é o documento enviado ao serviço de registro.
//
// Campos opcionais são explícitos: Description e ImportRequest são ponteiros e
// Products pode ser nil. Os campos escalares são sempre emitidos.
type Document struct {
	DocID          string `json:"doc_id"`
	DocStatus      string `json:"doc_status"`
	DocType        string `json:"doc_type"`
	OwnerInn       string `json:"owner_inn"`
	ParticipantInn string `json:"participant_inn"`
	ProducerInn    string `json:"producer_inn"`
	ProductionDate string `json:"production_date"`
	ProductionType string `json:"production_type"`

	Description   *Description `json:"description,omitempty"`
	ImportRequest *bool        `json:"importRequest,omitempty"`
	Products      []Product    `json:"products,omitempty"`

	RegDate   string `json:"reg_date"`
	RegNumber string `json:"reg_number"`
}

// Description é o bloco opcional "description" do documento.
type Description struct {
	ParticipantInn string `json:"participantInn"`
}

type Product struct {
	OwnerInn                  string `json:"owner_inn"`
	ProducerInn               string `json:"producer_inn"`
	ProductionDate            string `json:"production_date"`
	TnvedCode                 string `json:"tnved_code"`
	CertificateDocument       string `json:"certificate_document"`
	CertificateDocumentDate   string `json:"certificate_document_date"`
	CertificateDocumentNumber string `json:"certificate_document_number"`
	UitCode                   string `json:"uit_code"`
	UituCode                  string `json:"uitu_code"`
}
