package infra

import (
	"encoding/json"

	"document-gateway/registry/domain"

	"github.com/pkg/errors"
)

// JSONSerializer gera o corpo esperado por /api/v3/lk/documents/create.
//
// A ordem das chaves segue a ordem dos campos de wireDocument/wireProduct;
// description, importRequest e products só aparecem quando presentes.
type JSONSerializer struct{}

var _ domain.Serializer = JSONSerializer{}

type wireDescription struct {
	ParticipantInn string `json:"participantInn"`
}

type wireDocument struct {
	DocID          string           `json:"doc_id"`
	DocStatus      string           `json:"doc_status"`
	DocType        string           `json:"doc_type"`
	OwnerInn       string           `json:"owner_inn"`
	ParticipantInn string           `json:"participant_inn"`
	ProducerInn    string           `json:"producer_inn"`
	ProductionDate string           `json:"production_date"`
	ProductionType string           `json:"production_type"`
	Description    *wireDescription `json:"description,omitempty"`
	ImportRequest  *bool            `json:"importRequest,omitempty"`
	Products       []wireProduct    `json:"products,omitempty"`
	RegDate        string           `json:"reg_date"`
	RegNumber      string           `json:"reg_number"`
}

type wireProduct struct {
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

func (JSONSerializer) Serialize(doc domain.Document) ([]byte, error) {
	w := wireDocument{
		DocID:          doc.DocID,
		DocStatus:      doc.DocStatus,
		DocType:        doc.DocType,
		OwnerInn:       doc.OwnerInn,
		ParticipantInn: doc.ParticipantInn,
		ProducerInn:    doc.ProducerInn,
		ProductionDate: doc.ProductionDate,
		ProductionType: doc.ProductionType,
		ImportRequest:  doc.ImportRequest,
		RegDate:        doc.RegDate,
		RegNumber:      doc.RegNumber,
	}
	if doc.Description != nil {
		w.Description = &wireDescription{ParticipantInn: doc.Description.ParticipantInn}
	}
	if len(doc.Products) > 0 {
		w.Products = make([]wireProduct, 0, len(doc.Products))
		for _, p := range doc.Products {
			w.Products = append(w.Products, wireProduct(p))
		}
	}

	b, err := json.Marshal(w)
	if err != nil {
		return nil, errors.Wrap(err, "marshal document")
	}
	return b, nil
}
