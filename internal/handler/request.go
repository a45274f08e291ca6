package handler

import (
	"github.com/deppfellow/rentals-api/internal/store"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DocumentIDRequest addresses one document through the :id path param.
type DocumentIDRequest struct {
	ID string `param:"id" json:"-" validate:"required"`
}

func NewDocumentIDRequest() *DocumentIDRequest { return &DocumentIDRequest{} }

func (r *DocumentIDRequest) Validate() error {
	return validate.Struct(r)
}

// CreateDocumentRequest carries the raw JSON object of a create. Field checks
// belong to the resource definition, not to struct tags.
type CreateDocumentRequest struct {
	Payload store.Fields
}

func NewCreateDocumentRequest() *CreateDocumentRequest { return &CreateDocumentRequest{} }

func (r *CreateDocumentRequest) UnmarshalJSON(data []byte) error {
	payload, err := store.DecodeFields(data)
	if err != nil {
		return err
	}
	r.Payload = payload
	return nil
}

func (r *CreateDocumentRequest) Validate() error {
	return nil
}

// UpdateDocumentRequest is a document id plus the fields to merge into it.
type UpdateDocumentRequest struct {
	ID      string `param:"id" json:"-" validate:"required"`
	Payload store.Fields
}

func NewUpdateDocumentRequest() *UpdateDocumentRequest { return &UpdateDocumentRequest{} }

// UnmarshalJSON only fills Payload; ID comes from the path.
func (r *UpdateDocumentRequest) UnmarshalJSON(data []byte) error {
	payload, err := store.DecodeFields(data)
	if err != nil {
		return err
	}
	r.Payload = payload
	return nil
}

func (r *UpdateDocumentRequest) Validate() error {
	return validate.Struct(r)
}

// MessageResponse is the body of successful updates and deletes.
type MessageResponse struct {
	Message string `json:"message"`
}
