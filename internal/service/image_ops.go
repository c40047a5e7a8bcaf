package service

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ImageOpKind is the closed set of declarative image operations. Raw
// payloads are dispatched by which fields are present and validated into
// one of these kinds before anything executes.
type ImageOpKind int

const (
	OpCreate ImageOpKind = iota
	OpUpdate
	OpDelete
)

// ImageOp is a validated image operation.
type ImageOp struct {
	Kind    ImageOpKind
	ID      uuid.UUID // set for OpUpdate and OpDelete
	AltText *string   // nil means "leave unchanged" on update
	FileKey string    // empty means "no content change" on update
}

// Uploads maps a payload's file_key to the blob key of content already
// staged in the blob store. It stands in for the upload-resolution
// collaborator: a key that does not resolve is a fatal input error.
type Uploads map[string]string

// Resolve returns the blob key staged under the given file key.
func (u Uploads) Resolve(fileKey string) (string, bool) {
	blobKey, ok := u[fileKey]
	return blobKey, ok
}

// imageOpPayload mirrors the wire shape of one operation. Pointer fields
// distinguish absent from zero.
type imageOpPayload struct {
	ID      *string `json:"id"`
	AltText *string `json:"alt_text"`
	Delete  *bool   `json:"delete"`
	FileKey *string `json:"file_key"`
}

var allowedOpFields = map[string]bool{
	"id":       true,
	"alt_text": true,
	"delete":   true,
	"file_key": true,
}

// ParseImageOps validates raw operations before any mutation runs. Every
// failure carries the offending index. Rules:
//   - an operation must be an object with no fields outside
//     {id, alt_text, delete, file_key}
//   - id, when present, must be a UUID
//   - delete=true requires id
//   - absence of both id and file_key is invalid
func ParseImageOps(raw []json.RawMessage) ([]ImageOp, error) {
	ops := make([]ImageOp, 0, len(raw))

	for i, r := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(r, &fields); err != nil {
			return nil, &ImageOpError{Index: i, Err: ErrInvalidOperationShape}
		}

		for name := range fields {
			if !allowedOpFields[name] {
				return nil, &ImageOpError{Index: i, Err: ErrInvalidOperationShape}
			}
		}

		var payload imageOpPayload
		if err := json.Unmarshal(r, &payload); err != nil {
			return nil, &ImageOpError{Index: i, Err: ErrInvalidOperationShape}
		}

		// Empty strings count as absent, matching the wire contract.
		hasID := payload.ID != nil && *payload.ID != ""
		fileKey := ""
		if payload.FileKey != nil {
			fileKey = *payload.FileKey
		}
		toDelete := payload.Delete != nil && *payload.Delete

		var id uuid.UUID
		if hasID {
			parsed, err := uuid.Parse(*payload.ID)
			if err != nil {
				return nil, &ImageOpError{Index: i, Err: ErrInvalidOperationShape}
			}
			id = parsed
		}

		if toDelete && !hasID {
			return nil, &ImageOpError{Index: i, Err: ErrInvalidOperationShape}
		}

		if !hasID && fileKey == "" {
			return nil, &ImageOpError{Index: i, Err: ErrInvalidOperationShape}
		}

		op := ImageOp{AltText: payload.AltText, FileKey: fileKey}
		switch {
		case hasID && toDelete:
			op.Kind = OpDelete
			op.ID = id
		case hasID:
			op.Kind = OpUpdate
			op.ID = id
		default:
			op.Kind = OpCreate
		}

		ops = append(ops, op)
	}

	return ops, nil
}
