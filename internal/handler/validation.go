package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"

	"github.com/qri-io/jsonschema"

	"github.com/yourorg/estatehub/internal/domain"
	"github.com/yourorg/estatehub/internal/observability/metrics"
)

// FieldError points at one offending value in a request body
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input is rejected before reaching the database
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s %s", e.Message, e.Fields[0].Field, e.Fields[0].Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == domain.ErrValidation
}

// bodySchema is a compiled JSON Schema for one request body shape
type bodySchema struct {
	name   string
	schema *jsonschema.Schema
}

func mustSchema(name, src string) *bodySchema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(src), rs); err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return &bodySchema{name: name, schema: rs}
}

// validate checks raw against the schema and returns a *ValidationError listing
// every violation
func (s *bodySchema) validate(ctx context.Context, raw []byte) error {
	keyErrs, err := s.schema.ValidateBytes(ctx, raw)
	if err != nil {
		metrics.ObserveValidationFailure(s.name)
		return &ValidationError{Message: "request body must be a valid JSON object"}
	}
	if len(keyErrs) == 0 {
		return nil
	}

	fields := make([]FieldError, 0, len(keyErrs))
	for _, ke := range keyErrs {
		path := ke.PropertyPath
		if path == "" {
			path = "/"
		}
		fields = append(fields, FieldError{Field: path, Message: ke.Message})
	}
	metrics.ObserveValidationFailure(s.name)
	return &ValidationError{Message: "request body failed validation", Fields: fields}
}

// decodeBody reads the request body, validates it against schema and decodes it into dst
func decodeBody(r *http.Request, schema *bodySchema, dst any) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &ValidationError{Message: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)}
		}
		return &ValidationError{Message: "failed to read request body"}
	}
	if len(raw) == 0 {
		return &ValidationError{Message: "request body is required"}
	}

	if err := schema.validate(r.Context(), raw); err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return &ValidationError{Message: "request body does not match the expected shape: " + err.Error()}
	}
	return nil
}

// bareEmail rejects addresses the schema's email format lets through but that
// are not a plain addr-spec, such as "Bob <bob@x.io>". schema names the body for
// the failure metric.
func bareEmail(schema *bodySchema, field, email string) error {
	addr, err := mail.ParseAddress(email)
	if err == nil && addr.Name == "" && addr.Address == email {
		return nil
	}
	metrics.ObserveValidationFailure(schema.name)
	return &ValidationError{
		Message: "request body failed validation",
		Fields:  []FieldError{{Field: field, Message: "must be a bare email address"}},
	}
}

// positiveID is reused by every reference to another row
const positiveID = `{"type": "integer", "minimum": 1}`

const nullablePositiveID = `{"type": ["integer", "null"], "minimum": 1}`

var (
	userCreateSchema = mustSchema("user_create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["email", "password_hash", "first_name", "last_name", "role_id"],
		"properties": {
			"email": {"type": "string", "format": "email", "maxLength": 255},
			"password_hash": {"type": "string", "minLength": 1},
			"first_name": {"type": "string", "minLength": 1, "maxLength": 100},
			"last_name": {"type": "string", "minLength": 1, "maxLength": 100},
			"phone": {"type": ["string", "null"], "maxLength": 50},
			"role_id": `+positiveID+`,
			"agency_id": `+nullablePositiveID+`
		}
	}`)

	userUpdateSchema = mustSchema("user_update", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["first_name", "last_name"],
		"properties": {
			"first_name": {"type": "string", "minLength": 1, "maxLength": 100},
			"last_name": {"type": "string", "minLength": 1, "maxLength": 100}
		}
	}`)

	listingCreateSchema = mustSchema("listing_create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["title", "description", "price", "living_area", "rooms", "category_id", "agent_id", "address_id"],
		"properties": {
			"title": {"type": "string", "minLength": 1, "maxLength": 255},
			"description": {"type": ["string", "null"]},
			"price": {"type": "integer", "minimum": 0},
			"living_area": {"type": ["integer", "null"], "minimum": 1},
			"rooms": {"type": ["integer", "null"], "minimum": 1},
			"category_id": `+positiveID+`,
			"agent_id": `+positiveID+`,
			"address_id": `+nullablePositiveID+`,
			"agency_id": `+nullablePositiveID+`,
			"status": {"enum": ["active", "upcoming", "sold", "archived"]}
		}
	}`)

	listingUpdateSchema = mustSchema("listing_update", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["title", "description", "price"],
		"properties": {
			"title": {"type": "string", "minLength": 1, "maxLength": 255},
			"description": {"type": ["string", "null"]},
			"price": {"type": "integer", "minimum": 0}
		}
	}`)

	listingStatusSchema = mustSchema("listing_status", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["status"],
		"properties": {
			"status": {"enum": ["active", "upcoming", "sold", "archived"]}
		}
	}`)

	bidCreateSchema = mustSchema("bid_create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["bidder_id", "amount"],
		"properties": {
			"bidder_id": `+positiveID+`,
			"amount": {"type": "integer", "minimum": 1}
		}
	}`)

	favoriteSchema = mustSchema("favorite", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["user_id", "listing_id"],
		"properties": {
			"user_id": `+positiveID+`,
			"listing_id": `+positiveID+`
		}
	}`)

	viewingCreateSchema = mustSchema("viewing_create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["start_time"],
		"properties": {
			"start_time": {"type": "string", "format": "date-time"},
			"end_time": {"type": ["string", "null"], "format": "date-time"}
		}
	}`)

	registrationSchema = mustSchema("registration", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["user_id"],
		"properties": {
			"user_id": `+positiveID+`
		}
	}`)

	reviewCreateSchema = mustSchema("review_create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["reviewer_id", "rating"],
		"properties": {
			"reviewer_id": `+positiveID+`,
			"rating": {"type": "integer", "minimum": 1, "maximum": 5},
			"comment": {"type": ["string", "null"]}
		}
	}`)

	imageCreateSchema = mustSchema("image_create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["url"],
		"properties": {
			"url": {"type": "string", "format": "uri", "minLength": 1},
			"description": {"type": ["string", "null"]},
			"position": {"type": "integer", "minimum": 0}
		}
	}`)

	addressCreateSchema = mustSchema("address_create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["street", "postal_code", "city", "country"],
		"properties": {
			"street": {"type": "string", "minLength": 1, "maxLength": 255},
			"postal_code": {"type": "string", "minLength": 1, "maxLength": 20},
			"city": {"type": "string", "minLength": 1, "maxLength": 100},
			"country": {"type": "string", "minLength": 1, "maxLength": 100}
		}
	}`)

	agencyCreateSchema = mustSchema("agency_create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["name", "email"],
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 255},
			"email": {"type": "string", "format": "email", "maxLength": 255},
			"phone": {"type": ["string", "null"], "maxLength": 50},
			"website": {"type": ["string", "null"], "maxLength": 255},
			"address_id": `+nullablePositiveID+`
		}
	}`)

	categoryCreateSchema = mustSchema("category_create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 100}
		}
	}`)

	roleCreateSchema = mustSchema("role_create", `{
		"type": "object",
		"additionalProperties": false,
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "minLength": 1, "maxLength": 50},
			"description": {"type": ["string", "null"]}
		}
	}`)
)
