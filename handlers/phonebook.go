package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/TechHubXperts/project-AnuAleMagar/datastores"
)

// Phonebook serves the phonebook resource at /phonebook.
type Phonebook struct {
	Store        ds.EntriesStore
	ErrorHandler func(context.Context, error)
}

type EntryModel struct {
	ID          string    `json:"id"              readOnly:"true" example:"AZn3tqzFdvKqTjWMlkQ3Xg"`
	Name        string    `json:"name"                            example:"Alice"`
	PhoneNumber string    `json:"phoneNumber"                     example:"+1-555-0001"`
	Email       string    `json:"email,omitempty"                 example:"alice@example.com"`
	CreatedAt   time.Time `json:"createdAt"       readOnly:"true"`
	UpdatedAt   time.Time `json:"updatedAt"       readOnly:"true"`
}

// EntryInput is the request body of create and update. Its fields are
// optional in the schema so that missing ones are answered with 400.
// Unknown properties are ignored, so a fetched entry can be sent back as is.
type EntryInput struct {
	_           struct{} `json:"-"                     additionalProperties:"true"`
	Name        string   `json:"name,omitempty"        example:"Alice"             doc:"Name of the contact, required"`
	PhoneNumber string   `json:"phoneNumber,omitempty" example:"+1-555-0001"       doc:"Phone number, required"`
	Email       string   `json:"email,omitempty"       example:"alice@example.com" doc:"Email address"`
}

func (in *EntryInput) fields() ds.Fields {
	return ds.Fields{Name: in.Name, Phone: in.PhoneNumber, Email: in.Email}
}

func entryModel(e *ds.Entry) EntryModel {
	return EntryModel{
		ID:          e.ID.String(),
		Name:        e.Name,
		PhoneNumber: e.Phone,
		Email:       e.Email,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// EntryError is a failure on the entry a request names.
type EntryError struct {
	ID  string
	Err error
}

func (e *EntryError) Error() string { return "entry " + e.ID + ": " + e.Err.Error() }

func (e *EntryError) Unwrap() error { return e.Err }

// parseID answers unparsable ids like unknown ones.
func parseID(s string) (ds.EntryID, error) {
	id, err := ds.ParseEntryID(s)
	if err != nil {
		err = &EntryError{ID: s, Err: err}
		return id, errors.Join(huma.Error404NotFound("id not found", err), err)
	}
	return id, nil
}

// statusError maps store errors to HTTP errors. The store error stays in the
// returned chain for [errors.Is] and [errors.As].
func statusError(err error) error {
	var verr *ds.ValidationError
	switch {
	case errors.Is(err, ds.ErrObjectNotFound):
		return errors.Join(huma.Error404NotFound("id not found", err), err)
	case errors.As(err, &verr):
		return errors.Join(huma.Error400BadRequest("validation failed", &huma.ErrorDetail{
			Message:  verr.Reason,
			Location: "body." + verr.Field,
		}), err)
	default:
		return err
	}
}

func entryError(id ds.EntryID, err error) error {
	return statusError(&EntryError{ID: id.String(), Err: err})
}

func (h *Phonebook) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/phonebook",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opSummary("list-entries", "List phonebook entries"),
		opErrors(http.StatusInternalServerError),
	)
}

type EntriesListOutput struct {
	Body []EntryModel
}

func (h *Phonebook) list(ctx context.Context, _ *struct{}) (*EntriesListOutput, error) {
	entries, err := h.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	body := make([]EntryModel, 0, len(entries))
	for _, e := range entries {
		body = append(body, entryModel(e))
	}

	return &EntriesListOutput{Body: body}, nil
}

type EntryOutput struct {
	Body EntryModel
}

func (h *Phonebook) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/phonebook/{id}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opSummary("get-entry", "Get a phonebook entry"),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

func (h *Phonebook) get(ctx context.Context, input *struct {
	ID string `path:"id" doc:"ID of the entry to get"`
}) (*EntryOutput, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}

	entry, err := h.Store.Get(ctx, id)
	if err != nil {
		return nil, entryError(id, err)
	}
	return &EntryOutput{Body: entryModel(entry)}, nil
}

func (h *Phonebook) RegisterPost(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/phonebook",
		handlerWithErrorHandler(h.post, h.ErrorHandler),
		opSummary("create-entry", "Create a phonebook entry"),
		opStatus(http.StatusOK),
		opErrors(http.StatusBadRequest, http.StatusInternalServerError),
	)
}

func (h *Phonebook) post(ctx context.Context, input *struct {
	Body EntryInput
}) (*EntryOutput, error) {
	fields := input.Body.fields()
	if err := fields.Validate(); err != nil {
		return nil, statusError(err)
	}

	entry, err := h.Store.Create(ctx, fields)
	if err != nil {
		return nil, statusError(err)
	}
	return &EntryOutput{Body: entryModel(entry)}, nil
}

func (h *Phonebook) RegisterPut(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/phonebook/{id}",
		handlerWithErrorHandler(h.put, h.ErrorHandler),
		opSummary("update-entry", "Replace a phonebook entry"),
		opErrors(http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError),
	)
}

func (h *Phonebook) put(ctx context.Context, input *struct {
	ID   string `path:"id" doc:"ID of the entry to update"`
	Body EntryInput
}) (*EntryOutput, error) {
	fields := input.Body.fields()
	if err := fields.Validate(); err != nil {
		return nil, statusError(err)
	}
	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}

	entry, err := h.Store.Update(ctx, id, fields)
	if err != nil {
		return nil, entryError(id, err)
	}
	return &EntryOutput{Body: entryModel(entry)}, nil
}

func (h *Phonebook) RegisterDel(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/phonebook/{id}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opSummary("delete-entry", "Delete a phonebook entry"),
		opStatus(http.StatusOK),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

type EntriesDeleteOutput struct {
	Body struct {
		Message string `json:"message" example:"phonebook entry deleted"`
	}
}

func (h *Phonebook) del(ctx context.Context, input *struct {
	ID string `path:"id" doc:"ID of the entry to delete"`
}) (*EntriesDeleteOutput, error) {
	id, err := parseID(input.ID)
	if err != nil {
		return nil, err
	}

	if err := h.Store.Delete(ctx, id); err != nil {
		return nil, entryError(id, err)
	}
	out := &EntriesDeleteOutput{}
	out.Body.Message = "phonebook entry deleted"
	return out, nil
}
