package service

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds. Every error a service returns for a client mistake wraps one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// domainError is a client-facing message tied to one error kind.
type domainError struct {
	kind error
	msg  string
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &domainError{kind: kind, msg: msg}
}

var (
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrRecipeNotFound     = newError(ErrNotFound, "recipe not found")
	ErrIngredientNotFound = newError(ErrNotFound, "ingredient not found")
	ErrTagNotFound        = newError(ErrNotFound, "tag not found")

	ErrEmailInUse         = newError(ErrConflict, "a user with this email already exists")
	ErrUsernameInUse      = newError(ErrConflict, "a user with this username already exists")
	ErrAccountExists      = newError(ErrConflict, "a user with this email or username already exists")
	ErrInvalidCredentials = newError(ErrValidation, "unable to log in with provided credentials")
	ErrInvalidToken       = newError(ErrUnauthorized, "invalid token")

	ErrSelfSubscribe     = newError(ErrValidation, "you cannot subscribe to yourself")
	ErrAlreadySubscribed = newError(ErrConflict, "you are already subscribed to this user")
	ErrNotSubscribed     = newError(ErrNotFound, "you are not subscribed to this user")

	ErrRecipeNameTaken = newError(ErrConflict, "a recipe with this name already exists")
	ErrNotRecipeAuthor = newError(ErrForbidden, "only the author can change this recipe")

	ErrAlreadyFavorited = newError(ErrConflict, "recipe is already in favorites")
	ErrNotFavorited     = newError(ErrNotFound, "recipe is not in favorites")
	ErrAlreadyInCart    = newError(ErrConflict, "recipe is already in the shopping cart")
	ErrNotInCart        = newError(ErrNotFound, "recipe is not in the shopping cart")
)

// ValidationError collects per-field messages for one request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records msg for field unless the field already has a message.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when no field was rejected.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func fieldError(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}
