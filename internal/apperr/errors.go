// Package apperr regroupe les erreurs renvoyées aux clients.
// Les messages sont volontairement génériques : le détail reste dans les logs.
package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind string

const (
	FileTooLarge            Kind = "file_too_large"
	EmptyFile               Kind = "empty_file"
	FileTypeNotAllowed      Kind = "file_type_not_allowed"
	InvalidFileType         Kind = "invalid_file_type"
	InvalidInput            Kind = "invalid_input"
	MissingFields           Kind = "missing_fields"
	PostCreationFailed      Kind = "post_creation_failed"
	PostNotFoundOrForbidden Kind = "post_not_found_or_forbidden"
	DirectCallDenied        Kind = "direct_call_denied"
	UpdateFailed            Kind = "update_failed"
	Unauthorized            Kind = "unauthorized"
	FileNotFound            Kind = "file_not_found"
	ListFailed              Kind = "list_failed"
)

var messages = map[Kind]string{
	FileTooLarge:            "File too large",
	EmptyFile:               "Empty File",
	FileTypeNotAllowed:      "File type not allowed",
	InvalidFileType:         "Invalid file type",
	InvalidInput:            "Invalid input",
	MissingFields:           "Missing required fields",
	PostCreationFailed:      "Failed to create post",
	PostNotFoundOrForbidden: "Post not found or forbidden",
	DirectCallDenied:        "Direct calls are not allowed. Access denied!",
	UpdateFailed:            "Error in updating post",
	Unauthorized:            "Unauthorized",
	FileNotFound:            "File not found",
	ListFailed:              "Failed to load posts",
}

var statuses = map[Kind]int{
	FileTooLarge:            http.StatusRequestEntityTooLarge,
	EmptyFile:               http.StatusBadRequest,
	FileTypeNotAllowed:      http.StatusBadRequest,
	InvalidFileType:         http.StatusBadRequest,
	InvalidInput:            http.StatusBadRequest,
	MissingFields:           http.StatusBadRequest,
	PostCreationFailed:      http.StatusInternalServerError,
	PostNotFoundOrForbidden: http.StatusForbidden,
	DirectCallDenied:        http.StatusBadRequest,
	UpdateFailed:            http.StatusInternalServerError,
	Unauthorized:            http.StatusUnauthorized,
	FileNotFound:            http.StatusNotFound,
	ListFailed:              http.StatusInternalServerError,
}

// Message renvoie le texte exposé au client pour ce type d'erreur.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return "Internal error"
}

// Status renvoie le code HTTP associé.
func (k Kind) Status() int {
	if s, ok := statuses[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error porte un Kind et, éventuellement, la cause technique (jamais exposée).
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is permet errors.Is(err, apperr.New(kind)).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind && t.Err == nil
	}
	return false
}

func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extrait le Kind d'une erreur ; une erreur inconnue devient vide.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Respond interrompt la requête avec le JSON {"error": ...} correspondant.
func Respond(c *gin.Context, err error) {
	kind := KindOf(err)
	c.AbortWithStatusJSON(kind.Status(), gin.H{"error": kind.Message()})
}
