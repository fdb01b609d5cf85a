package server

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"agentic-rag/internal/document"
	"agentic-rag/internal/logging"
	"agentic-rag/internal/rag"
	"agentic-rag/internal/session"
)

// upstreamError is a failure of the model endpoint or a tool behind it
type upstreamError struct {
	err error
}

func (e *upstreamError) Error() string { return e.err.Error() }
func (e *upstreamError) Unwrap() error { return e.err }

// upstream marks errors the orchestrator could not classify as coming from
// the model endpoint or search provider
func upstream(err error) error {
	switch {
	case err == nil:
		return nil
	case rag.IsFatal(err),
		errors.Is(err, rag.ErrEmptyPrompt),
		errors.Is(err, rag.ErrSessionBusy),
		errors.Is(err, document.ErrNotPDF),
		errors.Is(err, document.ErrNoText):
		return err
	}
	return &upstreamError{err: err}
}

func statusOf(err error) int {
	var fe *fiber.Error
	var ve validator.ValidationErrors
	var ue *upstreamError

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, rag.ErrSessionBusy):
		return fiber.StatusConflict
	case errors.Is(err, rag.ErrEmptyPrompt),
		errors.Is(err, document.ErrNotPDF),
		errors.Is(err, document.ErrNoText),
		errors.As(err, &ve):
		return fiber.StatusBadRequest
	case rag.IsFatal(err):
		return fiber.StatusInternalServerError
	case errors.As(err, &ue):
		return fiber.StatusBadGateway
	case errors.As(err, &fe):
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// errorHandler writes every handler error as a JSON envelope
func errorHandler(c *fiber.Ctx, err error) error {
	code := statusOf(err)
	if code >= fiber.StatusInternalServerError {
		logging.Error("%s %s: %v", c.Method(), c.Path(), err)
	} else {
		logging.Debug("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(ErrorResponse(err.Error(), rag.IsFatal(err)))
}
