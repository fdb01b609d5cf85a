package server

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"agentic-rag/internal/index"
	"agentic-rag/internal/models"
	"agentic-rag/internal/rag"
)

type sessionResponse struct {
	ID       string        `json:"id"`
	History  []models.Turn `json:"history"`
	Document *index.Info   `json:"document,omitempty"`
	Busy     bool          `json:"busy"`
}

type uploadResponse struct {
	Indexed  bool        `json:"indexed"`
	Document *index.Info `json:"document,omitempty"`
}

type messageRequest struct {
	Prompt string `json:"prompt" validate:"required,max=8000"`
}

type messageResponse struct {
	Answer string        `json:"answer"`
	Frames []string      `json:"frames"`
	Turns  []models.Turn `json:"turns"`
}

func describe(s *rag.Session) sessionResponse {
	resp := sessionResponse{ID: s.ID, History: s.History(), Busy: s.Busy()}
	if resp.History == nil {
		resp.History = []models.Turn{}
	}
	if info, ok := s.DocumentInfo(); ok {
		resp.Document = &info
	}
	return resp
}

func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	if err := s.model.Ping(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse("model endpoint unreachable: "+err.Error(), false))
	}
	return c.JSON(SuccessResponse("ok", fiber.Map{"model": s.cfg.Model.Name, "sessions": s.sessions.Count()}))
}

func (s *Server) createSession(c *fiber.Ctx) error {
	sess := s.sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(SuccessResponse("Session created", describe(sess)))
}

func (s *Server) showSession(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(SuccessResponse("Session found", describe(sess)))
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	if err := s.sessions.Delete(c.Params("id")); err != nil {
		return err
	}
	return c.JSON(SuccessResponse[any]("Session deleted", nil))
}

func (s *Server) resetSession(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}
	sess.Reset()
	return c.JSON(SuccessResponse("Chat cleared", describe(sess)))
}

func (s *Server) uploadDocument(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "multipart field \"file\" is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	indexed, err := s.orchestrator.Upload(c.UserContext(), sess, fh.Filename, data)
	if err != nil {
		return upstream(err)
	}

	resp := uploadResponse{Indexed: indexed}
	if info, ok := sess.DocumentInfo(); ok {
		resp.Document = &info
	}
	message := "PDF indexed! Ready to chat."
	if !indexed {
		message = "A document is already indexed for this session"
	}
	return c.JSON(SuccessResponse(message, resp))
}

func (s *Server) submitMessage(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}

	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return validationError(err)
	}

	answer, err := s.orchestrator.Submit(c.UserContext(), sess, req.Prompt)
	if err != nil {
		return upstream(err)
	}

	return c.JSON(SuccessResponse("Success", messageResponse{
		Answer: answer,
		Frames: rag.Replay(answer),
		Turns:  sess.History(),
	}))
}

func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	fe := ve[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fiber.NewError(fiber.StatusBadRequest, field+" is required")
	case "max":
		return fiber.NewError(fiber.StatusBadRequest, field+" must be at most "+fe.Param()+" characters")
	}
	return fiber.NewError(fiber.StatusBadRequest, field+" is invalid")
}
