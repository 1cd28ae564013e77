package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/librarium/library-backend-go/librarystore"
)

type memberRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Privileged bool   `json:"privilege"`
}

func (r memberRequest) toNewMember() librarystore.NewMember {
	return librarystore.NewMember{
		Name:       r.Name,
		Email:      r.Email,
		Privileged: r.Privileged,
	}
}

func (s *Server) handleCreateMember(c *fiber.Ctx) error {
	var request memberRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, err)
	}
	if err := s.validate.Struct(request); err != nil {
		return badRequest(c, err)
	}

	memberID, err := s.library.CreateMember(c.UserContext(), request.toNewMember())
	if err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(memberID)
}

func (s *Server) handleGetMember(c *fiber.Ctx) error {
	memberID, err := pathID(c, "member_id")
	if err != nil {
		return badRequest(c, err)
	}

	member, err := s.library.GetMemberByID(c.UserContext(), memberID)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(member)
}

func (s *Server) handleUpdateMember(c *fiber.Ctx) error {
	memberID, err := pathID(c, "member_id")
	if err != nil {
		return badRequest(c, err)
	}

	var request memberRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, err)
	}
	if err := s.validate.Struct(request); err != nil {
		return badRequest(c, err)
	}

	updated, err := s.library.UpdateMember(c.UserContext(), memberID, request.toNewMember())
	if err != nil {
		return storeError(c, err)
	}
	if !updated {
		return storeError(c, librarystore.ErrMemberNotFound)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleDeleteMember(c *fiber.Ctx) error {
	memberID, err := pathID(c, "member_id")
	if err != nil {
		return badRequest(c, err)
	}

	deleted, err := s.library.DeleteMember(c.UserContext(), memberID)
	if err != nil {
		return storeError(c, err)
	}
	if !deleted {
		return storeError(c, librarystore.ErrMemberNotFound)
	}

	return c.SendStatus(fiber.StatusOK)
}
