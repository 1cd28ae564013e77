package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/librarium/library-backend-go/librarystore"
)

type bookRequest struct {
	Title           string  `json:"title" validate:"required"`
	Author          string  `json:"author" validate:"required"`
	PublicationYear int     `json:"publication_year" validate:"required"`
	ISBN            *string `json:"isbn"`
}

func (r bookRequest) toNewBook() librarystore.NewBook {
	return librarystore.NewBook{
		Title:           r.Title,
		Author:          r.Author,
		PublicationYear: r.PublicationYear,
		ISBN:            r.ISBN,
	}
}

func (s *Server) handleCreateBook(c *fiber.Ctx) error {
	var request bookRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, err)
	}
	if err := s.validate.Struct(request); err != nil {
		return badRequest(c, err)
	}

	bookID, err := s.library.CreateBook(c.UserContext(), request.toNewBook())
	if err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(bookID)
}

func (s *Server) handleGetBook(c *fiber.Ctx) error {
	bookID, err := pathID(c, "book_id")
	if err != nil {
		return badRequest(c, err)
	}

	book, err := s.library.GetBookByID(c.UserContext(), bookID)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(book)
}

func (s *Server) handleUpdateBook(c *fiber.Ctx) error {
	bookID, err := pathID(c, "book_id")
	if err != nil {
		return badRequest(c, err)
	}

	var request bookRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, err)
	}
	if err := s.validate.Struct(request); err != nil {
		return badRequest(c, err)
	}

	updated, err := s.library.UpdateBook(c.UserContext(), bookID, request.toNewBook())
	if err != nil {
		return storeError(c, err)
	}
	if !updated {
		return storeError(c, librarystore.ErrBookNotFound)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleDeleteBook(c *fiber.Ctx) error {
	bookID, err := pathID(c, "book_id")
	if err != nil {
		return badRequest(c, err)
	}

	deleted, err := s.library.DeleteBook(c.UserContext(), bookID)
	if err != nil {
		return storeError(c, err)
	}
	if !deleted {
		return storeError(c, librarystore.ErrBookNotFound)
	}

	return c.SendStatus(fiber.StatusOK)
}
