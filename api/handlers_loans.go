package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/librarium/library-backend-go/librarystore"
)

type openLoanRequest struct {
	MemberID string `json:"member_id" validate:"required,uuid"`
	BookID   string `json:"book_id" validate:"required,uuid"`
	DueDate  int64  `json:"due_date"`
}

type closeLoanRequest struct {
	// Status must decode to a terminal loan state; the engine rejects Open.
	Status librarystore.LoanStatus `json:"status"`
}

func (s *Server) handleOpenLoan(c *fiber.Ctx) error {
	var request openLoanRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, err)
	}
	if err := s.validate.Struct(request); err != nil {
		return badRequest(c, err)
	}

	memberID, err := uuid.Parse(request.MemberID)
	if err != nil {
		return badRequest(c, err)
	}
	bookID, err := uuid.Parse(request.BookID)
	if err != nil {
		return badRequest(c, err)
	}

	loanID, err := s.library.OpenLoan(c.UserContext(), memberID, bookID, request.DueDate)
	if err != nil {
		return storeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(loanID)
}

func (s *Server) handleGetLoan(c *fiber.Ctx) error {
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return badRequest(c, err)
	}

	loan, err := s.library.GetLoanByID(c.UserContext(), loanID)
	if err != nil {
		return storeError(c, err)
	}

	return c.JSON(loan)
}

func (s *Server) handleCloseLoan(c *fiber.Ctx) error {
	loanID, err := pathID(c, "loan_id")
	if err != nil {
		return badRequest(c, err)
	}

	var request closeLoanRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, err)
	}

	closed, err := s.library.CloseLoan(c.UserContext(), loanID, request.Status)
	if err != nil {
		return storeError(c, err)
	}
	if !closed {
		return storeError(c, librarystore.ErrLoanNotFound)
	}

	return c.SendStatus(fiber.StatusOK)
}
