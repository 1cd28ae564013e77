package api

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/librarium/library-backend-go/librarystore"
)

const (
	headerRequestID = "X-Request-ID"

	logMsgRequestHandled = "request handled"

	logAttrMethod     = "method"
	logAttrPath       = "path"
	logAttrStatus     = "status"
	logAttrDurationMS = "duration_ms"
	logAttrRequestID  = "request_id"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Library is the store surface the HTTP layer depends on.
// It is satisfied by *postgresengine.Library.
type Library interface {
	CreateBook(ctx context.Context, newBook librarystore.NewBook) (uuid.UUID, error)
	GetBookByID(ctx context.Context, id uuid.UUID) (librarystore.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, fields librarystore.NewBook) (bool, error)
	DeleteBook(ctx context.Context, id uuid.UUID) (bool, error)

	CreateMember(ctx context.Context, newMember librarystore.NewMember) (uuid.UUID, error)
	GetMemberByID(ctx context.Context, id uuid.UUID) (librarystore.Member, error)
	UpdateMember(ctx context.Context, id uuid.UUID, fields librarystore.NewMember) (bool, error)
	DeleteMember(ctx context.Context, id uuid.UUID) (bool, error)

	OpenLoan(ctx context.Context, memberID, bookID uuid.UUID, dueTimestamp int64) (uuid.UUID, error)
	CloseLoan(ctx context.Context, loanID uuid.UUID, newStatus librarystore.LoanStatus) (bool, error)
	GetLoanByID(ctx context.Context, id uuid.UUID) (librarystore.Loan, error)
}

// Server wires the HTTP routes onto a Library.
type Server struct {
	app      *fiber.App
	library  Library
	validate *validator.Validate
	logger   librarystore.ContextualLogger
}

// Option configures a Server created by NewServer.
type Option func(*Server)

// WithContextualLogger sets the logger used for request logging.
func WithContextualLogger(logger librarystore.ContextualLogger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer builds the fiber application with all routes registered.
func NewServer(library Library, options ...Option) *Server {
	server := &Server{
		library:  library,
		validate: validator.New(),
	}

	for _, option := range options {
		option(server)
	}

	server.app = fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	server.app.Use(server.requestLogging)
	server.registerRoutes()

	return server
}

// App exposes the underlying fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on the given address until Shutdown is called.
func (s *Server) Listen(address string) error {
	return s.app.Listen(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	books := s.app.Group("/books")
	books.Post("/", s.handleCreateBook)
	books.Get("/:book_id", s.handleGetBook)
	books.Put("/:book_id", s.handleUpdateBook)
	books.Delete("/:book_id", s.handleDeleteBook)

	members := s.app.Group("/members")
	members.Post("/new", s.handleCreateMember)
	members.Get("/:member_id", s.handleGetMember)
	members.Put("/:member_id", s.handleUpdateMember)
	members.Delete("/:member_id", s.handleDeleteMember)

	loans := s.app.Group("/loans")
	loans.Post("/new", s.handleOpenLoan)
	loans.Get("/:loan_id", s.handleGetLoan)
	loans.Delete("/:loan_id", s.handleCloseLoan)
}

// requestLogging assigns a request id and logs every handled request.
func (s *Server) requestLogging(c *fiber.Ctx) error {
	requestID := c.Get(headerRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(headerRequestID, requestID)

	start := time.Now()
	err := c.Next()
	durationMS := float64(time.Since(start).Nanoseconds()) / 1e6

	if s.logger != nil {
		s.logger.InfoContext(c.UserContext(), logMsgRequestHandled,
			logAttrMethod, c.Method(),
			logAttrPath, c.Path(),
			logAttrStatus, c.Response().StatusCode(),
			logAttrDurationMS, durationMS,
			logAttrRequestID, requestID)
	}

	return err
}

// pathID parses the named path parameter as a UUID.
func pathID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}
