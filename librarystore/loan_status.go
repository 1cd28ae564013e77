package librarystore

// LoanStatus is the closed set of lifecycle states for a Loan.
//
// Open is the initial state, set only when a loan is opened.
// Returned and Overdue are terminal: the only transitions are
// Open -> Returned and Open -> Overdue, both performed by CloseLoan.
type LoanStatus int

const (
	LoanStatusOpen LoanStatus = iota
	LoanStatusReturned
	LoanStatusOverdue
)

const (
	loanStatusOpenString     = "open"
	loanStatusReturnedString = "returned"
	loanStatusOverdueString  = "overdue"
)

// String returns the on-disk (and on-the-wire) form of the status.
func (s LoanStatus) String() string {
	switch s {
	case LoanStatusOpen:
		return loanStatusOpenString
	case LoanStatusReturned:
		return loanStatusReturnedString
	case LoanStatusOverdue:
		return loanStatusOverdueString
	default:
		return ""
	}
}

// IsTerminal reports whether no further transition is defined for the status.
func (s LoanStatus) IsTerminal() bool {
	return s == LoanStatusReturned || s == LoanStatusOverdue
}

// ParseLoanStatus maps the string form back to a LoanStatus.
// Unrecognized input is rejected with ErrUnknownLoanStatus instead of
// being coerced to a default.
func ParseLoanStatus(value string) (LoanStatus, error) {
	switch value {
	case loanStatusOpenString:
		return LoanStatusOpen, nil
	case loanStatusReturnedString:
		return LoanStatusReturned, nil
	case loanStatusOverdueString:
		return LoanStatusOverdue, nil
	default:
		return LoanStatus(0), ErrUnknownLoanStatus
	}
}

// MarshalText implements encoding.TextMarshaler so the status serializes
// to its string form in JSON bodies.
func (s LoanStatus) MarshalText() ([]byte, error) {
	str := s.String()
	if str == "" {
		return nil, ErrUnknownLoanStatus
	}

	return []byte(str), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LoanStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseLoanStatus(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}
