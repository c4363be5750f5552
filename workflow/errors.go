package workflow

import (
	"context"
	"errors"
	"fmt"

	"Gin_postgres_redis_lab_inventory/db"
)

// Kind 错误分类；任何一类都不会留下部分写入
type Kind int

const (
	KindValidation  Kind = iota + 1 // caller's input is malformed
	KindNotFound                    // unknown team, component, request or issue
	KindConflict                    // duplicate, insufficient stock, already processed
	KindTransaction                 // commit failed; rolled back, safe to retry
	KindForbidden                   // identity may not perform the operation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransaction:
		return "transaction_failure"
	case KindForbidden:
		return "forbidden"
	}
	return "unknown"
}

var (
	ErrInvalidAction        = errors.New("action must be accept or reject")
	ErrInvalidLoanPeriod    = errors.New("loan period must be between 1 and 90 days")
	ErrComponentUnavailable = errors.New("component unavailable")
	ErrForbidden            = errors.New("operation not permitted for this identity")
	ErrAccountDisabled      = errors.New("account disabled")
)

type Error struct {
	Kind Kind
	Code string
	Op   string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

type class struct {
	kind Kind
	code string
}

var classes = []struct {
	err error
	class
}{
	{db.ErrInvalidQuantity, class{KindValidation, "INVALID_QUANTITY"}},
	{db.ErrInvalidTeamNumber, class{KindValidation, "INVALID_TEAM_NUMBER"}},
	{db.ErrInvalidRollNumber, class{KindValidation, "INVALID_ROLL_NUMBER"}},
	{db.ErrNoMembers, class{KindValidation, "NO_MEMBERS"}},
	{db.ErrInvalidComponent, class{KindValidation, "INVALID_COMPONENT"}},
	{db.ErrInvalidStatus, class{KindValidation, "INVALID_STATUS"}},
	{ErrInvalidAction, class{KindValidation, "INVALID_ACTION"}},
	{ErrInvalidLoanPeriod, class{KindValidation, "INVALID_LOAN_PERIOD"}},

	{db.ErrComponentNotFound, class{KindNotFound, "COMPONENT_NOT_FOUND"}},
	{db.ErrTeamNotFound, class{KindNotFound, "TEAM_NOT_FOUND"}},
	{db.ErrMemberNotFound, class{KindNotFound, "MEMBER_NOT_FOUND"}},
	{db.ErrRequestNotFound, class{KindNotFound, "REQUEST_NOT_FOUND"}},
	{db.ErrIssueNotFound, class{KindNotFound, "ISSUE_NOT_FOUND"}},

	{db.ErrInsufficientStock, class{KindConflict, "INSUFFICIENT_STOCK"}},
	{db.ErrDuplicateTeam, class{KindConflict, "DUPLICATE_TEAM"}},
	{db.ErrDuplicateRollNumber, class{KindConflict, "DUPLICATE_ROLL_NUMBER"}},
	{db.ErrDuplicateComponent, class{KindConflict, "DUPLICATE_COMPONENT"}},
	{db.ErrAlreadyReturned, class{KindConflict, "ALREADY_RETURNED"}},
	{ErrComponentUnavailable, class{KindConflict, "COMPONENT_UNAVAILABLE"}},

	{ErrForbidden, class{KindForbidden, "FORBIDDEN"}},
	{ErrAccountDisabled, class{KindForbidden, "ACCOUNT_DISABLED"}},
}

// wrap 给 err 归类；认不出的都来自数据库或 context，按事务失败处理
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var we *Error
	if errors.As(err, &we) {
		return err
	}
	for _, c := range classes {
		if errors.Is(err, c.err) {
			return &Error{Kind: c.kind, Code: c.code, Op: op, Err: err}
		}
	}
	code := "TRANSACTION_FAILURE"
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		code = "TIMEOUT"
	}
	return &Error{Kind: KindTransaction, Code: code, Op: op, Err: err}
}

// KindOf 非 workflow 错误返回 0
func KindOf(err error) Kind {
	var we *Error
	if errors.As(err, &we) {
		return we.Kind
	}
	return 0
}

// CodeOf 稳定的错误码，非 workflow 错误返回 ""
func CodeOf(err error) string {
	var we *Error
	if errors.As(err, &we) {
		return we.Code
	}
	return ""
}
