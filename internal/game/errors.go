package game

import "errors"

// Action errors. Every operation reports why it refused so the
// presentation layer can surface feedback instead of failing
// silently.
var (
	ErrInsufficientGold     = errors.New("insufficient gold")
	ErrInsufficientWorkers  = errors.New("insufficient uneducated workers")
	ErrInsufficientMaterial = errors.New("insufficient raw materials")
	ErrNotFound             = errors.New("not found")
	ErrInvalidStage         = errors.New("invalid stage for this action")
	ErrUnauthorized         = errors.New("player not authorized for this action")
	ErrEmptyText            = errors.New("empty text")
	ErrInvalidPlayer        = errors.New("invalid player index")
	ErrInvalidBallot        = errors.New("invalid ballot")
	ErrTooManyRoles         = errors.New("a player may declare for at most two roles")
	ErrNoPendingApproval    = errors.New("no building awaiting approval")
	ErrApprovalPending      = errors.New("a building request is already pending")
)
