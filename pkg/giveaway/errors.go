// Package giveaway implements the giveaway lifecycle: entries, weighted winner
// selection, rerolls, previews awaiting confirmation and the expiry worker.
package giveaway

import (
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyCommunityBot/pkg/database"
)

var (
	// ErrPreconditionFailed is the parent of every state or eligibility rejection
	ErrPreconditionFailed = errors.New("precondition failed")

	ErrGiveawayEnded       = fmt.Errorf("%w: giveaway has ended", ErrPreconditionFailed)
	ErrGiveawayActive      = fmt.Errorf("%w: giveaway is still active", ErrPreconditionFailed)
	ErrMissingRequiredRole = fmt.Errorf("%w: member lacks every required role", ErrPreconditionFailed)
	ErrRequirementNotMet   = fmt.Errorf("%w: member does not meet the guild requirements", ErrPreconditionFailed)
	ErrPositionOutOfRange  = fmt.Errorf("%w: winner position out of range", ErrPreconditionFailed)
	ErrNoWinners           = fmt.Errorf("%w: giveaway has no winners yet", ErrPreconditionFailed)

	// ErrAlreadyEntered is a duplicate entry
	ErrAlreadyEntered = fmt.Errorf("%w: user already entered", database.ErrAlreadyExists)

	// ErrNoEligibleCandidates means the draw pool is empty
	ErrNoEligibleCandidates = errors.New("no eligible candidates")

	ErrPreviewNotFound  = errors.New("preview not found or expired")
	ErrPreviewForbidden = errors.New("preview belongs to another host")

	ErrInvalidDuration = errors.New("invalid duration")
)
