package scoringdomain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownScoringSystem is returned when a policy name is not registered.
	ErrUnknownScoringSystem = errors.New("unknown scoring system")
	// ErrNoCentreCountData means no power has a recorded count for the requested year.
	ErrNoCentreCountData = errors.New("no centre count data for year")
	// ErrInvalidYear means the year cannot be part of any game.
	ErrInvalidYear = errors.New("invalid year")
	// ErrUnknownPower is returned when parsing an unrecognised power.
	ErrUnknownPower = errors.New("unknown great power")
	// ErrInvalidDrawProposal is returned when parsing a malformed season or vote status.
	ErrInvalidDrawProposal = errors.New("invalid draw proposal")
)

// Snapshot consistency problems reported by ValidateSnapshot.
var (
	ErrCentreCountOutOfRange  = errors.New("centre count out of range")
	ErrBoardOverflow          = errors.New("centre counts exceed board size")
	ErrResurrection           = errors.New("power has centres after elimination")
	ErrMultipleSoloers        = errors.New("more than one power reached the solo threshold")
	ErrMultiplePassedDraws    = errors.New("more than one draw proposal passed")
	ErrDrawExcludesSurvivor   = errors.New("draw proposal excludes a surviving power")
	ErrDrawIncludesEliminated = errors.New("draw proposal includes an eliminated power")
)

// SystemKind identifies which layer a scoring system belongs to.
type SystemKind string

const (
	KindGame       SystemKind = "game"
	KindRound      SystemKind = "round"
	KindTournament SystemKind = "tournament"
)

// UnknownSystemError carries the rejected name. It matches ErrUnknownScoringSystem.
type UnknownSystemError struct {
	Kind SystemKind
	Name string
}

func (e *UnknownSystemError) Error() string {
	return fmt.Sprintf("unknown %s scoring system %q", e.Kind, e.Name)
}

func (e *UnknownSystemError) Is(target error) bool {
	return target == ErrUnknownScoringSystem
}
