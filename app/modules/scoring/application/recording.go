package scoringservice

import (
	"context"
	"errors"
	"fmt"

	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/observability/attr"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrEmptyDrawProposal is returned for a draw vote naming no powers outside a DIAS tournament.
var ErrEmptyDrawProposal = errors.New("draw proposal names no powers")

// errRollback aborts a transaction that ended in a business failure.
var errRollback = errors.New("rollback")

type gameContext struct {
	game       *scoringdb.Game
	tournament *scoringdb.Tournament
	history    *scoringdomain.GameHistory
	snapshot   scoringdomain.Snapshot
}

func (s *ScoringService) loadGameContext(ctx context.Context, db bun.IDB, gameID uuid.UUID) (*gameContext, error) {
	game, err := s.repo.GetGame(ctx, db, gameID)
	if err != nil {
		return nil, err
	}
	round, err := s.repo.GetRound(ctx, db, game.RoundUUID)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.GetTournament(ctx, db, round.TournamentUUID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.ListCentreCounts(ctx, db, gameID)
	if err != nil {
		return nil, err
	}
	proposals, err := s.repo.ListDrawProposals(ctx, db, gameID)
	if err != nil {
		return nil, err
	}
	snapshot, err := scoringdb.ToSnapshot(s.boardOf(t), game, counts, proposals)
	if err != nil {
		return nil, err
	}
	return &gameContext{
		game:       game,
		tournament: t,
		history:    scoringdomain.NewGameHistory(snapshot),
		snapshot:   snapshot,
	}, nil
}

// RecordCentreCounts stores a game's counts after checking the game stays consistent.
func (s *ScoringService) RecordCentreCounts(ctx context.Context, gameID uuid.UUID, counts []scoringdomain.CentreCount) error {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		return s.recordCentreCountsLogic(ctx, db, gameID, counts)
	}

	_, err := unwrap(withTelemetry(s, ctx, "RecordCentreCounts", gameID.String(), func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return runInTx(s, ctx, recordTx)
	}))
	return err
}

func (s *ScoringService) recordCentreCountsLogic(ctx context.Context, db bun.IDB, gameID uuid.UUID, counts []scoringdomain.CentreCount) (results.OperationResult[struct{}, error], error) {
	gc, err := s.loadGameContext(ctx, db, gameID)
	if err != nil {
		return fail[struct{}](err)
	}
	for _, c := range counts {
		if c.Year < scoringdomain.FirstGameYear {
			return results.FailureResult[struct{}, error](fmt.Errorf("%w: %d", scoringdomain.ErrInvalidYear, c.Year)), nil
		}
		if !c.Power.Valid() {
			return results.FailureResult[struct{}, error](fmt.Errorf("%w: %q", scoringdomain.ErrUnknownPower, c.Power)), nil
		}
	}

	next := gc.snapshot
	next.Counts = append(append([]scoringdomain.CentreCount{}, gc.snapshot.Counts...), counts...)
	if err := scoringdomain.ValidateSnapshot(scoringdomain.NewGameHistory(next), gc.tournament.DIAS); err != nil {
		return results.FailureResult[struct{}, error](err), nil
	}

	if err := s.repo.UpsertCentreCounts(ctx, db, scoringdb.FromCentreCounts(gc.game, counts)); err != nil {
		return results.OperationResult[struct{}, error]{}, err
	}
	s.logger.InfoContext(ctx, "Centre counts recorded",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("game_id", gameID),
		attr.Int("counts", len(counts)),
	)
	return results.SuccessResult[struct{}, error](struct{}{}), nil
}

// RecordDrawProposal stores a draw vote. In a DIAS tournament a vote naming
// no powers is for every survivor of the year before it.
func (s *ScoringService) RecordDrawProposal(ctx context.Context, gameID uuid.UUID, proposal scoringdomain.DrawProposal) error {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[struct{}, error], error) {
		return s.recordDrawProposalLogic(ctx, db, gameID, proposal)
	}

	_, err := unwrap(withTelemetry(s, ctx, "RecordDrawProposal", gameID.String(), func(ctx context.Context) (results.OperationResult[struct{}, error], error) {
		return runInTx(s, ctx, recordTx)
	}))
	return err
}

func (s *ScoringService) recordDrawProposalLogic(ctx context.Context, db bun.IDB, gameID uuid.UUID, proposal scoringdomain.DrawProposal) (results.OperationResult[struct{}, error], error) {
	gc, err := s.loadGameContext(ctx, db, gameID)
	if err != nil {
		return fail[struct{}](err)
	}
	if proposal.Year < scoringdomain.FirstGameYear {
		return results.FailureResult[struct{}, error](fmt.Errorf("%w: %d", scoringdomain.ErrInvalidYear, proposal.Year)), nil
	}
	season, err := scoringdomain.ParseSeason(string(proposal.Season))
	if err != nil {
		return fail[struct{}](err)
	}
	status, err := scoringdomain.ParseDrawStatus(string(proposal.Status))
	if err != nil {
		return fail[struct{}](err)
	}
	proposal.Season, proposal.Status = season, status
	if len(proposal.Powers) == 0 {
		if !gc.tournament.DIAS {
			return results.FailureResult[struct{}, error](ErrEmptyDrawProposal), nil
		}
		proposal.Powers = gc.history.DIASPowers(proposal.Year)
	}

	next := gc.snapshot
	next.Proposals = append(append([]scoringdomain.DrawProposal{}, gc.snapshot.Proposals...), proposal)
	if err := scoringdomain.ValidateSnapshot(scoringdomain.NewGameHistory(next), gc.tournament.DIAS); err != nil {
		return results.FailureResult[struct{}, error](err), nil
	}

	if err := s.repo.InsertDrawProposal(ctx, db, scoringdb.FromDrawProposal(gc.game, proposal)); err != nil {
		return results.OperationResult[struct{}, error]{}, err
	}
	s.logger.InfoContext(ctx, "Draw proposal recorded",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("game_id", gameID),
		attr.String("status", string(proposal.Status)),
		attr.Int("powers", len(proposal.Powers)),
	)
	return results.SuccessResult[struct{}, error](struct{}{}), nil
}

// FinishGame marks a game over and schedules its scores to be stored.
func (s *ScoringService) FinishGame(ctx context.Context, gameID uuid.UUID) (*GameScoreResult, error) {
	finishTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*GameScoreResult, error], error) {
		if err := s.repo.MarkGameFinished(ctx, db, gameID); err != nil {
			if errors.Is(err, scoringdb.ErrNoRowsAffected) {
				return fail[*GameScoreResult](fmt.Errorf("game %s: %w", gameID, scoringdb.ErrNotFound))
			}
			return fail[*GameScoreResult](err)
		}
		scored, err := s.scoreGameLogic(ctx, db, gameID)
		if err == nil && scored.IsFailure() {
			// A game that cannot be scored stays open.
			return scored, errRollback
		}
		return scored, err
	}

	scored, err := unwrap(withTelemetry(s, ctx, "FinishGame", gameID.String(), func(ctx context.Context) (results.OperationResult[*GameScoreResult, error], error) {
		result, err := runInTx(s, ctx, finishTx)
		if errors.Is(err, errRollback) {
			return result, nil
		}
		return result, err
	}))
	if err != nil {
		return nil, err
	}

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleStoreScores(ctx, gameID); err != nil {
			return scored, fmt.Errorf("failed to schedule score storage: %w", err)
		}
		return scored, nil
	}
	if _, err := s.StoreScores(ctx, gameID); err != nil {
		return scored, err
	}
	return scored, nil
}

// StoreScores persists the scores of every game, round and player in the
// tournament the game belongs to.
func (s *ScoringService) StoreScores(ctx context.Context, gameID uuid.UUID) (*StoredScores, error) {
	storeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*StoredScores, error], error) {
		return s.storeScoresLogic(ctx, db, gameID)
	}

	return unwrap(withTelemetry(s, ctx, "StoreScores", gameID.String(), func(ctx context.Context) (results.OperationResult[*StoredScores, error], error) {
		return runInTx(s, ctx, storeTx)
	}))
}

func (s *ScoringService) storeScoresLogic(ctx context.Context, db bun.IDB, gameID uuid.UUID) (results.OperationResult[*StoredScores, error], error) {
	game, err := s.repo.GetGame(ctx, db, gameID)
	if err != nil {
		return fail[*StoredScores](err)
	}
	round, err := s.repo.GetRound(ctx, db, game.RoundUUID)
	if err != nil {
		return fail[*StoredScores](err)
	}
	view, err := s.loadTournament(ctx, db, round.TournamentUUID)
	if err != nil {
		return fail[*StoredScores](err)
	}

	stored := &StoredScores{TournamentID: view.tournament.UUID, GameID: gameID}
	for _, r := range view.rounds {
		for _, g := range view.games[r.round.UUID] {
			byPower := make(map[string]float64, len(g.scores))
			for p, score := range g.scores {
				byPower[p.String()] = score
			}
			if err := s.repo.SaveGameScores(ctx, db, g.game.UUID, byPower); err != nil {
				return results.OperationResult[*StoredScores, error]{}, err
			}
			stored.Games++
		}

		res, err := r.result(view.systems.round)
		if err != nil {
			return results.OperationResult[*StoredScores, error]{}, err
		}
		if err := s.repo.SaveRoundScores(ctx, db, r.round.UUID, res.Scores); err != nil {
			return results.OperationResult[*StoredScores, error]{}, err
		}
		stored.Rounds++
	}

	totals, err := s.tournamentResult(ctx, view)
	if err != nil {
		return fail[*StoredScores](err)
	}
	if err := s.repo.SaveTournamentScores(ctx, db, view.tournament.UUID, totals.Scores); err != nil {
		return results.OperationResult[*StoredScores, error]{}, err
	}
	stored.Players = len(totals.Scores)

	s.logger.InfoContext(ctx, "Scores stored",
		attr.ExtractCorrelationID(ctx),
		attr.UUID("tournament_id", stored.TournamentID),
		attr.Int("games", stored.Games),
		attr.Int("rounds", stored.Rounds),
		attr.Int("players", stored.Players),
	)
	return results.SuccessResult[*StoredScores, error](stored), nil
}
