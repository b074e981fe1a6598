package scoringservice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Black-And-White-Club/dip-scoring/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"
)

const standingsSheet = "Standings"

// BuildStandingsWorkbook writes standings to an xlsx workbook with one row
// per player and one column per round. Unranked players show an empty rank.
func BuildStandingsWorkbook(standings []Standing) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), standingsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rounds := 0
	for _, st := range standings {
		rounds = max(rounds, len(st.Rounds))
	}

	header := []interface{}{"Rank", "Player", "Score"}
	for i := 1; i <= rounds; i++ {
		header = append(header, fmt.Sprintf("Round %d", i))
	}
	if err := f.SetSheetRow(standingsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for idx, st := range standings {
		row := make([]interface{}, 0, len(header))
		if st.Rank > 0 {
			row = append(row, st.Rank)
		} else {
			row = append(row, "")
		}
		row = append(row, st.Name, st.Score)
		for _, r := range st.Rounds {
			if r == nil {
				row = append(row, "")
				continue
			}
			row = append(row, *r)
		}
		axis, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(standingsSheet, axis, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", idx+2, err)
		}
	}

	if err := f.SetPanes(standingsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportStandings renders the standings as an xlsx workbook.
func (s *ScoringService) ExportStandings(ctx context.Context, tournamentID uuid.UUID) ([]byte, error) {
	exportTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]byte, error], error) {
		scored, err := s.scoreTournamentLogic(ctx, db, tournamentID)
		if err != nil || scored.IsFailure() {
			return results.OperationResult[[]byte, error]{Failure: scored.Failure}, err
		}
		data, err := BuildStandingsWorkbook((*scored.Success).Standings)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		return results.SuccessResult[[]byte, error](data), nil
	}

	return unwrap(withTelemetry(s, ctx, "ExportStandings", tournamentID.String(), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		return runInTx(s, ctx, exportTx)
	}))
}
