package ratingservice

import (
	"bytes"
	"context"
	"fmt"

	ratingdomain "github.com/Black-And-White-Club/league-ratings/app/modules/rating/domain"
	"github.com/xuri/excelize/v2"
)

const rankingSheet = "Ranking"

var rankingHeader = []any{"Position", "Entity", "Kind", "Rating", "Games", "Rating Since"}

// ExportRanking renders the full league ranking as an XLSX workbook.
func (s *RatingService) ExportRanking(ctx context.Context, leagueID ratingdomain.LeagueID) ([]byte, error) {
	return withTelemetry(s, ctx, "ExportRanking", string(leagueID), func(ctx context.Context) ([]byte, error) {
		standings, err := s.ledger.Ranking(ctx, nil, leagueID)
		if err != nil {
			return nil, err
		}
		return RankingWorkbook(standings)
	})
}

// RankingWorkbook writes standings to a single-sheet workbook.
func RankingWorkbook(standings []ratingdomain.Standing) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), rankingSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(rankingSheet, "A1", &rankingHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, st := range standings {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		since := ""
		if !st.AchievedAt.IsZero() {
			since = st.AchievedAt.UTC().Format("2006-01-02 15:04:05")
		}
		row := []any{st.Position, string(st.EntityID), string(st.Kind), st.Rating, st.GamesPlayed, since}
		if err := f.SetSheetRow(rankingSheet, axis, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
