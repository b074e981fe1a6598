package scoringservice

import (
	"bytes"
	"context"
	"fmt"

	scoringdomain "github.com/Black-And-White-Club/dip-scoring/app/modules/scoring/domain"
	"github.com/Black-And-White-Club/dip-scoring/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBackground = drawing.Color{R: 250, G: 248, B: 240, A: 255}
	chartText       = drawing.Color{R: 40, G: 40, B: 40, A: 255}

	// Conventional board colours.
	powerColours = map[scoringdomain.GreatPower]drawing.Color{
		scoringdomain.Austria: {R: 200, G: 40, B: 40, A: 255},
		scoringdomain.England: {R: 40, G: 70, B: 200, A: 255},
		scoringdomain.France:  {R: 80, G: 170, B: 230, A: 255},
		scoringdomain.Germany: {R: 90, G: 90, B: 90, A: 255},
		scoringdomain.Italy:   {R: 40, G: 160, B: 60, A: 255},
		scoringdomain.Russia:  {R: 140, G: 60, B: 170, A: 255},
		scoringdomain.Turkey:  {R: 220, G: 180, B: 30, A: 255},
	}
)

// GenerateCentreCountChart produces a PNG line chart with one line per power
// showing its supply centres at the end of each recorded year.
func GenerateCentreCountChart(h *scoringdomain.GameHistory) ([]byte, error) {
	years := h.YearsPlayed()
	if len(years) == 0 {
		return renderNoDataPlaceholder("No centre counts recorded")
	}

	series := make([]chart.Series, 0, scoringdomain.PowerCount)
	for _, p := range scoringdomain.AllPowers() {
		var xs, ys []float64
		for _, y := range years {
			counts, err := h.CentreCounts(y)
			if err != nil {
				return nil, err
			}
			c, ok := counts[p]
			if !ok {
				continue
			}
			xs = append(xs, float64(y))
			ys = append(ys, float64(c))
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    p.String(),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: powerColours[p],
				StrokeWidth: 2,
				DotWidth:    3,
				DotColor:    powerColours[p],
			},
		})
	}

	board := h.Board()
	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{
			FillColor: chartBackground,
		},
		XAxis: chart.XAxis{
			Name: "Year",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%d", int(f))
				}
				return ""
			},
			Style: chart.Style{FontColor: chartText},
			Range: &chart.ContinuousRange{Min: float64(years[0]), Max: float64(max(years[len(years)-1], years[0]+1))},
		},
		YAxis: chart.YAxis{
			Name:  "Centres",
			Style: chart.Style{FontColor: chartText},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(board.TotalCentres)},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(msg string) ([]byte, error) {
	const (
		width  = 400
		height = 200
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: chartBackground,
		},
		Canvas: chart.Style{
			FillColor: chartBackground,
		},
		XAxis: chart.XAxis{Style: chart.Hidden()},
		YAxis: chart.YAxis{Style: chart.Hidden()},
		// Render needs at least one series.
		Series: []chart.Series{chart.ContinuousSeries{
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
		}},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(chartText)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// CentreCountChart renders a game's centre counts by year as a PNG.
func (s *ScoringService) CentreCountChart(ctx context.Context, gameID uuid.UUID) ([]byte, error) {
	chartTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[[]byte, error], error) {
		gc, err := s.loadGameContext(ctx, db, gameID)
		if err != nil {
			return fail[[]byte](err)
		}
		png, err := GenerateCentreCountChart(gc.history)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to render chart: %w", err)
		}
		return results.SuccessResult[[]byte, error](png), nil
	}

	return unwrap(withTelemetry(s, ctx, "CentreCountChart", gameID.String(), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		return runInTx(s, ctx, chartTx)
	}))
}
