package rushservice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Black-And-White-Club/clubhouse/app/shared/operation"
	"github.com/Black-And-White-Club/clubhouse/app/shared/results"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/xuri/excelize/v2"
)

const analyticsSheet = "Analytics"

// ExportTimeframeAnalytics renders the attendance report as an XLSX workbook.
func (s *RushService) ExportTimeframeAnalytics(ctx context.Context, timeframeID string) ([]byte, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "ExportTimeframeAnalytics", timeframeID, func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		report, err := s.analyticsLogic(ctx, "ExportTimeframeAnalytics", timeframeID)
		if err != nil || report.IsFailure() {
			return results.OperationResult[[]byte, error]{Failure: report.Failure}, err
		}
		data, err := WriteAnalyticsWorkbook(*report.Success)
		if err != nil {
			return infraError[[]byte](err)
		}
		return success(data)
	})
	return operation.Unwrap(result, err)
}

// WriteAnalyticsWorkbook lays the report out one rushee per row and one event
// per column, followed by the counts and the eligibility flag.
func WriteAnalyticsWorkbook(report *TimeframeAnalytics) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", analyticsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []any{"Name", "Email"}
	for _, eventID := range report.EventOrder {
		header = append(header, report.Events[eventID].Name)
	}
	header = append(header, "Attended", "Mandatory", "Remaining", "Eligible")
	if err := writeRow(f, 1, header); err != nil {
		return nil, err
	}

	for i, r := range report.sortedRushees() {
		row := []any{r.Name, r.Email}
		for _, ea := range r.EventsAttended {
			mark := ""
			if ea.Attended {
				mark = "x"
			}
			row = append(row, mark)
		}
		eligible := "no"
		if r.Eligible {
			eligible = "yes"
		}
		row = append(row, r.AttendedCount, r.MandatoryAttended, r.RemainingAttended, eligible)
		if err := writeRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to address cell: %w", err)
		}
		if err := f.SetCellValue(analyticsSheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

// ChartPalette colours the attendance chart.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Text       drawing.Color
}

// DefaultChartPalette is used by RenderAttendanceChart.
var DefaultChartPalette = ChartPalette{
	Background: drawing.ColorWhite,
	Bar:        drawing.Color{R: 0x1f, G: 0x4e, B: 0x79, A: 0xff},
	Text:       drawing.ColorBlack,
}

// RenderAttendanceChart renders attendees per event as a PNG bar chart.
func (s *RushService) RenderAttendanceChart(ctx context.Context, timeframeID string) ([]byte, error) {
	result, err := operation.WithTelemetry(s.instrument(), ctx, "RenderAttendanceChart", timeframeID, func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		report, err := s.analyticsLogic(ctx, "RenderAttendanceChart", timeframeID)
		if err != nil || report.IsFailure() {
			return results.OperationResult[[]byte, error]{Failure: report.Failure}, err
		}
		data, err := GenerateAttendanceChart(*report.Success, DefaultChartPalette)
		if err != nil {
			return infraError[[]byte](fmt.Errorf("failed to render attendance chart: %w", err))
		}
		return success(data)
	})
	return operation.Unwrap(result, err)
}

// GenerateAttendanceChart draws one bar per event in creation order.
func GenerateAttendanceChart(report *TimeframeAnalytics, palette ChartPalette) ([]byte, error) {
	bars := make([]chart.Value, 0, len(report.EventOrder))
	total, peak := 0, 0
	for _, eventID := range report.EventOrder {
		event := report.Events[eventID]
		total += event.NumAttendees
		peak = max(peak, event.NumAttendees)
		bars = append(bars, chart.Value{
			Label: event.Name,
			Value: float64(event.NumAttendees),
			Style: chart.Style{FillColor: palette.Bar, StrokeColor: palette.Bar},
		})
	}
	if total == 0 {
		return renderNoDataPlaceholder(palette)
	}

	graph := chart.BarChart{
		Title:      report.Timeframe.Name,
		Width:      max(400, 120*len(bars)),
		Height:     400,
		BarWidth:   60,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		TitleStyle: chart.Style{FontColor: palette.Text},
		XAxis:      chart.Style{FontColor: palette.Text},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(peak)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No check-ins yet"
	)

	graph := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{FillColor: palette.Background},
		Canvas:     chart.Style{FillColor: palette.Background},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.Text)
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
