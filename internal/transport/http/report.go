package statushttp

import (
	"net/http"
	"time"

	"fadebot/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// renderReport serves an HTML equity-curve chart over the archived closed
// trades, oldest to newest.
func renderReport(c *gin.Context, journal *store.Journal) {
	if journal == nil {
		c.String(http.StatusServiceUnavailable, "journal disabled")
		return
	}
	trades, err := journal.ListClosedTrades(c.Request.Context(), 500)
	if err != nil {
		c.String(http.StatusInternalServerError, "report: %v", err)
		return
	}
	// newest first from the store; reverse into close-time order
	xAxis := make([]string, 0, len(trades))
	points := make([]opts.LineData, 0, len(trades))
	cum := 0.0
	for i := len(trades) - 1; i >= 0; i-- {
		tr := trades[i]
		cum += tr.PnL
		xAxis = append(xAxis, time.Unix(tr.CloseTS, 0).UTC().Format("01-02 15:04"))
		points = append(points, opts.LineData{Value: cum})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros, PageTitle: "fadebot report"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Cumulative paper PnL (USDT)",
			Subtitle: "closed trades, short pump-fade strategy",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xAxis).
		AddSeries("cum PnL", points)

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(c.Writer); err != nil {
		c.String(http.StatusInternalServerError, "render: %v", err)
	}
}
