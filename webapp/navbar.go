package webapp

import (
	"fmt"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// NavBar shows the brand, page links and the number of batches in flight
type NavBar struct {
	app.Compo
	activeJobCount int
	refreshTicker  *time.Ticker
}

// Render renders the navigation bar
func (n *NavBar) Render() app.UI {
	return app.Nav().
		Class("navbar").
		Body(
			app.Div().Class("navbar-brand").Body(
				app.H1().Text("pdfthumbs"),
				app.Span().Class("active-jobs").Text(activeJobsLabel(n.activeJobCount)),
			),
			app.Div().Class("navbar-menu").Body(
				app.A().Href("/").Class("navbar-item").Text("Thumbnails"),
				app.A().Href("/jobs").Class("navbar-item").Text("Jobs"),
				app.A().Href("/about").Class("navbar-item").Text("About"),
			),
		)
}

// OnMount polls the active job count every 5 seconds
func (n *NavBar) OnMount(ctx app.Context) {
	n.loadActiveJobCount(ctx)

	ctx.Async(func() {
		n.refreshTicker = time.NewTicker(5 * time.Second)
		for range n.refreshTicker.C {
			n.loadActiveJobCount(ctx)
		}
	})
}

// OnDismount stops polling
func (n *NavBar) OnDismount() {
	if n.refreshTicker != nil {
		n.refreshTicker.Stop()
	}
}

func (n *NavBar) loadActiveJobCount(ctx app.Context) {
	var jobs []Job
	fetchJSON(ctx, "/api/jobs/active", &jobs, func(ctx app.Context, err error) {
		if err != nil {
			// keep the last count on network errors
			return
		}
		n.activeJobCount = len(jobs)
	})
}

func activeJobsLabel(count int) string {
	switch count {
	case 0:
		return ""
	case 1:
		return "1 batch running"
	default:
		return fmt.Sprintf("%d batches running", count)
	}
}
