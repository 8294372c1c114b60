package webapp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// JobsPage lists recent batches and sweeps
type JobsPage struct {
	app.Compo
	jobs          []Job
	loading       bool
	error         string
	refreshTicker *time.Ticker
}

// OnMount loads the job log and refreshes it every 2 seconds
func (j *JobsPage) OnMount(ctx app.Context) {
	j.loadJobs(ctx)

	ctx.Async(func() {
		j.refreshTicker = time.NewTicker(2 * time.Second)
		for range j.refreshTicker.C {
			j.loadJobs(ctx)
		}
	})
}

// OnDismount stops the refresh
func (j *JobsPage) OnDismount() {
	if j.refreshTicker != nil {
		j.refreshTicker.Stop()
	}
}

// Render renders the jobs page
func (j *JobsPage) Render() app.UI {
	return app.Div().
		Class("jobs-page").
		Body(
			app.H2().Text("Jobs"),
			j.renderStatus(),
		)
}

func (j *JobsPage) renderStatus() app.UI {
	if j.loading && len(j.jobs) == 0 {
		return app.Div().Class("loading").Text("Loading jobs...")
	}
	if j.error != "" {
		return app.Div().Class("error").Text("Error: " + j.error)
	}
	if len(j.jobs) == 0 {
		return app.Div().Class("info").Text("No jobs yet. One is logged for every batch and every scratch sweep.")
	}

	items := make([]app.UI, 0, len(j.jobs))
	for i := range j.jobs {
		items = append(items, renderJob(&j.jobs[i]))
	}
	return app.Div().Class("jobs-list").Body(items...)
}

func renderJob(job *Job) app.UI {
	return app.Div().
		Class("job-card job-"+job.Status).
		Body(
			app.Div().Class("job-header").Body(
				app.Strong().Text(formatJobType(job.Type)),
				app.Span().Class("job-status-badge job-status-"+job.Status).Text(job.Status),
				app.Span().Class("job-time").Text(formatTime(job.CreatedAt, time.Now())),
			),
			app.If(job.Status == "running", func() app.UI {
				return app.Div().Class("job-progress").Body(
					app.Div().Class("progress-bar").Body(
						app.Div().Class("progress-fill").Style("width", fmt.Sprintf("%d%%", job.Progress)),
					),
					app.Div().Class("progress-text").Text(fmt.Sprintf("%d%% - %s", job.Progress, job.CurrentStep)),
				)
			}),
			app.If(job.Message != "", func() app.UI {
				return app.Div().Class("job-message").Text(job.Message)
			}),
			app.If(job.Error != "", func() app.UI {
				return app.Div().Class("job-error").Text("Error: " + job.Error)
			}),
			app.If(job.Result != "", func() app.UI {
				return app.Div().Class("job-result").Text(formatResult(job.Result))
			}),
			app.Div().Class("job-id").Text("ID: "+job.ID),
		)
}

// formatJobType converts a job type to a readable label
func formatJobType(jobType string) string {
	switch jobType {
	case "thumbnails_zip":
		return "Thumbnails (ZIP)"
	case "thumbnails_xlsx":
		return "Thumbnails (spreadsheet)"
	case "sweep":
		return "Scratch sweep"
	default:
		return jobType
	}
}

// formatTime renders an RFC 3339 timestamp relative to now when recent
func formatTime(timeStr string, now time.Time) string {
	if timeStr == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, timeStr)
	if err != nil {
		return timeStr
	}

	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		if mins := int(diff.Minutes()); mins > 1 {
			return fmt.Sprintf("%d minutes ago", mins)
		}
		return "1 minute ago"
	case diff < 24*time.Hour:
		if hours := int(diff.Hours()); hours > 1 {
			return fmt.Sprintf("%d hours ago", hours)
		}
		return "1 hour ago"
	}
	return t.Format("Jan 2, 2006 at 3:04 PM")
}

// formatResult summarises a batch or sweep result
func formatResult(result string) string {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(result), &data); err != nil {
		return result
	}

	if empty, ok := data["empty"].(bool); ok && empty {
		return "Nothing to download"
	}

	labels := []struct{ key, label string }{
		{"documents", "Documents"},
		{"thumbnails", "Thumbnails"},
		{"skipped", "Skipped"},
		{"scratchDirsRemoved", "Scratch dirs removed"},
		{"jobsDeleted", "Old jobs deleted"},
	}
	var parts []string
	for _, l := range labels {
		if val, ok := data[l.key].(float64); ok {
			parts = append(parts, fmt.Sprintf("%s: %.0f", l.label, val))
		}
	}
	if val, ok := data["outputBytes"].(float64); ok && val > 0 {
		parts = append(parts, fmt.Sprintf("Size: %.1f KB", val/1024))
	}

	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	return result
}

func (j *JobsPage) loadJobs(ctx app.Context) {
	j.loading = true
	var jobs []Job
	fetchJSON(ctx, "/api/jobs?limit=50", &jobs, func(ctx app.Context, err error) {
		j.loading = false
		if err != nil {
			j.error = err.Error()
			return
		}
		j.error = ""
		j.jobs = jobs
	})
}
