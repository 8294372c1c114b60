package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// choice is one option of a select box
type choice struct {
	value, label string
}

var (
	formatChoices = []choice{
		{"zip", "ZIP of images"},
		{"xlsx", "Spreadsheet (one picture per cell)"},
	}
	axisChoices = []choice{
		{"height", "Fixed height"},
		{"width", "Fixed width"},
	}
	imageChoices = []choice{
		{"jpeg", "JPEG"},
		{"png", "PNG"},
	}
)

// UploadPage is a plain multipart form; the browser handles the download
type UploadPage struct {
	app.Compo
	submitted bool
}

// Render renders the upload form
func (u *UploadPage) Render() app.UI {
	return app.Div().
		Class("upload-page").
		Body(
			app.H2().Text("Make thumbnails"),
			app.P().Text("Choose PDFs, or ZIP archives of PDFs. The first page of each becomes a thumbnail."),

			app.Form().
				Class("upload-form").
				Action(BuildAPIURL("/api/thumbnails")).
				Method("post").
				EncType("multipart/form-data").
				OnSubmit(u.onSubmit).
				Body(
					app.Label().For("files").Text("Documents"),
					app.Input().
						ID("files").
						Type("file").
						Name("files").
						Accept(".pdf,.zip,application/pdf,application/zip").
						Multiple(true).
						Required(true),

					app.Label().For("format").Text("Output"),
					renderSelect("format", formatChoices),

					app.Label().For("target").Text("Target size (px)"),
					app.Input().
						ID("target").
						Type("number").
						Name("target").
						Min(1).
						Placeholder("200"),

					app.Label().For("axis").Text("Pinned axis"),
					renderSelect("axis", axisChoices),

					app.Label().For("image").Text("Image format"),
					renderSelect("image", imageChoices),

					app.Button().Type("submit").Class("btn-primary").Text("Create thumbnails"),
				),

			app.If(u.submitted, func() app.UI {
				return app.Div().Class("info").Body(
					app.Text("Working... the download starts when the batch is done. Progress is on the "),
					app.A().Href("/jobs").Text("jobs page"),
					app.Text("."),
				)
			}),
		)
}

func renderSelect(name string, choices []choice) app.UI {
	options := make([]app.UI, 0, len(choices))
	for i, c := range choices {
		options = append(options, app.Option().Value(c.value).Selected(i == 0).Text(c.label))
	}
	return app.Select().ID(name).Name(name).Body(options...)
}

// onSubmit only notes the submission; the form posts natively
func (u *UploadPage) onSubmit(ctx app.Context, e app.Event) {
	u.submitted = true
}
