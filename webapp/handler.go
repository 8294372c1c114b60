package webapp

import (
	"net/http"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// Routes served by the web app
var Routes = []string{"/", "/jobs", "/about"}

func registerRoutes() {
	for _, path := range Routes {
		app.Route(path, func() app.Composer { return &App{} })
	}
}

// Handler returns the HTTP handler for the web app. Pages are prerendered on
// the server, so the upload form posts to /api/thumbnails even before (or
// without) app.wasm loading.
func Handler() http.Handler {
	registerRoutes()
	app.RunWhenOnBrowser()

	return &app.Handler{
		Name:        "pdfthumbs",
		Title:       "pdfthumbs",
		Description: "First page thumbnails for batches of PDFs",
		Styles: []string{
			"/webapp/webapp.css",
		},
		RawHeaders: []string{
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
		},
	}
}

// RunClient starts the browser side of the app; used by the wasm build
func RunClient() {
	registerRoutes()
	app.RunWhenOnBrowser()
}
