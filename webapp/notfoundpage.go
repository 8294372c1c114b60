package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// NotFoundPage is shown for unknown routes
type NotFoundPage struct {
	app.Compo
}

// Render renders the 404 page
func (p *NotFoundPage) Render() app.UI {
	return app.Div().
		Class("not-found-page").
		Body(
			app.H1().Class("not-found-title").Text("404"),
			app.P().Class("not-found-message").Text("There is nothing here."),
			app.A().Href("/").Class("not-found-home-link").Text("Make some thumbnails"),
		)
}
