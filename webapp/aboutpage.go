package webapp

import (
	"fmt"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// AboutInfo is the response of /api/about
type AboutInfo struct {
	Version         string   `json:"version"`
	Renderer        string   `json:"renderer"`
	DPI             float64  `json:"dpi"`
	TargetDimension int      `json:"targetDimension"`
	TargetAxis      string   `json:"targetAxis"`
	ImageFormat     string   `json:"imageFormat"`
	JPEGQuality     int      `json:"jpegQuality"`
	PxPerColumnUnit float64  `json:"pxPerColumnUnit"`
	PtPerPixel      float64  `json:"ptPerPixel"`
	SheetOrder      string   `json:"sheetOrder"`
	SheetSpan       int      `json:"sheetSpan"`
	Formats         []string `json:"formats"`
}

// AboutPage shows the server's thumbnail defaults
type AboutPage struct {
	app.Compo
	aboutInfo AboutInfo
	loading   bool
	error     string
}

// OnMount fetches /api/about
func (a *AboutPage) OnMount(ctx app.Context) {
	a.loading = true
	fetchJSON(ctx, "/api/about", &a.aboutInfo, func(ctx app.Context, err error) {
		a.loading = false
		if err != nil {
			a.error = err.Error()
		}
	})
}

// Render renders the about page
func (a *AboutPage) Render() app.UI {
	if a.loading {
		return app.Div().Class("about-page").Body(
			app.H2().Text("About pdfthumbs"),
			app.Div().Class("loading").Text("Loading..."),
		)
	}
	if a.error != "" {
		return app.Div().Class("about-page").Body(
			app.H2().Text("About pdfthumbs"),
			app.Div().Class("error").Text("Error: "+a.error),
		)
	}

	return app.Div().Class("about-page").Body(
		app.H2().Text("About pdfthumbs"),
		app.Div().Class("info-grid").Body(
			renderInfoItem("Version", a.aboutInfo.Version),
			renderInfoItem("Renderer", a.rendererDisplay()),
			renderInfoItem("Default size", a.sizeDisplay()),
			renderInfoItem("Image format", a.imageDisplay()),
			renderInfoItem("Spreadsheet cells", a.cellDisplay()),
			renderInfoItem("Outputs", strings.Join(a.aboutInfo.Formats, ", ")),
		),
	)
}

func renderInfoItem(label, value string) app.UI {
	return app.Div().Class("info-item").Body(
		app.Div().Class("info-label").Text(label),
		app.Div().Class("info-value").Text(value),
	)
}

// rendererDisplay names the PDF engine behind a renderer kind
func (a *AboutPage) rendererDisplay() string {
	switch a.aboutInfo.Renderer {
	case "pdfium":
		return fmt.Sprintf("PDFium (WebAssembly) at %v dpi", a.aboutInfo.DPI)
	case "fitz":
		return fmt.Sprintf("MuPDF at %v dpi", a.aboutInfo.DPI)
	default:
		return a.aboutInfo.Renderer
	}
}

func (a *AboutPage) sizeDisplay() string {
	return fmt.Sprintf("%d px %s", a.aboutInfo.TargetDimension, a.aboutInfo.TargetAxis)
}

func (a *AboutPage) imageDisplay() string {
	if a.aboutInfo.ImageFormat == "png" {
		return "PNG"
	}
	return fmt.Sprintf("JPEG (quality %d)", a.aboutInfo.JPEGQuality)
}

func (a *AboutPage) cellDisplay() string {
	return fmt.Sprintf("%v px per column unit, %v pt per px, %s span %d",
		a.aboutInfo.PxPerColumnUnit, a.aboutInfo.PtPerPixel, a.aboutInfo.SheetOrder, a.aboutInfo.SheetSpan)
}
