package webapp

import (
	"encoding/json"
	"fmt"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// GetAPIBaseURL returns window.pdfthumbsConfig.apiURL when the page sets it,
// otherwise "" so requests stay on the same origin
func GetAPIBaseURL() string {
	if !app.IsClient {
		return ""
	}

	config := app.Window().Get("pdfthumbsConfig")
	if !config.Truthy() {
		return ""
	}
	apiURL := config.Get("apiURL")
	if !apiURL.Truthy() {
		return ""
	}
	url := apiURL.String()
	if len(url) > 0 && url[len(url)-1] == '/' {
		return url[:len(url)-1]
	}
	return url
}

// BuildAPIURL prefixes path with the API base URL
func BuildAPIURL(path string) string {
	return GetAPIBaseURL() + path
}

// Job mirrors the job log entries returned by /api/jobs
type Job struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CurrentStep string `json:"currentStep"`
	Message     string `json:"message"`
	Error       string `json:"error,omitempty"`
	Result      string `json:"result,omitempty"`
	CreatedAt   string `json:"createdAt"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// fetchJSON GETs path and decodes the body into out, then calls done on the
// UI goroutine with any error
func fetchJSON(ctx app.Context, path string, out interface{}, done func(ctx app.Context, err error)) {
	ctx.Async(func() {
		res := app.Window().Call("fetch", BuildAPIURL(path))

		res.Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
			if len(args) == 0 {
				return nil
			}
			response := args[0]
			status := response.Get("status").Int()

			response.Call("json").Call("then", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
				var err error
				switch {
				case status < 200 || status >= 300:
					err = fmt.Errorf("request failed (status: %d)", status)
				case len(args) > 0 && args[0].Truthy():
					jsonStr := app.Window().Get("JSON").Call("stringify", args[0]).String()
					if jerr := json.Unmarshal([]byte(jsonStr), out); jerr != nil {
						err = fmt.Errorf("failed to parse response: %w", jerr)
					}
				}
				ctx.Dispatch(func(ctx app.Context) { done(ctx, err) })
				return nil
			}))
			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) interface{} {
			ctx.Dispatch(func(ctx app.Context) {
				done(ctx, fmt.Errorf("network error: could not connect to server"))
			})
			return nil
		}))
	})
}
