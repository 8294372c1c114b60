//go:build js && wasm

// Command webapp is the browser half of the web UI. Build it with
//
//	GOOS=js GOARCH=wasm go build -o web/app.wasm ./cmd/webapp
package main

import (
	"github.com/drummonds/pdfthumbs/webapp"
)

func main() {
	webapp.RunClient()
}
