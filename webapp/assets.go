package webapp

import _ "embed"

// Stylesheet is served at /webapp/webapp.css
//
//go:embed webapp.css
var Stylesheet []byte
