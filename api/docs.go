package api

import _ "embed"

// SwaggerJSON is the OpenAPI description served at /swagger/doc.json.
//
//go:embed swagger.json
var SwaggerJSON []byte
