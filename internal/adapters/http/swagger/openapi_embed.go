// Package swagger serves the API reference.
package swagger

import _ "embed"

// OpenAPI is the OpenAPI 3 description of every route.
//
//go:embed openapi.yaml
var OpenAPI []byte
