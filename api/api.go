package api

import _ "embed"

// OpenAPI is the HTTP contract of the catalog service, served at /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
