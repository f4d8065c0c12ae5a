// Package configs provides the embedded configuration template for
// bookmind. Embedding it with go:embed keeps `bookmind config init`
// working in every distribution, source builds and binary releases alike.
package configs

import _ "embed"

// ConfigTemplate is the annotated example configuration written by
// `bookmind config init`.
//
//go:embed bookmind.example.yaml
var ConfigTemplate string
