package data

import (
	_ "embed"
)

//go:embed seed/reference.json
var ReferenceData []byte
