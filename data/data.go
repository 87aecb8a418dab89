package data

import "embed"

// FS holds the sample data set loaded by mrp-data-loader when no directory
// is given.
//
//go:embed *.csv
var FS embed.FS
