// Package common holds enums shared between configuration and command line
// processing.
package common

//go:generate go tool go-enum --marshal --names

// Specification of requested output type.
// ENUM(fragment, page)
type OutputFmt int

// Standalone reports whether output is a complete HTML document.
func (o OutputFmt) Standalone() bool {
	return o == OutputFmtPage
}

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtFragment, OutputFmtPage:
		return ".html"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
