// Package asciiart renders the MSail logo shown by the root command.
package asciiart

import (
	_ "embed"
	"fmt"
	"io"
)

//go:embed assets/logo.txt
var logo string

// PrintMSailLogo writes the MSail ASCII logo to the writer.
func PrintMSailLogo(writer io.Writer) {
	_, _ = fmt.Fprint(writer, logo)
}
