// Command pastepipe converts HTML and plain text to Document Deltas and
// renders deltas back to HTML, text, Markdown, JSON or PDF.
package main

import "github.com/gaurav-prasanna/pastepipe/cmd"

func main() {
	cmd.Execute()
}
