package game

import "github.com/atotto/clipboard"

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

// copyToClipboard places text on the system clipboard.
func copyToClipboard(text string) error {
	if text == "" {
		text = " "
	}
	return writeClipboard(text)
}
