package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mdp/qrterminal/v3"
)

// PlaylistLink is a labelled playlist URL shown as a QR code so guests can add songs.
type PlaylistLink struct {
	Label string
	URL   string
}

// WriteQR writes link as a half-block QR code followed by its label and URL.
func WriteQR(w io.Writer, link PlaylistLink) error {
	if link.URL == "" {
		return nil
	}
	qrterminal.GenerateHalfBlock(link.URL, qrterminal.L, w)
	_, err := fmt.Fprintf(w, "%s: %s\n", link.Label, link.URL)
	return err
}

// RenderQR renders the links side by side when there are several.
func RenderQR(links ...PlaylistLink) string {
	var blocks []string
	for _, link := range links {
		var b strings.Builder
		if err := WriteQR(&b, link); err != nil || b.Len() == 0 {
			continue
		}
		blocks = append(blocks, strings.TrimRight(b.String(), "\n"))
	}
	return joinHorizontal(blocks)
}
