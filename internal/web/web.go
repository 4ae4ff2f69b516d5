// Package web holds the embedded pages and scripts served by the HTTP layer.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html song.html static
var files embed.FS

// Index returns the home page.
func Index() []byte {
	b, _ := files.ReadFile("index.html")
	return b
}

// SongPage returns the song listing page.
func SongPage() []byte {
	b, _ := files.ReadFile("song.html")
	return b
}

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
