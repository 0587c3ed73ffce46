package render

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"time"

	"github.com/kbukum/imagefeed/gallery"
)

// ScriptPath is where the subscriber script is served.
const ScriptPath = "/static/js/sse.js"

//go:embed static
var staticFiles embed.FS

// Static returns the embedded assets rooted so that "js/sse.js" is the
// subscriber script. Serve it under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var templates = template.Must(template.New("page").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return gallery.FormatDate(t) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<p>{{range .Images}}<img src="{{.URL}}" alt="{{date .Date}}">{{end}}</p>
{{template "events" .Entries}}
<script src="{{.Script}}"></script>
</body>
</html>
{{define "events"}}<ul id="events">{{range .}}<li><a href="{{.Href}}">{{.Text}}</a></li>{{end}}</ul>{{end}}`))

// PageData is the gallery page model.
type PageData struct {
	Title   string
	Images  []gallery.Image
	Entries []Entry
	Script  string
}

// Page renders the gallery: every stored image, the live events list
// seeded with entries, and the subscriber script.
func Page(w io.Writer, images []gallery.Image, entries []Entry) error {
	return templates.ExecuteTemplate(w, "page", PageData{
		Title:   "Image feed",
		Images:  images,
		Entries: entries,
		Script:  ScriptPath,
	})
}
