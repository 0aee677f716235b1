package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
)

var welcomeTmpl *template.Template

// loadTemplatesFromFS loads the welcome template from the given fs and dir.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	welcomeTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

type Route struct {
	Path        string
	Description string
}

type WelcomeData struct {
	Title  string
	Routes []Route
}

// DefaultWelcome lists every route served by the climate API.
func DefaultWelcome() *WelcomeData {
	return &WelcomeData{
		Title: "Hawaii Climate API",
		Routes: []Route{
			{Path: "/api/v1.0/precipitation", Description: "precipitation by date for the last 12 months"},
			{Path: "/api/v1.0/stations", Description: "station identifiers"},
			{Path: "/api/v1.0/tobs", Description: "temperature observations of the most active station for the last 12 months"},
			{Path: "/api/v1.0/<start>", Description: "min, avg and max temperature from start (YYYY-MM-DD)"},
			{Path: "/api/v1.0/<start>/<end>", Description: "min, avg and max temperature between start and end inclusive"},
		},
	}
}

func RenderWelcome(w io.Writer, data *WelcomeData) error {
	if welcomeTmpl == nil {
		return errors.New("welcome template not loaded: call views.LoadTemplates during startup")
	}
	return welcomeTmpl.ExecuteTemplate(w, "welcome.html", data)
}
