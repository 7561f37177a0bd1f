package http

import (
	"embed"
	"html/template"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	uc "loan-tracker/internal/usecase/loan"
)

//go:embed views/*.html
var viewsFS embed.FS

// Renderer serves the embedded page templates through echo.
type Renderer struct{ t *template.Template }

func NewRenderer() *Renderer {
	t := template.Must(template.New("views").Funcs(template.FuncMap{
		"money":      moneyFmt,
		"fieldLabel": uc.FieldLabel,
	}).ParseFS(viewsFS, "views/*.html"))
	return &Renderer{t: t}
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	return r.t.ExecuteTemplate(w, name, data)
}

// moneyFmt renders a stored amount string as whole dollars with
// thousands separators; anything non-numeric comes back untouched.
func moneyFmt(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	digits := strconv.FormatFloat(math.Round(math.Abs(f)), 'f', -1, 64)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if f < 0 {
		return "-$" + b.String()
	}
	return "$" + b.String()
}
