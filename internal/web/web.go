// Package web holds the booking form pages and browser assets compiled into the binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/smarttransit/bus-booking/internal/wizard"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names
const (
	IndexTemplate    = "index.html"
	ThankYouTemplate = "thanku.html"
)

// IndexPage is the data rendered into the booking form
type IndexPage struct {
	Steps     []wizard.Step
	View      wizard.View
	PrevStep  int
	NextStep  int
	Stops     []string
	Currency  string
	SeatPrice string
	Provider  string
	PublicKey string
}

// NewIndexPage builds the page for state
func NewIndexPage(state wizard.State, stops []string, currency string, seatPrice int64, provider, publicKey string) IndexPage {
	return IndexPage{
		Steps:     wizard.Steps,
		View:      state.View(),
		PrevStep:  state.Prev().Index(),
		NextStep:  state.Next().Index(),
		Stops:     stops,
		Currency:  currency,
		SeatPrice: fmt.Sprintf("%d.%02d", seatPrice/100, seatPrice%100),
		Provider:  provider,
		PublicKey: publicKey,
	}
}

// ThankYouPage is the data rendered into the confirmation page
type ThankYouPage struct {
	TicketNumber string
	Name         string
	PaymentID    string
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// Static returns the embedded browser assets rooted at static/
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// static/ is embedded at compile time
		panic(err)
	}
	return http.FS(sub)
}
