package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	for _, path := range []string{"/", "/index.html"} {
		w := srv.get(path)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `<section data-step="0">`)
		assert.Contains(t, w.Body.String(), `<section data-step="1" hidden>`)
	}
}

func TestIndex_StepQuery(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	w := srv.get("/?step=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<section data-step="0" hidden>`)
	assert.Contains(t, w.Body.String(), `<section data-step="1">`)

	// out of range clamps to the last step
	w = srv.get("/?step=99")
	assert.Contains(t, w.Body.String(), `<section data-step="2">`)

	w = srv.get("/?step=abc")
	assert.Contains(t, w.Body.String(), `<section data-step="0">`)
}

func TestThankYou(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	query := url.Values{
		"ticketNumber": {"TICKET-654321"},
		"name":         {"rider@example.com"},
		"paymentId":    {"pay_<b>"},
	}
	w := srv.get("/thanku.html?" + query.Encode())
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "TICKET-654321")
	assert.Contains(t, body, "rider@example.com")
	assert.Contains(t, body, "pay_&lt;b&gt;")
	assert.Contains(t, body, "/tickets/TICKET-654321/pdf?paymentId=pay_")
	assert.NotContains(t, body, "pay_<b>")
}

func TestThankYou_NoDownloadWithoutPaymentID(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	w := srv.get("/thanku.html?ticketNumber=TICKET-654321")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "/tickets/")
}

func TestTicketPDF(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	w := srv.postForm("/post", validBookingForm())
	require.Equal(t, http.StatusOK, w.Code)
	var result models.BookingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	w = srv.get("/tickets/" + result.TicketNumber + "/pdf?paymentId=pay_ABC123")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF", w.Body.String()[:4])
}

func TestTicketPDF_NotFound(t *testing.T) {
	srv := newTestServer(t, serverOptions{})

	for _, ticket := range []string{"TICKET-000001", "garbage"} {
		w := srv.get("/tickets/" + ticket + "/pdf?paymentId=pay_ABC123")
		assert.Equal(t, http.StatusNotFound, w.Code, ticket)
	}
}

func TestTicketPDF_RequiresMatchingPaymentID(t *testing.T) {
	tests := []struct {
		name string
		opts serverOptions
	}{
		{"admin auth disabled", serverOptions{}},
		{"admin auth enabled", serverOptions{adminPassword: "secret-password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.opts)

			w := srv.postForm("/post", validBookingForm())
			require.Equal(t, http.StatusOK, w.Code)
			var result models.BookingResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

			for _, query := range []string{"", "?paymentId=", "?paymentId=pay_OTHER", "?paymentId=pay_ABC12"} {
				w = srv.get("/tickets/" + result.TicketNumber + "/pdf" + query)
				assert.Equal(t, http.StatusNotFound, w.Code, query)
				assert.Equal(t, "Ticket not found.", w.Body.String(), query)
			}
		})
	}
}
