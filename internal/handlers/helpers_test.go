package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/config"
	"github.com/smarttransit/bus-booking/internal/database"
	"github.com/smarttransit/bus-booking/internal/middleware"
	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/smarttransit/bus-booking/internal/services"
	"github.com/smarttransit/bus-booking/internal/web"
	"github.com/smarttransit/bus-booking/pkg/events"
	"github.com/smarttransit/bus-booking/pkg/jwt"
	"github.com/smarttransit/bus-booking/pkg/payment"
	"github.com/smarttransit/bus-booking/pkg/validator"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testAdminSecret = "handler-test-admin-secret"

type testServer struct {
	router  *gin.Engine
	store   *database.MemoryBookingRepository
	gateway *payment.MockGateway
	jwt     *jwt.Service
}

type serverOptions struct {
	store         database.BookingStore
	gatewayConfig *payment.MockGatewayConfig
	adminPassword string
}

// failingStore fails every write
type failingStore struct {
	*database.MemoryBookingRepository
	err error
}

func (f *failingStore) Create(context.Context, *models.Booking) error        { return f.err }
func (f *failingStore) CreateMany(context.Context, []*models.Booking) error { return f.err }

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	memory := database.NewMemoryBookingRepository()
	var store database.BookingStore = memory
	if opts.store != nil {
		store = opts.store
	}

	fares := config.DefaultFareTable()
	gateway := payment.NewMockGateway(opts.gatewayConfig)
	bookingValidator := validator.NewBookingValidator(fares)
	publisher := events.NoopPublisher{}

	bookingService := services.NewBookingService(store, gateway, bookingValidator, publisher, services.BookingServiceConfig{
		Location: time.UTC,
	}, logger)
	orderService := services.NewOrderService(gateway, fares, logger)
	importService := services.NewImportService(store, bookingValidator, publisher, time.UTC, logger)
	pdfService := services.NewTicketPDFService(bookingService, fares)

	var jwtService *jwt.Service
	var passwordHash string
	if opts.adminPassword != "" {
		jwtService = jwt.NewService(testAdminSecret, time.Hour)
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.adminPassword), bcrypt.MinCost)
		require.NoError(t, err)
		passwordHash = string(hash)
	}
	adminAuthService := services.NewAdminAuthService("admin", passwordHash, jwtService, logger)

	tmpl, err := web.Templates()
	require.NoError(t, err)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	RegisterRoutes(router, &Handlers{
		Pages:     NewPageHandler(fares, gateway),
		Orders:    NewOrderHandler(orderService, logger),
		Bookings:  NewBookingHandler(bookingService, logger),
		Imports:   NewImportHandler(importService, 1<<20, logger),
		Tickets:   NewTicketHandler(pdfService, logger),
		AdminAuth: NewAdminAuthHandler(adminAuthService, logger),
	}, middleware.AdminAuth(jwtService, logger))

	return &testServer{
		router:  router,
		store:   memory,
		gateway: gateway,
		jwt:     jwtService,
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) postJSON(path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) upload(filename, contentType string, data []byte) *httptest.ResponseRecorder {
	return s.do(uploadRequest(filename, contentType, data))
}

func uploadRequest(filename, contentType string, data []byte) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="dataFile"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, _ := mw.CreatePart(header)
	_, _ = part.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-data", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func validBookingForm() url.Values {
	return url.Values{
		"seats":     {"2"},
		"departure": {"City A"},
		"arrival":   {"City B"},
		"phone":     {"9876543210"},
		"email":     {"rider@example.com"},
		"paymentId": {"pay_ABC123"},
	}
}
