package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/database"
	"github.com/smarttransit/bus-booking/internal/services"
)

// Plain-text responses of POST /upload-data
const (
	msgUploadOK         = "Data uploaded successfully!"
	msgNoFile           = "No file uploaded."
	msgUnsupportedFile  = "Unsupported file type."
	msgUploadReadFailed = "Error reading CSV file."
	msgUploadSaveFailed = "Error saving data to the database."
	msgDuplicateTicket  = "Duplicate ticket number."
)

const (
	uploadFormField      = "dataFile"
	defaultUploadMaxSize = 10 << 20
)

// ImportHandler accepts bulk booking uploads
type ImportHandler struct {
	importService *services.ImportService
	maxBytes      int64
	logger        *logrus.Logger
}

// NewImportHandler creates a new import handler. maxBytes caps the request body.
func NewImportHandler(importService *services.ImportService, maxBytes int64, logger *logrus.Logger) *ImportHandler {
	if maxBytes <= 0 {
		maxBytes = defaultUploadMaxSize
	}
	return &ImportHandler{
		importService: importService,
		maxBytes:      maxBytes,
		logger:        logger,
	}
}

// Upload handles POST /upload-data with a multipart dataFile field
func (h *ImportHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	fileHeader, err := c.FormFile(uploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "File exceeds the %d byte upload limit.", h.maxBytes)
			return
		}
		c.String(http.StatusBadRequest, msgNoFile)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.WithError(err).WithField("filename", fileHeader.Filename).Error("Failed to open uploaded file")
		c.String(http.StatusInternalServerError, msgUploadReadFailed)
		return
	}
	defer file.Close()

	result, err := h.importService.Import(c.Request.Context(), services.ImportFile{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.respondImportError(c, fileHeader.Filename, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"batch_id": result.BatchID,
		"format":   result.Format,
		"imported": result.Imported,
		"filename": fileHeader.Filename,
	}).Info("Bulk upload completed")

	c.String(http.StatusOK, msgUploadOK)
}

func (h *ImportHandler) respondImportError(c *gin.Context, filename string, err error) {
	var rowErr *services.RowError
	switch {
	case errors.Is(err, services.ErrUnsupportedFileType):
		c.String(http.StatusBadRequest, msgUnsupportedFile)
	case errors.As(err, &rowErr):
		c.String(http.StatusBadRequest, "%s", rowErr.Error())
	case errors.Is(err, database.ErrDuplicateTicket):
		c.String(http.StatusConflict, "%s", withStoredCount(msgDuplicateTicket, err))
	case errors.Is(err, services.ErrImportParse):
		h.logger.WithError(err).WithField("filename", filename).Error("Failed to parse upload")
		c.String(http.StatusInternalServerError, msgUploadReadFailed)
	default:
		h.logger.WithError(err).WithField("filename", filename).Error("Failed to save upload")
		c.String(http.StatusInternalServerError, "%s", withStoredCount(msgUploadSaveFailed, err))
	}
}

// withStoredCount tells the uploader how many rows were kept when a batch was partially stored
func withStoredCount(msg string, err error) string {
	var partial *database.PartialInsertError
	if !errors.As(err, &partial) {
		return msg
	}
	return fmt.Sprintf("%s %d rows were stored before the failure.", msg, partial.Inserted)
}
