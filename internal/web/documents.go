package web

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pmsmanus/clinic-portal/internal/clinic"
)

type documentsData struct {
	page
	Patients  []clinic.Patient
	Selected  *clinic.Patient
	Documents []clinic.Document
	Types     []clinic.DocumentType
}

func (h *Handler) handleDocuments(c echo.Context) error {
	ctx := c.Request().Context()

	patients, err := h.listPatients(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	data := documentsData{
		page:     h.newPage(c, "Documents", "documents"),
		Patients: patients,
		Types:    clinic.DocumentTypes,
	}

	if raw := c.QueryParam("patient"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return h.fail(c, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id"))
		}
		for i := range patients {
			if patients[i].ID == id {
				data.Selected = &patients[i]
			}
		}

		data.Documents, err = h.patientDocuments(ctx, id)
		if err != nil {
			return h.fail(c, err)
		}
	}

	return c.Render(http.StatusOK, "documents.html", data)
}

// handleDocumentCreate accepts the multipart upload form and records the
// file's metadata. The request's file part terminates here: the bytes
// themselves are the object store's concern and only the derived key, URL,
// size and MIME type travel onward.
func (h *Handler) handleDocumentCreate(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.FormValue("patientId"), 10, 64)
	if err != nil {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest, "select a patient"), "/documents")
	}
	back := "/documents?patient=" + strconv.FormatInt(patientID, 10)

	docType := c.FormValue("documentType")
	if !clinic.ValidDocumentType(docType) {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest, "unknown document type"), back)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest, "attach a file"), back)
	}

	name := strings.TrimSpace(c.FormValue("documentName"))
	if name == "" {
		name = fh.Filename
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(fh.Filename))
	}

	fileKey := fmt.Sprintf("patients/%d/documents/%d-%s",
		patientID, time.Now().Unix(), filepath.Base(fh.Filename))

	_, err = h.documents.Create(c.Request().Context(), clinic.Document{
		PatientID:    patientID,
		DocumentType: docType,
		DocumentName: name,
		Description:  strings.TrimSpace(c.FormValue("description")),
		FileKey:      fileKey,
		FileURL:      strings.TrimRight(h.uploadsBase, "/") + "/" + fileKey,
		MimeType:     mimeType,
		FileSize:     fh.Size,
		UploadDate:   time.Now().Format(clinic.DateLayout),
	})
	if err != nil {
		return h.failBack(c, err, back)
	}

	h.cache.Invalidate("documents")
	setFlash(c, "success", "Document recorded")
	return c.Redirect(http.StatusSeeOther, back)
}

func (h *Handler) handleDocumentDelete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return h.failBack(c, echo.NewHTTPError(http.StatusBadRequest, "invalid document id"), "/documents")
	}
	back := "/documents"
	if p := c.QueryParam("patient"); p != "" {
		back += "?patient=" + p
	}

	if err := h.documents.Remove(c.Request().Context(), id); err != nil {
		return h.failBack(c, err, back)
	}

	h.cache.Invalidate("documents")
	setFlash(c, "success", "Document deleted")
	return c.Redirect(http.StatusSeeOther, back)
}
