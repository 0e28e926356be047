package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/application"
	"github.com/desinetwork/classifieds/internal/domain/repository"
	"github.com/desinetwork/classifieds/internal/interface/middleware"
	"github.com/desinetwork/classifieds/pkg/response"
)

type ClassifiedHandler struct {
	Svc    *application.ClassifiedService
	Logger *logrus.Logger
}

func NewClassifiedHandler(svc *application.ClassifiedService, logger *logrus.Logger) *ClassifiedHandler {
	return &ClassifiedHandler{Svc: svc, Logger: logger}
}

func (h *ClassifiedHandler) List(c *gin.Context) {
	list, err := h.Svc.ListPublished(c.Request.Context(), repository.PublishedFilter{
		CityID:   c.Query("cityId"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		h.Logger.WithError(err).Error("list classifieds failed")
		response.Error(c, http.StatusInternalServerError, "could not load classifieds")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"classifieds": list})
}

func (h *ClassifiedHandler) Get(c *gin.Context) {
	cl, err := h.Svc.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrClassifiedNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.WithError(err).Error("get classified failed")
		response.Error(c, http.StatusInternalServerError, "could not load classified")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"classified": cl})
}

func (h *ClassifiedHandler) ListMine(c *gin.Context) {
	u := middleware.CurrentUser(c)
	list, err := h.Svc.ListMine(c.Request.Context(), u.ID)
	if err != nil {
		h.Logger.WithError(err).Error("list own classifieds failed")
		response.Error(c, http.StatusInternalServerError, "could not load classifieds")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"classifieds": list})
}

func (h *ClassifiedHandler) Create(c *gin.Context) {
	u := middleware.CurrentUser(c)
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "multipart form expected")
		return
	}

	in := application.CreateClassifiedInput{
		Title:        formValue(form, "title"),
		Description:  formValue(form, "description"),
		Category:     formValue(form, "category"),
		ContactEmail: formPtr(form, "contactEmail"),
		ContactPhone: formPtr(form, "contactPhone"),
		Visibility:   formValue(form, "visibility"),
	}
	if in.Title == "" || in.Description == "" || in.Category == "" || in.Visibility == "" {
		response.Error(c, http.StatusBadRequest, "title, description, category and visibility are required")
		return
	}
	if raw, ok := firstValue(form, "cityIds"); ok {
		ids, err := parseIDArray(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "cityIds must be a JSON array of strings")
			return
		}
		in.CityIDs = ids
	}

	uploads, cleanup, err := openUploads(form.File["images"])
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read uploaded images")
		return
	}
	defer cleanup()
	in.Images = uploads

	cl, err := h.Svc.Create(c.Request.Context(), u.ID, in)
	if err != nil {
		if errors.Is(err, application.ErrInvalidVisibility) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.WithError(err).Error("create classified failed")
		response.Error(c, http.StatusInternalServerError, "could not create classified")
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"classified": cl})
}

func (h *ClassifiedHandler) Update(c *gin.Context) {
	u := middleware.CurrentUser(c)
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "multipart form expected")
		return
	}

	in := application.UpdateClassifiedInput{
		Title:        formPtr(form, "title"),
		Description:  formPtr(form, "description"),
		Category:     formPtr(form, "category"),
		ContactEmail: formPtr(form, "contactEmail"),
		ContactPhone: formPtr(form, "contactPhone"),
		Visibility:   formPtr(form, "visibility"),
	}
	if raw, ok := firstValue(form, "cityIds"); ok {
		ids, err := parseIDArray(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "cityIds must be a JSON array of strings")
			return
		}
		in.CityIDs = ids
	}
	if raw, ok := firstValue(form, "removeImageIds"); ok {
		ids, err := parseIDArray(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "removeImageIds must be a JSON array of strings")
			return
		}
		in.RemoveImageIDs = ids
	}

	uploads, cleanup, err := openUploads(form.File["images"])
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read uploaded images")
		return
	}
	defer cleanup()
	in.NewImages = uploads

	cl, err := h.Svc.Update(c.Request.Context(), u.ID, c.Param("id"), in)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrClassifiedNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, application.ErrInvalidVisibility):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			h.Logger.WithError(err).Error("update classified failed")
			response.Error(c, http.StatusInternalServerError, "could not update classified")
		}
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"classified": cl})
}

func (h *ClassifiedHandler) Delete(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if err := h.Svc.Delete(c.Request.Context(), u.ID, c.Param("id")); err != nil {
		if errors.Is(err, application.ErrClassifiedNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.WithError(err).Error("delete classified failed")
		response.Error(c, http.StatusInternalServerError, "could not delete classified")
		return
	}
	response.Message(c, http.StatusOK, "classified deleted")
}

func formValue(form *multipart.Form, key string) string {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}

func formPtr(form *multipart.Form, key string) *string {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		v := strings.TrimSpace(vs[0])
		return &v
	}
	return nil
}

func firstValue(form *multipart.Form, key string) (string, bool) {
	if vs, ok := form.Value[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}

// parseIDArray decodes a JSON array of strings and nothing else. Bare
// strings, numbers and malformed JSON are rejected rather than coerced.
func parseIDArray(raw string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

func openUploads(headers []*multipart.FileHeader) ([]application.Upload, func(), error) {
	uploads := make([]application.Upload, 0, len(headers))
	closers := make([]multipart.File, 0, len(headers))
	cleanup := func() {
		for _, f := range closers {
			_ = f.Close()
		}
	}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, f)
		uploads = append(uploads, application.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}
	return uploads, cleanup, nil
}
