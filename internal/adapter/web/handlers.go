package web

import (
	"ImageAnalyst/internal/ai"
	"ImageAnalyst/internal/app/analyst"
	imgproc "ImageAnalyst/internal/service/image"
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"image"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const croppedFilename = "cropped_image.png"

var allowedExts = []string{".jpg", ".jpeg", ".png"}

// pageData всё, что нужно шаблону страницы.
type pageData struct {
	Model        string
	Prompt       string
	Crop         bool
	CropX        string
	CropY        string
	CropW        string
	CropH        string
	Filename     string
	Preview      template.URL
	ResultHTML   template.HTML
	ErrorKind    string
	ErrorMessage string
}

// formError ошибка во входных данных формы.
type formError struct{ msg string }

func (e *formError) Error() string { return e.msg }

func badForm(format string, args ...any) error {
	return &formError{msg: fmt.Sprintf(format, args...)}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, pageData{Model: s.cfg.Model})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, data, err := s.parseForm(w, r)
	if err != nil {
		data.ErrorKind = ai.KindRequest.String()
		data.ErrorMessage = err.Error()
		s.render(w, http.StatusBadRequest, data)
		return
	}

	res, prepared := s.analyst.Run(r.Context(), sess)
	if len(prepared.Data) > 0 {
		data.Preview = template.URL(ai.DataURL(imgproc.DetectMIME(prepared.Data), prepared.Data))
	}
	if !res.OK() {
		data.ErrorKind = res.Kind.String()
		data.ErrorMessage = res.Message
		s.render(w, http.StatusOK, data)
		return
	}

	html, err := s.renderMarkdown(res.Text)
	if err != nil {
		s.logger.Warnw("Не удалось отрисовать markdown, выводим как есть", "error", err)
		html = template.HTML("<pre>" + template.HTMLEscapeString(res.Text) + "</pre>")
	}
	data.ResultHTML = html
	s.render(w, http.StatusOK, data)
}

// handleCrop отдаёт обрезанную картинку на скачивание.
func (s *Server) handleCrop(w http.ResponseWriter, r *http.Request) {
	sess, data, err := s.parseForm(w, r)
	if err == nil && sess.Crop == nil {
		err = badForm("enable cropping and set the crop area first")
	}
	if err != nil {
		data.ErrorKind = ai.KindRequest.String()
		data.ErrorMessage = err.Error()
		s.render(w, http.StatusBadRequest, data)
		return
	}

	cropped, err := s.analyst.Cropped(sess)
	if err != nil {
		data.ErrorKind = ai.KindRequest.String()
		data.ErrorMessage = fmt.Sprintf("The image could not be cropped: %v", err)
		s.render(w, http.StatusBadRequest, data)
		return
	}

	w.Header().Set("Content-Type", imgproc.MimePNG)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", croppedFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(cropped)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(cropped)
}

// parseForm собирает сессию из multipart-формы. pageData заполняется даже при ошибке,
// чтобы пользователю не пришлось вводить всё заново.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) (analyst.Session, pageData, error) {
	data := pageData{Model: s.cfg.Model}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return analyst.Session{}, data, badForm("the upload is larger than %d bytes", s.cfg.MaxUploadBytes)
		}
		return analyst.Session{}, data, badForm("invalid form: %v", err)
	}

	data.Prompt = r.FormValue("prompt")
	data.Crop = r.FormValue("crop") == "on"
	data.CropX, data.CropY = r.FormValue("crop_x"), r.FormValue("crop_y")
	data.CropW, data.CropH = r.FormValue("crop_w"), r.FormValue("crop_h")

	sess := analyst.Session{
		Credential: r.FormValue("api_key"),
		Prompt:     data.Prompt,
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return sess, data, badForm("upload an image (jpg, png, jpeg)")
	}
	defer file.Close()

	data.Filename = header.Filename
	sess.Filename = header.Filename
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains(allowedExts, ext) {
		return sess, data, badForm("file type %q is not allowed, use jpg, png or jpeg", ext)
	}
	if header.Size > s.cfg.MaxUploadBytes {
		return sess, data, badForm("the upload is larger than %d bytes", s.cfg.MaxUploadBytes)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return sess, data, badForm("failed to read upload: %v", err)
	}
	sess.Upload = buf.Bytes()

	if data.Crop {
		rect, err := cropFromForm(data)
		if err != nil {
			return sess, data, err
		}
		sess.Crop = &rect
	}
	return sess, data, nil
}

func cropFromForm(data pageData) (image.Rectangle, error) {
	vals := make([]int, 0, 4)
	for _, f := range []struct{ name, v string }{
		{"x", data.CropX}, {"y", data.CropY}, {"width", data.CropW}, {"height", data.CropH},
	} {
		n, err := strconv.Atoi(strings.TrimSpace(f.v))
		if err != nil {
			return image.Rectangle{}, badForm("crop %s must be a number", f.name)
		}
		vals = append(vals, n)
	}
	rect, err := imgproc.CropRect(vals[0], vals[1], vals[2], vals[3])
	if err != nil {
		return image.Rectangle{}, badForm("%v", err)
	}
	return rect, nil
}

func (s *Server) renderMarkdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Errorw("Не удалось отрисовать страницу", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
