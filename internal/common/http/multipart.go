package http

import (
	"errors"
	"mime/multipart"
	"net/http"
)

// ParseForm parses multipart and urlencoded bodies alike.
func ParseForm(r *http.Request, maxMemory int64) error {
	err := r.ParseMultipartForm(maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// FormFiles collects the uploaded files under any of names, in order.
// Empty parts sent by browsers for an untouched file input are skipped.
func FormFiles(r *http.Request, names ...string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	var files []*multipart.FileHeader
	for _, name := range names {
		for _, fh := range r.MultipartForm.File[name] {
			if fh.Filename == "" && fh.Size == 0 {
				continue
			}
			files = append(files, fh)
		}
	}
	return files
}

// HasFormValue reports whether key was submitted at all, even empty.
func HasFormValue(r *http.Request, key string) bool {
	if r.MultipartForm != nil {
		if _, ok := r.MultipartForm.Value[key]; ok {
			return true
		}
	}
	_, ok := r.PostForm[key]
	return ok
}

func WriteFormError(w http.ResponseWriter, r *http.Request, err error, handler *ErrorHandler) {
	if IsRequestTooLarge(err) {
		handler.HandleError(w, r, err)
		return
	}
	WriteErrorCode(w, http.StatusBadRequest, CodeInvalidForm, "invalid form", TraceIDFromContext(r.Context()))
}
