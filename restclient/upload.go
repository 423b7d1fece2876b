package restclient

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"
)

// File is one file-like blob to include in a multipart upload.
type File struct {
	Field   string // form field name; defaults to "file"
	Name    string
	Content io.Reader
}

// UploadFile builds a multipart payload from a single file and POSTs it.
func (c *Client) UploadFile(ctx context.Context, path string, f File, out interface{}) error {
	return c.UploadFiles(ctx, path, []File{f}, nil, out)
}

// UploadFiles builds a multipart payload from one or more files plus
// optional scalar fields and POSTs it. The response is decoded into out
// identically to Post.
func (c *Client) UploadFiles(ctx context.Context, path string, files []File, fields map[string]string, out interface{}) error {
	buff := new(bytes.Buffer)
	w := multipart.NewWriter(buff)

	for _, f := range files {
		field := f.Field
		if field == "" {
			field = "file"
		}
		fw, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return errors.Wrapf(err, "creating form file %q", f.Name)
		}
		if _, err = io.Copy(fw, f.Content); err != nil {
			return errors.Wrapf(err, "reading %q", f.Name)
		}
	}
	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			return errors.Wrapf(err, "writing form field %q", key)
		}
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "closing multipart writer")
	}

	return c.do(ctx, http.MethodPost, path, w.FormDataContentType(), buff, nil, out)
}
