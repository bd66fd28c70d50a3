package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/custodia-labs/aobun/internal/core/domain"
	"github.com/custodia-labs/aobun/internal/logger"
)

// handlerFunc returns the status it wrote, or the status and error to render.
type handlerFunc func(w http.ResponseWriter, r *http.Request) (int, error)

// run renders errors as the upload page and writes an access log line.
func (s *Server) run(handler handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := handler(w, r)
		if err != nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(code)
			if renderErr := renderPage(w, page{Error: userMessage(err), MaxUploadMB: s.opts.MaxUploadBytes >> 20}); renderErr != nil {
				logger.Error("rendering error page: %v", renderErr)
			}
			if code >= http.StatusInternalServerError {
				logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
			} else {
				logger.Debug("%s %s: %v", r.Method, r.URL.Path, err)
			}
		}

		logger.Info("%q %d", r.Method+" "+r.URL.RequestURI()+" "+r.Proto, code)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) (int, error) {
	return s.render(w, http.StatusOK, page{})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	src, err := readUpload(r, s.opts.MaxUploadBytes)
	if err != nil {
		return statusFor(err), err
	}

	ctx := r.Context()
	result, err := s.ports.Conversion.Convert(ctx, src)
	if err != nil {
		return statusFor(err), err
	}

	p := page{Message: result.Message()}
	for _, artifact := range result.Artifacts {
		id, err := s.ports.Results.Put(ctx, artifact)
		if err != nil {
			return http.StatusInternalServerError, fmt.Errorf("storing %s: %w", artifact.Name, err)
		}
		p.Downloads = append(p.Downloads, download{
			Name:  artifact.Name,
			URL:   "/download/" + id,
			Label: downloadLabel(artifact),
		})
	}
	for _, f := range result.Failures {
		p.Warnings = append(p.Warnings, fmt.Sprintf("%s を読み込めませんでした: %v", f.Name, f.Err))
	}
	for _, doc := range result.Documents {
		if doc.Lossy {
			p.Warnings = append(p.Warnings, fmt.Sprintf("%s に読み取れない文字が含まれていたため置き換えました。", doc.SourceName))
		}
	}

	return s.render(w, http.StatusOK, p)
}

func (s *Server) handleStrip(w http.ResponseWriter, r *http.Request) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseForm(); err != nil {
		return statusFor(err), err
	}

	input := r.PostForm.Get("text")
	stripped, err := s.ports.Conversion.StripText(r.Context(), input)
	if err != nil {
		return statusFor(err), err
	}

	return s.render(w, http.StatusOK, page{Input: input, Stripped: stripped})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) (int, error) {
	artifact, err := s.ports.Results.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return statusFor(err), err
	}

	w.Header().Set("Content-Type", artifact.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Content); err != nil {
		logger.Debug("writing %s: %v", artifact.Name, err)
	}
	return http.StatusOK, nil
}

// render writes the page with the given status. Once the header is out
// a template failure can only be logged.
func (s *Server) render(w http.ResponseWriter, code int, p page) (int, error) {
	p.MaxUploadMB = s.opts.MaxUploadBytes >> 20
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := renderPage(w, p); err != nil {
		logger.Error("rendering page: %v", err)
	}
	return code, nil
}

// readUpload extracts the "file" field of a multipart upload.
func readUpload(r *http.Request, maxBytes int64) (*domain.SourceDocument, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, ErrMissingFile
		}
		return nil, err
	}

	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, ErrMissingFile
		}
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	// Some browsers send a full client-side path.
	name := path.Base(strings.ReplaceAll(header.Filename, "\\", "/"))
	return &domain.SourceDocument{Name: name, Content: content}, nil
}

func downloadLabel(a domain.Artifact) string {
	if a.MIMEType == domain.MIMEZip {
		return "📦 zipでダウンロード (" + a.Name + ")"
	}
	return "📄 txtでダウンロード (" + a.Name + ")"
}

// statusFor maps errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, domain.ErrArchiveTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrEmptyArchive), errors.Is(err, domain.ErrNoConvertibleEntries):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnsupportedType),
		errors.Is(err, domain.ErrInvalidArchive),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, ErrMissingFile):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// userMessage returns the text shown to the user for err.
func userMessage(err error) string {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return "ファイルサイズが上限を超えています。"
	case errors.Is(err, domain.ErrArchiveTooLarge):
		return "ZIPファイルの展開後のサイズまたはファイル数が上限を超えています。"
	case errors.Is(err, ErrRateLimited):
		return "リクエストが多すぎます。しばらくしてから再度お試しください。"
	case errors.Is(err, domain.ErrEmptyArchive):
		return "ZIPファイル内に .txt ファイルが見つかりませんでした。"
	case errors.Is(err, domain.ErrNoConvertibleEntries):
		return "ZIPファイル内の .txt ファイルを読み込めませんでした。"
	case errors.Is(err, domain.ErrUnsupportedType):
		return "txt または zip ファイルをアップロードしてください。"
	case errors.Is(err, domain.ErrInvalidArchive):
		return "ZIPファイルを開けませんでした。"
	case errors.Is(err, ErrMissingFile):
		return "ファイルが選択されていません。"
	case errors.Is(err, domain.ErrNotFound):
		return "ダウンロードの有効期限が切れました。もう一度変換してください。"
	default:
		return "処理中にエラーが発生しました。"
	}
}
