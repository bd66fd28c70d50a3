package web

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/custodia-labs/aobun/internal/adapters/driven/archive"
	"github.com/custodia-labs/aobun/internal/core/domain"
	"github.com/custodia-labs/aobun/internal/core/services"
	"github.com/custodia-labs/aobun/internal/normalisers/aozora"
	"github.com/custodia-labs/aobun/internal/normalisers/textenc"
)

var downloadLink = regexp.MustCompile(`href="(/download/[^"]+)"`)

// uploadRequest builds a multipart POST /convert carrying one file.
func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func sjis(t *testing.T, s string) []byte {
	t.Helper()
	b, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func buildZip(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

// downloads follows every download link on a result page.
func downloads(t *testing.T, server *Server, page string) []*httptest.ResponseRecorder {
	t.Helper()
	var out []*httptest.ResponseRecorder
	for _, m := range downloadLink.FindAllStringSubmatch(page, -1) {
		rec := serve(server, httptest.NewRequest(http.MethodGet, m[1], nil))
		require.Equal(t, http.StatusOK, rec.Code)
		out = append(out, rec)
	}
	return out
}

func attachmentName(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	return params["filename"]
}

func TestHandleConvert_TextFile(t *testing.T) {
	server := newTestServer(t, Options{})

	rec := serve(server, uploadRequest(t, "maegaki.txt", sjis(t, "前《まえ》書き")))

	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "処理が完了しました: maegaki.txt")

	files := downloads(t, server, page)
	require.Len(t, files, 1)
	assert.Equal(t, "result_maegaki.txt", attachmentName(t, files[0]))
	assert.Equal(t, domain.MIMEText, files[0].Header().Get("Content-Type"))
	assert.Equal(t, "前書き", files[0].Body.String())
	assert.Equal(t, fmt.Sprint(len("前書き")), files[0].Header().Get("Content-Length"))
}

func TestHandleConvert_ClientPathIsTrimmed(t *testing.T) {
	server := newTestServer(t, Options{})

	rec := serve(server, uploadRequest(t, `C:\Users\me\kokoro.txt`, []byte("本文")))

	require.Equal(t, http.StatusOK, rec.Code)
	files := downloads(t, server, rec.Body.String())
	require.Len(t, files, 1)
	assert.Equal(t, "result_kokoro.txt", attachmentName(t, files[0]))
}

func TestHandleConvert_ArchiveSingleEntry(t *testing.T) {
	server := newTestServer(t, Options{})
	content := buildZip(t, map[string]string{"story.txt": "本文［＃改行］続き", "cover.jpg": "jpg"}, "cover.jpg", "story.txt")

	rec := serve(server, uploadRequest(t, "one.zip", content))

	require.Equal(t, http.StatusOK, rec.Code)
	files := downloads(t, server, rec.Body.String())
	require.Len(t, files, 2)

	assert.Equal(t, "result_story.txt", attachmentName(t, files[0]))
	assert.Equal(t, "result_text.zip", attachmentName(t, files[1]))
	assert.Equal(t, domain.MIMEZip, files[1].Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(files[1].Body.Bytes()), int64(files[1].Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "result_story.txt", zr.File[0].Name)
}

func TestHandleConvert_ArchiveMultiple(t *testing.T) {
	server := newTestServer(t, Options{})
	content := buildZip(t,
		map[string]string{"a.txt": "前《まえ》書き", "b.txt": "｜関係｜各所", "readme.md": "x"},
		"a.txt", "b.txt", "readme.md",
	)

	rec := serve(server, uploadRequest(t, "works.zip", content))

	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "2 件のファイルを処理しました。")

	files := downloads(t, server, page)
	require.Len(t, files, 1)
	assert.Equal(t, "result_texts.zip", attachmentName(t, files[0]))

	zr, err := zip.NewReader(bytes.NewReader(files[0].Body.Bytes()), int64(files[0].Body.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"result_a.txt", "result_b.txt"}, names)
}

func TestHandleConvert_Errors(t *testing.T) {
	tests := []struct {
		name     string
		request  func(t *testing.T) *http.Request
		status   int
		contains string
	}{
		{
			name: "archive without text files",
			request: func(t *testing.T) *http.Request {
				return uploadRequest(t, "images.zip", buildZip(t, map[string]string{"a.png": "png"}, "a.png"))
			},
			status:   http.StatusUnprocessableEntity,
			contains: "ZIPファイル内に .txt ファイルが見つかりませんでした。",
		},
		{
			name: "unsupported file type",
			request: func(t *testing.T) *http.Request {
				return uploadRequest(t, "novel.docx", []byte("x"))
			},
			status:   http.StatusBadRequest,
			contains: "txt または zip ファイルをアップロードしてください。",
		},
		{
			name: "corrupt archive",
			request: func(t *testing.T) *http.Request {
				return uploadRequest(t, "broken.zip", []byte("not a zip"))
			},
			status:   http.StatusBadRequest,
			contains: "ZIPファイルを開けませんでした。",
		},
		{
			name: "no file field",
			request: func(t *testing.T) *http.Request {
				var body bytes.Buffer
				mw := multipart.NewWriter(&body)
				require.NoError(t, mw.WriteField("other", "value"))
				require.NoError(t, mw.Close())
				req := httptest.NewRequest(http.MethodPost, "/convert", &body)
				req.Header.Set("Content-Type", mw.FormDataContentType())
				return req
			},
			status:   http.StatusBadRequest,
			contains: "ファイルが選択されていません。",
		},
		{
			name: "not multipart",
			request: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader("text=1"))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return req
			},
			status:   http.StatusBadRequest,
			contains: "ファイルが選択されていません。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, Options{})

			rec := serve(server, tt.request(t))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			assert.NotRegexp(t, downloadLink, rec.Body.String())
		})
	}
}

func TestHandleConvert_TooLarge(t *testing.T) {
	server := newTestServer(t, Options{MaxUploadBytes: 1024})

	rec := serve(server, uploadRequest(t, "big.txt", bytes.Repeat([]byte("a"), 4096)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "ファイルサイズが上限を超えています。")
}

func TestHandleConvert_ArchiveTooLarge(t *testing.T) {
	ports := newTestPorts()
	ports.Conversion = services.NewConversionService(textenc.New(), aozora.New(), archive.NewZipCodec(domain.ArchiveSettings{
		MaxEntryBytes: 1 << 10,
		MaxTotalBytes: 2 << 10,
	}))
	server, err := NewServer(ports, Options{})
	require.NoError(t, err)

	files := make(map[string]string)
	var order []string
	for i := 0; i < 4; i++ {
		name := fmt.Sprintf("part%d.txt", i)
		files[name] = strings.Repeat("a", 1<<10)
		order = append(order, name)
	}

	rec := serve(server, uploadRequest(t, "bomb.zip", buildZip(t, files, order...)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "ZIPファイルの展開後のサイズまたはファイル数が上限を超えています。")
	assert.NotRegexp(t, downloadLink, rec.Body.String())
	assert.Equal(t, 0, ports.Results.Len())
}

func TestHandleConvert_LossyWarning(t *testing.T) {
	server := newTestServer(t, Options{})

	rec := serve(server, uploadRequest(t, "broken.txt", []byte{'a', 0xff, 'b'}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "broken.txt に読み取れない文字が含まれていたため置き換えました。")
}

func TestHandleConvert_RateLimited(t *testing.T) {
	server := newTestServer(t, Options{RateLimit: domain.RateLimitSettings{PerSecond: 0.001, Burst: 1}})

	first := serve(server, uploadRequest(t, "a.txt", []byte("a")))
	second := serve(server, uploadRequest(t, "a.txt", []byte("a")))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	server.ApplyRateLimit(domain.RateLimitSettings{})
	third := serve(server, uploadRequest(t, "a.txt", []byte("a")))
	assert.Equal(t, http.StatusOK, third.Code)
}

func TestHandleDownload_Unknown(t *testing.T) {
	server := newTestServer(t, Options{})

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/download/does-not-exist", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ダウンロードの有効期限が切れました。")
}

func TestHandleDownload_NonASCIIName(t *testing.T) {
	server := newTestServer(t, Options{})
	id, err := server.ports.Results.Put(context.Background(), domain.Artifact{
		Name:     "result_こころ.txt",
		MIMEType: domain.MIMEText,
		Content:  []byte("本文"),
	})
	require.NoError(t, err)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/download/"+id, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "result_こころ.txt", attachmentName(t, rec))
}

func TestHandleStrip(t *testing.T) {
	server := newTestServer(t, Options{})
	form := url.Values{"text": {"｜吾輩《わがはい》は猫である"}}
	req := httptest.NewRequest(http.MethodPost, "/strip", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := serve(server, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<textarea readonly>吾輩は猫である</textarea>")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("bomb.zip: %w", domain.ErrArchiveTooLarge), http.StatusRequestEntityTooLarge},
		{ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("x.zip: %w", domain.ErrEmptyArchive), http.StatusUnprocessableEntity},
		{domain.ErrNoConvertibleEntries, http.StatusUnprocessableEntity},
		{domain.ErrUnsupportedType, http.StatusBadRequest},
		{domain.ErrInvalidArchive, http.StatusBadRequest},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{ErrMissingFile, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, statusFor(tt.err))
			assert.NotEmpty(t, userMessage(tt.err))
		})
	}
}
