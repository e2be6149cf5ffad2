package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"certivault/internal/cvault"
)

const (
	defaultBaseURL   = "https://www.googleapis.com/drive/v3"
	defaultUploadURL = "https://www.googleapis.com/upload/drive/v3"

	folderMIMEType = "application/vnd.google-apps.folder"
)

// RESTDrive talks to a Google-Drive-style HTTP API: folder search via a
// query language, JSON folder creation, multipart file upload, bearer
// token auth. A 401 or 403 from the API is reported as
// cvault.ErrNotAuthenticated so the sync engine can abort the batch.
type RESTDrive struct {
	baseURL    string
	uploadURL  string
	tokens     cvault.TokenProvider
	httpClient *http.Client
}

var _ cvault.DriveClient = (*RESTDrive)(nil)

// NewRESTDrive creates a REST drive client. Empty baseURL/uploadURL select
// the Google Drive v3 endpoints.
func NewRESTDrive(baseURL, uploadURL string, tokens cvault.TokenProvider) *RESTDrive {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if uploadURL == "" {
		uploadURL = defaultUploadURL
	}
	return &RESTDrive{
		baseURL:   strings.TrimRight(baseURL, "/"),
		uploadURL: strings.TrimRight(uploadURL, "/"),
		tokens:    tokens,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// ValidateSetup checks that a bearer credential is present. It issues no
// remote calls: an expired token surfaces on the first real request.
func (d *RESTDrive) ValidateSetup(ctx context.Context) error {
	_, err := d.tokens.Token(ctx)
	return err
}

// escapeQueryTerm escapes characters that are significant to the drive
// query language, so a folder literally named O'Brien searches under its
// intended parent instead of corrupting the filter.
func escapeQueryTerm(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}

type fileResource struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name,omitempty"`
	MIMEType string   `json:"mimeType,omitempty"`
	Parents  []string `json:"parents,omitempty"`
}

type fileList struct {
	Files []fileResource `json:"files"`
}

// FindOrCreateFolder searches for a non-trashed folder with the exact name
// under parentID and creates it when absent. When the remote store holds
// several matches, the first one returned by the API wins.
func (d *RESTDrive) FindOrCreateFolder(ctx context.Context, name string, parentID string) (string, error) {
	parent := parentID
	if parent == cvault.RootFolderID {
		parent = "root"
	}

	q := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
		escapeQueryTerm(name), escapeQueryTerm(parent), folderMIMEType)

	listURL := fmt.Sprintf("%s/files?q=%s&fields=%s&pageSize=10",
		d.baseURL, url.QueryEscape(q), url.QueryEscape("files(id,name)"))

	var list fileList
	if err := d.doJSON(ctx, http.MethodGet, listURL, nil, &list); err != nil {
		return "", fmt.Errorf("searching for folder %q: %w", name, err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].ID, nil
	}

	body, err := json.Marshal(fileResource{
		Name:     name,
		MIMEType: folderMIMEType,
		Parents:  []string{parent},
	})
	if err != nil {
		return "", fmt.Errorf("encoding folder metadata: %w", err)
	}

	var created fileResource
	if err := d.doJSON(ctx, http.MethodPost, d.baseURL+"/files?fields=id", bytes.NewReader(body), &created); err != nil {
		return "", fmt.Errorf("creating folder %q: %w", name, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("creating folder %q: response carried no id", name)
	}
	return created.ID, nil
}

// UploadFile performs a single-shot multipart upload into parentID.
func (d *RESTDrive) UploadFile(ctx context.Context, parentID string, name string, mimeType string, r io.Reader, size int64) (string, error) {
	parent := parentID
	if parent == cvault.RootFolderID {
		parent = "root"
	}

	meta, err := json.Marshal(fileResource{Name: name, Parents: []string{parent}})
	if err != nil {
		return "", fmt.Errorf("encoding file metadata: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := mw.CreatePart(metaHeader)
	if err != nil {
		return "", fmt.Errorf("creating metadata part: %w", err)
	}
	if _, err := metaPart.Write(meta); err != nil {
		return "", fmt.Errorf("writing metadata part: %w", err)
	}

	contentHeader := textproto.MIMEHeader{}
	contentHeader.Set("Content-Type", mimeType)
	contentPart, err := mw.CreatePart(contentHeader)
	if err != nil {
		return "", fmt.Errorf("creating content part: %w", err)
	}
	if _, err := io.Copy(contentPart, r); err != nil {
		return "", fmt.Errorf("writing content part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	uploadURL := d.uploadURL + "/files?uploadType=multipart&fields=id"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	var uploaded fileResource
	if err := d.do(req, &uploaded); err != nil {
		return "", fmt.Errorf("uploading %q: %w", name, err)
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("uploading %q: response carried no id", name)
	}
	return uploaded.ID, nil
}

// doJSON issues a JSON request against the API.
func (d *RESTDrive) doJSON(ctx context.Context, method, rawURL string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	return d.do(req, out)
}

// do attaches the bearer token, executes the request and decodes the JSON
// response, classifying credential failures.
func (d *RESTDrive) do(req *http.Request, out any) error {
	token, err := d.tokens.Token(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("drive API returned %d: %w", resp.StatusCode, cvault.ErrNotAuthenticated)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("drive API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
