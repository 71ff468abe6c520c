package pdfrender

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"elearning/apperr"

	"github.com/go-resty/resty/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var certificateTmpl = template.Must(template.ParseFS(templateFS, "templates/certificate.html"))

const dateLayout = "02 January 2006"

// CertificateData is everything printed on a certificate.
type CertificateData struct {
	FullName     string
	ProgramTitle string
	ProgramType  string
	Credential   string
	Title        string
	IssuedAt     time.Time
	ExpiredAt    *time.Time
}

func (d CertificateData) IssuedDate() string {
	return d.IssuedAt.Format(dateLayout)
}

func (d CertificateData) ExpiredDate() string {
	if d.ExpiredAt == nil {
		return ""
	}
	return d.ExpiredAt.Format(dateLayout)
}

// RenderCertificateHTML fills the certificate template.
func RenderCertificateHTML(data CertificateData) (string, error) {
	var buf bytes.Buffer
	if err := certificateTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render certificate template: %w", err)
	}
	return buf.String(), nil
}

type convertRequest struct {
	HTML string `json:"html"`
}

// Client converts HTML documents to PDF through an external HTTP API.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Client{http: c}
}

// Convert posts html to the conversion endpoint and returns the PDF bytes.
func (c *Client) Convert(ctx context.Context, html string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf").
		SetBody(convertRequest{HTML: html}).
		Post("/convert")
	if err != nil {
		return nil, apperr.BadGateway("PDF conversion failed", err)
	}
	if resp.IsError() {
		return nil, apperr.BadGateway("PDF conversion failed", fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()),
			apperr.Ctx("status", resp.StatusCode()))
	}
	if len(resp.Body()) == 0 {
		return nil, apperr.BadGateway("PDF conversion returned an empty document", nil)
	}
	return resp.Body(), nil
}

// RenderCertificate fills the template and converts it to PDF.
func (c *Client) RenderCertificate(ctx context.Context, data CertificateData) ([]byte, error) {
	html, err := RenderCertificateHTML(data)
	if err != nil {
		return nil, apperr.Internal("Failed to render certificate", err)
	}
	return c.Convert(ctx, html)
}
