package pdfrender

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"elearning/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() CertificateData {
	expires := time.Date(2027, 1, 2, 0, 0, 0, 0, time.UTC)
	return CertificateData{
		FullName:     "Ada <Lovelace>",
		ProgramTitle: "Go Fundamentals",
		ProgramType:  "Course",
		Credential:   "CRS0001-U0001",
		IssuedAt:     time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		ExpiredAt:    &expires,
	}
}

func TestRenderCertificateHTML(t *testing.T) {
	html, err := RenderCertificateHTML(sampleData())
	require.NoError(t, err)

	assert.Contains(t, html, "Ada &lt;Lovelace&gt;")
	assert.Contains(t, html, "Go Fundamentals")
	assert.Contains(t, html, "CRS0001-U0001")
	assert.Contains(t, html, "02 January 2025")
	assert.Contains(t, html, "Valid until 02 January 2027")
	assert.Contains(t, html, "Certificate of Completion")
}

func TestConvert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/convert", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body convertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.HTML, "CRS0001-U0001")

		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer srv.Close()

	pdf, err := NewClient(srv.URL, "key", time.Second).RenderCertificate(context.Background(), sampleData())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 fake", string(pdf))
}

func TestConvertRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	pdf, err := NewClient(srv.URL, "", time.Second).Convert(context.Background(), "<p>x</p>")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestConvertFailureIsBadGateway(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Convert(context.Background(), "<p>x</p>")
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadGateway, apperr.KindOf(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
