package test_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

const (
	testAPIKey   = "test-api-key"
	testUser     = "admin"
	testPassword = "secret"
)

const loginPage = `<html><body><form method="post">
<input type="hidden" name="csrfmiddlewaretoken" value="csrf-abc">
</form></body></html>`

// fakeMobSF serves the login form and the REST endpoints the scan workflow uses.
// The scan hash of an upload is "h-" plus the file name without extension.
type fakeMobSF struct {
	server   *httptest.Server
	requests atomic.Int64

	mu      sync.Mutex
	pdfFail map[string]bool
	noIcon  map[string]bool
}

func newFakeMobSF(t *testing.T) *fakeMobSF {
	t.Helper()
	f := &fakeMobSF{pdfFail: map[string]bool{}, noIcon: map[string]bool{}}
	f.server = httptest.NewServer(f.handler())
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeMobSF) URL() string {
	return f.server.URL
}

func (f *fakeMobSF) failPDF(hash string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pdfFail[hash] = true
}

func (f *fakeMobSF) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, loginPage)
			return
		}
		_ = r.ParseForm()
		if r.Form.Get("csrfmiddlewaretoken") != "csrf-abc" || r.Form.Get("password") != testPassword {
			http.Redirect(w, r, "/login/", http.StatusFound)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "s1", Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "home")
	})

	mux.HandleFunc("/api/v1/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != testAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = io.Copy(io.Discard, file)
		stem := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
		fmt.Fprintf(w, `{"hash":"h-%s","file_name":%q}`, stem, header.Filename)
	})
	mux.HandleFunc("/api/v1/scan", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("/api/v1/scorecard", func(w http.ResponseWriter, r *http.Request) {
		hash := r.FormValue("hash")
		fmt.Fprintf(w, `{"app_name":"App %[1]s","file_name":"com.example.%[1]s","version_name":"2.1","security_score":72.4,"high":[{"title":"h"}],"warning":[{"title":"w"},{"title":"w2"}],"info":[],"secure":[{"title":"s"}]}`,
			strings.TrimPrefix(hash, "h-"))
	})
	mux.HandleFunc("/download/", func(w http.ResponseWriter, r *http.Request) {
		hash := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/download/"), "-icon.png")
		f.mu.Lock()
		missing := f.noIcon[hash]
		f.mu.Unlock()
		if missing {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		fmt.Fprint(w, "PNGDATA")
	})
	mux.HandleFunc("/api/v1/download_pdf", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		fail := f.pdfFail[r.FormValue("hash")]
		f.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":"report not available"}`)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprint(w, "%PDF-1.4")
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		mux.ServeHTTP(w, r)
	})
}
