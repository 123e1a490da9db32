package har

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleHAR = `{
  "log": {
    "version": "1.2",
    "creator": {"name": "browser", "version": "1.0"},
    "entries": [
      {"request": {"method": "GET", "url": "https://example.com/?q=1"}, "response": {"status": 200}},
      {"request": {"method": "GET", "url": "https://example.com/?q=2"}, "response": {"status": 200}},
      {"request": {"method": "GET", "url": "https://api.example.com/v1/users#top"}, "response": {"status": 200}},
      {"request": {"method": "POST", "url": "https://api.example.com/v1/login"}, "response": {"status": 302}},
      {"request": {"method": "get", "url": "https://cdn.example.com/app.JS"}, "response": {"status": 200}},
      {"request": {"method": "GET", "url": "not a url"}},
      {"response": {"status": 200}}
    ]
  }
}`

func TestParse(t *testing.T) {
	h, err := Parse(strings.NewReader(sampleHAR))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if h.Log.Version != "1.2" || len(h.Log.Entries) != 7 {
		t.Errorf("log = %+v", h.Log)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"invalid json", "{"},
		{"missing log", `{"foo": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHosts(t *testing.T) {
	h, err := Parse(strings.NewReader(sampleHAR))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "defaults skip static and non-GET",
			opts: DefaultOptions(),
			want: []string{"https://example.com/", "https://api.example.com/v1/users"},
		},
		{
			name: "static included",
			opts: Options{},
			want: []string{"https://example.com/", "https://api.example.com/v1/users", "https://cdn.example.com/app.JS"},
		},
		{
			name: "include hosts",
			opts: Options{IncludeHosts: []string{"api.example.com"}},
			want: []string{"https://api.example.com/v1/users"},
		},
		{
			name: "exclude hosts",
			opts: Options{ExcludeHosts: []string{"api.example.com"}, ExcludeStatic: true},
			want: []string{"https://example.com/"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Hosts(h, tt.opts)
			if err != nil {
				t.Fatalf("Hosts() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Hosts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHostsNil(t *testing.T) {
	if _, err := Hosts(nil, DefaultOptions()); err == nil {
		t.Error("expected error for nil HAR")
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.har")
	if err := os.WriteFile(path, []byte(sampleHAR), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ReadFile() = %v, want 2 hosts", got)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.har")); err == nil {
		t.Error("expected error for missing file")
	}
}
