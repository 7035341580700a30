package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?feature=share&v=abcdefghijk", "abcdefghijk", true},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://example.com/video", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, ok := VideoID(tt.url)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("VideoID(%q): want=%q,%v got=%q,%v", tt.url, tt.want, tt.wantOK, got, ok)
			}
		})
	}
}

func TestClean(t *testing.T) {
	got := Clean("  hello\nworld \t\t again\n\n ")
	if got != "hello world again" {
		t.Fatalf("Clean: got=%q", got)
	}
}

type fakeSite struct {
	tracks   []Track
	captions map[string]string
	status   map[string]int
}

func (f *fakeSite) server(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			var tracks []string
			for _, tr := range f.tracks {
				tracks = append(tracks, fmt.Sprintf(`{"baseUrl":"%s/caption/%s","languageCode":"%s"}`, srv.URL, tr.LanguageCode, tr.LanguageCode))
			}
			fmt.Fprintf(w, `<html><script>var x = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[%s]}},"videoDetails":{}}</script></html>`,
				strings.Join(tracks, ","))
		default:
			code := strings.TrimPrefix(r.URL.Path, "/caption/")
			if s, ok := f.status[code]; ok {
				w.WriteHeader(s)
				return
			}
			fmt.Fprint(w, f.captions[code])
		}
	}))
	return srv
}

func captionXML(lines ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8" ?><transcript>`)
	for i, l := range lines {
		fmt.Fprintf(&sb, `<text start="%d.5" dur="2.1">%s</text>`, i, l)
	}
	sb.WriteString(`</transcript>`)
	return sb.String()
}

func TestTranscriptPrefersEnglish(t *testing.T) {
	site := &fakeSite{
		tracks: []Track{{LanguageCode: "de"}, {LanguageCode: "en"}},
		captions: map[string]string{
			"de": captionXML("hallo"),
			"en": captionXML("hello\nthere", "it&amp;#39;s   me"),
		},
	}
	srv := site.server(t)
	defer srv.Close()

	c := NewClient(nil, WithBaseURL(srv.URL))
	got, err := c.Transcript(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if got != "hello there it's me" {
		t.Fatalf("transcript: got=%q", got)
	}
}

func TestTranscriptFallsBack(t *testing.T) {
	tests := []struct {
		name string
		site *fakeSite
		want string
	}{
		{
			name: "english failing uses en-US",
			site: &fakeSite{
				tracks:   []Track{{LanguageCode: "fr"}, {LanguageCode: "en"}, {LanguageCode: "en-US"}},
				captions: map[string]string{"fr": captionXML("bonjour"), "en-US": captionXML("howdy")},
				status:   map[string]int{"en": http.StatusInternalServerError},
			},
			want: "howdy",
		},
		{
			name: "no english uses first",
			site: &fakeSite{
				tracks:   []Track{{LanguageCode: "fr"}, {LanguageCode: "es"}},
				captions: map[string]string{"fr": captionXML("bonjour"), "es": captionXML("hola")},
			},
			want: "bonjour",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := tt.site.server(t)
			defer srv.Close()
			c := NewClient(nil, WithBaseURL(srv.URL))
			got, err := c.Transcript(context.Background(), "dQw4w9WgXcQ")
			if err != nil {
				t.Fatalf("Transcript: %v", err)
			}
			if got != tt.want {
				t.Fatalf("want=%q got=%q", tt.want, got)
			}
		})
	}
}

func TestSegmentsShape(t *testing.T) {
	site := &fakeSite{tracks: []Track{{LanguageCode: "en"}}, captions: map[string]string{"en": captionXML("a", "b")}}
	srv := site.server(t)
	defer srv.Close()

	segs, err := NewClient(nil, WithBaseURL(srv.URL)).Segments(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(segs) != 2 || segs[1] != (Segment{Text: "b", Start: 1.5, Duration: 2.1}) {
		t.Fatalf("segments: got=%+v", segs)
	}
}

func TestTranscriptFailures(t *testing.T) {
	t.Run("no captions", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>nothing here</html>")
		}))
		defer srv.Close()
		_, err := NewClient(nil, WithBaseURL(srv.URL)).Transcript(context.Background(), "dQw4w9WgXcQ")
		if !errors.Is(err, ErrNoTranscript) {
			t.Fatalf("want ErrNoTranscript got=%v", err)
		}
	})

	t.Run("only track fails", func(t *testing.T) {
		site := &fakeSite{tracks: []Track{{LanguageCode: "en"}}, status: map[string]int{"en": http.StatusNotFound}}
		srv := site.server(t)
		defer srv.Close()
		_, err := NewClient(nil, WithBaseURL(srv.URL)).Transcript(context.Background(), "dQw4w9WgXcQ")
		if !errors.Is(err, ErrNoTranscript) {
			t.Fatalf("want ErrNoTranscript got=%v", err)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewClient(nil).Transcript(context.Background(), "https://example.com/nope")
		if err == nil || errors.Is(err, ErrNoTranscript) {
			t.Fatalf("want invalid url error got=%v", err)
		}
	})
}
