package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/TobiSchelling/NewsTone/internal/analyze"
	"github.com/TobiSchelling/NewsTone/internal/chart"
	"github.com/TobiSchelling/NewsTone/internal/database"
	"github.com/TobiSchelling/NewsTone/internal/report"
	"github.com/TobiSchelling/NewsTone/internal/termfreq"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

const defaultTrendDays = 30

// Server is the HTTP server for the tone dashboard.
type Server struct {
	db    *database.DB
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server.
func New(db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown":    renderMarkdown,
		"formatDate":  database.FormatDateDisplay,
		"mood":        report.Mood,
		"signed":      func(v float64) string { return fmt.Sprintf("%+.3f", v) },
		"pct":         func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"previousDay": database.PreviousDay,
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "day.html", "trends.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/day/", s.handleDay)
	s.mux.HandleFunc("/trends", s.handleTrends)
	s.mux.HandleFunc("/api/summaries", s.handleAPISummaries)
	s.mux.HandleFunc("/api/summaries/", s.handleAPISummary)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	summaries, err := s.db.GetAllSummaries()
	if err != nil {
		log.Printf("Error listing summaries: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	stats, err := s.db.GetStats()
	if err != nil {
		log.Printf("Error loading stats: %v", err)
	}

	s.render(w, http.StatusOK, "index.html", map[string]any{
		"Summaries": summaries,
		"Stats":     stats,
	})
}

func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimPrefix(r.URL.Path, "/day/")
	if date == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if !database.ValidDate(date) {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	summary, err := s.loadSummary(date)
	if err != nil {
		log.Printf("Error loading summary %s: %v", date, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := map[string]any{"Date": date, "Summary": summary}
	if summary == nil {
		s.render(w, http.StatusNotFound, "day.html", data)
		return
	}

	data["Report"] = report.Markdown(summary)
	data["Unigrams"] = chart.Bars(termBars(summary.TopUnigrams), "%.0f")
	data["Bigrams"] = chart.Bars(termBars(summary.TopBigrams), "%.0f")
	data["Tone"] = chart.Bars(chart.SortedBars(toneBars(summary)), "%.1f%%")
	data["Composition"] = chart.Stacked(shareBars(summary))
	s.render(w, http.StatusOK, "day.html", data)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	days := defaultTrendDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "Invalid days parameter", http.StatusBadRequest)
			return
		}
		days = n
	}

	points, err := s.db.GetTrend(days)
	if err != nil {
		log.Printf("Error loading trend: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	labels := make([]string, len(points))
	polarity := chart.Series{Name: "mean polarity"}
	neg := chart.Series{Name: "% with negative"}
	unc := chart.Series{Name: "% with uncertainty"}
	pos := chart.Series{Name: "% with positive"}
	for i, p := range points {
		labels[i] = p.Date
		polarity.Values = append(polarity.Values, p.VaderMean)
		neg.Values = append(neg.Values, p.HeadWithNeg)
		unc.Values = append(unc.Values, p.HeadWithUnc)
		pos.Values = append(pos.Values, p.HeadWithPos)
	}

	s.render(w, http.StatusOK, "trends.html", map[string]any{
		"Days":     days,
		"Points":   points,
		"Polarity": chart.Line(labels, []chart.Series{polarity}),
		"Shares":   chart.Line(labels, []chart.Series{neg, unc, pos}),
	})
}

func (s *Server) handleAPISummaries(w http.ResponseWriter, r *http.Request) {
	points, err := s.db.GetTrend(0)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if points == nil {
		points = []database.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimPrefix(r.URL.Path, "/api/summaries/")
	if !database.ValidDate(date) {
		writeJSONError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	row, err := s.db.GetSummary(date)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if row == nil {
		writeJSONError(w, http.StatusNotFound, "no summary for "+date)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(row.Payload))
}

func (s *Server) loadSummary(date string) (*analyze.Summary, error) {
	row, err := s.db.GetSummary(date)
	if err != nil || row == nil {
		return nil, err
	}
	return analyze.Unmarshal([]byte(row.Payload))
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

func termBars(terms []termfreq.Term) []chart.Bar {
	bars := make([]chart.Bar, len(terms))
	for i, t := range terms {
		bars[i] = chart.Bar{Label: t.Term, Value: float64(t.Count)}
	}
	return bars
}

func toneBars(s *analyze.Summary) []chart.Bar {
	bars := make([]chart.Bar, len(s.Categories))
	for i, c := range s.Categories {
		bars[i] = chart.Bar{Label: c.Category, Value: c.HeadlinePct}
	}
	return bars
}

func shareBars(s *analyze.Summary) []chart.Bar {
	bars := make([]chart.Bar, len(s.Categories))
	for i, c := range s.Categories {
		bars[i] = chart.Bar{Label: c.Category, Value: c.ShareMean}
	}
	return bars
}

// Serve starts the HTTP server on the given port and shuts it down when ctx
// is cancelled.
func Serve(ctx context.Context, db *database.DB, port int) error {
	srv, err := New(db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	hs := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("Server listening on http://%s", addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
