package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"search-insight-service/internal/api"
	"search-insight-service/internal/cache"
	"search-insight-service/internal/config"
	"search-insight-service/internal/insight"
	"search-insight-service/internal/logger"
	"search-insight-service/internal/orchestrator"
	"search-insight-service/internal/processor"
	"search-insight-service/internal/provider"
)

func main() {
	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration
	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.LogError("Failed to load configuration: %v", err)
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create a single, optimized HTTP client for all provider requests
	httpClient := &http.Client{
		Timeout: appConfig.ProviderTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}

	// Providers: Tavily primary, DuckDuckGo Instant Answer fallback
	primary := provider.NewTavilyClient(appConfig.TavilyAPIKey, appConfig.TavilyAPIURL, httpClient)
	fallback := provider.NewDuckDuckGoClient(appConfig.DuckDuckGoAPIURL, httpClient)

	gateway, err := provider.NewGateway(primary, fallback, appConfig.ProviderPoolSize,
		provider.WithTimeout(appConfig.ProviderTimeout))
	if err != nil {
		log.Fatalf("Failed to create provider gateway: %v", err)
	}
	defer gateway.Close()

	// Content processing with best-effort page enrichment
	enricher := processor.NewEnricher(appConfig.ContentCacheTTL, appConfig.ContentCacheTTL+5*time.Minute)
	proc := processor.New(
		processor.WithEnricher(enricher),
		processor.WithSummaryBudget(appConfig.SummaryBudget),
		processor.WithMaxKeywords(appConfig.MaxKeywords),
		processor.WithEnrichTop(appConfig.EnrichTopResults),
	)

	// Bounded insight cache with stale-grace window
	store := cache.NewInsightStore(appConfig.CacheCapacity, appConfig.CacheGrace)

	orch := orchestrator.New(store, gateway, proc,
		orchestrator.WithTTLs(appConfig.CacheTTL, appConfig.NewsCacheTTL))

	if len(os.Args) > 1 && os.Args[1] == "ask" {
		runInteractive(orch)
		return
	}

	// Initialize handlers
	searchHandler := api.NewSearchHandler(orch)

	// Setup HTTP server
	mux := http.NewServeMux()
	mux.HandleFunc("/search", searchHandler.HandleSearch)
	mux.HandleFunc("/search/enhanced", searchHandler.HandleEnhancedSearch)

	// Add health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339)); err != nil {
			logger.LogError("Warning: failed to write health check response: %v", err)
		}
	})

	// Create compression and timeout middleware
	handler := gzipMiddleware(timeoutMiddleware(mux))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appConfig.GetPort()),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %d", appConfig.GetPort())
		log.Printf("Available endpoints:")
		log.Printf("  POST/GET /search          - Search and return the top answer with its insight")
		log.Printf("  POST/GET /search/enhanced - Search and return insight, summary, keywords, raw results")
		log.Printf("  GET      /health          - Health check endpoint")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogError("Server failed to start: %v", err)
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		logger.LogError("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited gracefully")
}

// runInteractive reads queries from stdin and prints their insights. Used
// for manual testing without standing up the HTTP server.
func runInteractive(orch *orchestrator.Orchestrator) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Search insight service - interactive mode")
	fmt.Println("Type a query, or 'exit' to quit. Prefix with 'news:' or 'image:' to change search type.")

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			break
		}

		searchType := "general"
		if rest, ok := strings.CutPrefix(line, "news:"); ok {
			searchType, line = "news", strings.TrimSpace(rest)
		} else if rest, ok := strings.CutPrefix(line, "image:"); ok {
			searchType, line = "image", strings.TrimSpace(rest)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		res, err := orch.EnhancedSearch(ctx, line, "interactive", searchType, insight.DefaultParams())
		cancel()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		fmt.Printf("Source:   %s\n", res.Insight.Source)
		if res.Insight.Title != "" {
			fmt.Printf("Title:    %s\n", res.Insight.Title)
		}
		if res.Insight.URL != "" {
			fmt.Printf("URL:      %s\n", res.Insight.URL)
		}
		if res.Insight.DirectAnswer != "" {
			fmt.Printf("Answer:   %s\n", res.Insight.DirectAnswer)
		} else if res.Summary != "" {
			fmt.Printf("Summary:  %s\n", res.Summary)
		}
		if len(res.Keywords) > 0 {
			fmt.Printf("Keywords: %s\n", strings.Join(res.Keywords, ", "))
		}
		fmt.Printf("Results:  %d\n", len(res.RawResults))
	}
}

// gzipMiddleware compresses responses when the client supports it
func gzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check if client supports gzip
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		// Set gzip headers
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Vary", "Accept-Encoding")

		// Create gzip writer
		gw := gzip.NewWriter(w)
		defer func() {
			if err := gw.Close(); err != nil {
				logger.LogError("Error closing gzip writer: %v", err)
			}
		}()

		// Wrap response writer
		grw := &gzipResponseWriter{ResponseWriter: w, writer: gw}
		next.ServeHTTP(grw, r)
	})
}

// gzipResponseWriter wraps http.ResponseWriter to compress responses
type gzipResponseWriter struct {
	http.ResponseWriter
	writer *gzip.Writer
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.writer.Write(b)
}

func (w *gzipResponseWriter) Header() http.Header {
	return w.ResponseWriter.Header()
}

// timeoutMiddleware adds request timeout handling
func timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 45*time.Second)
		defer cancel()

		// Create new request with timeout context
		r = r.WithContext(ctx)

		// Handle timeout
		done := make(chan struct{})
		go func() {
			next.ServeHTTP(w, r)
			close(done)
		}()

		select {
		case <-done:
			// Request completed successfully
			return
		case <-ctx.Done():
			// Request timed out
			logger.LogError("Request timed out: %s %s", r.Method, r.URL.Path)
			http.Error(w, "Request timeout", http.StatusGatewayTimeout)
			return
		}
	})
}
