package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/holmlund/replicate-ideogram-pipeline/internal/httpclient"
	"github.com/holmlund/replicate-ideogram-pipeline/internal/imagegen"
	"github.com/holmlund/replicate-ideogram-pipeline/internal/replicate"
)

const userAgent = "replicate-ideogram-pipeline/1.0"

type server struct {
	pipe           *imagegen.Pipeline
	requestTimeout time.Duration
}

type apiError struct {
	Error string `json:"error"`
}

type generateRequest struct {
	Message string `json:"message"`
}

type generateResponse struct {
	Result string `json:"result"`
}

func main() {
	_ = godotenv.Load()

	apiToken := strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN"))
	if apiToken == "" {
		panic("REPLICATE_API_TOKEN is required")
	}

	addr := strings.TrimSpace(getEnv("WEB_ADDR", ":8080"))

	httpTimeout := time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 180 * time.Second
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: getEnvBool("PREFER_IPV4", true),
		Timeout:    httpTimeout,
		UserAgent:  userAgent,
	})

	rep := replicate.New(replicate.Options{
		APIToken:     apiToken,
		BaseURL:      strings.TrimSpace(getEnv("REPLICATE_BASE_URL", "https://api.replicate.com")),
		HTTPClient:   httpClient,
		Logger:       logger,
		PollInterval: time.Duration(getEnvInt("REPLICATE_POLL_INTERVAL_MS", 1000)) * time.Millisecond,
	})

	requestTimeout := time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 240)) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 240 * time.Second
	}

	s := &server{
		pipe: imagegen.New(imagegen.Options{
			Runner: rep,
			Logger: logger,
		}),
		requestTimeout: requestTimeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)

	srv := &http.Server{
		Addr:              addr,
		Handler:           withLogging(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	logger.Info("web started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, apiError{Error: "method not allowed"})
		return
	}

	const maxBodyBytes = 64 << 10
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	writeJSON(w, http.StatusOK, generateResponse{
		Result: s.pipe.Generate(ctx, req.Message),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func withLogging(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http", "method", r.Method, "path", r.URL.Path, "dur_ms", time.Since(start).Milliseconds())
	})
}
