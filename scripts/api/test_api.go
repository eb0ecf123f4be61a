// Minimal end‑to‑end integration test for the PeerPanel API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	baseURL  = getenv("API_URL", "http://localhost:8080/api")
	redisURL = getenv("REDIS_URL", "redis://localhost:6379/0")
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	ctx := context.Background()
	rdb := mustRedis()
	defer rdb.Close()

	checkHealth()

	panelistID := createPanelist()
	proposalID := uploadProposal()

	reviewID := generateReview(panelistID, proposalID)
	runPanel(proposalID)
	checkSummary(proposalID)

	submitFeedback(reviewID)
	checkTraining()
	checkReviewEvents(ctx, rdb)

	fmt.Println("✓ all endpoints passed")
}

// ----------------------------- health

func checkHealth() {
	var resp struct{ Status string }
	doJSON("GET", "/health", nil, &resp, http.StatusOK)
	if resp.Status != "healthy" {
		log.Fatalf("health: status %q", resp.Status)
	}
}

// ----------------------------- panelists

func createPanelist() uint64 {
	var resp struct {
		Panelist struct{ ID uint64 } `json:"panelist"`
	}
	doJSON("POST", "/panelists", map[string]any{
		"name":              "integration-test " + uuid.NewString(),
		"expertise_areas":   []string{"machine learning", "systems"},
		"bio":               "Panelist created by the integration harness.",
		"critical_score":    7.5,
		"openness_score":    6.0,
		"seriousness_score": 8.0,
	}, &resp, http.StatusCreated)
	if resp.Panelist.ID == 0 {
		log.Fatal("panelists: empty id")
	}
	return resp.Panelist.ID
}

// ----------------------------- proposals

func uploadProposal() uint64 {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", "integration-test.txt")
	if err != nil {
		log.Fatalf("upload: form file: %v", err)
	}
	fmt.Fprintln(fw, "Adaptive Calibration of Review Panels")
	fmt.Fprintln(fw)
	fmt.Fprintln(fw, "Abstract")
	fmt.Fprintln(fw, "We propose a method for calibrating automated review panels against")
	fmt.Fprintln(fw, "historical human ratings, improving score consistency across domains.")
	fmt.Fprintln(fw)
	fmt.Fprintln(fw, "1. Introduction")
	fmt.Fprintln(fw, "Panel reviews drift as reviewer pools change. This work measures and")
	fmt.Fprintln(fw, "corrects that drift with a feedback-driven calibration loop.")
	w.Close()

	req, _ := http.NewRequest("POST", baseURL+"/proposals/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("upload: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(res.Body)
		log.Fatalf("upload: want 201 got %d: %s", res.StatusCode, raw)
	}
	var resp struct {
		Proposal struct{ ID uint64 } `json:"proposal"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		log.Fatalf("upload decode: %v", err)
	}
	if resp.Proposal.ID == 0 {
		log.Fatal("upload: empty proposal id")
	}
	return resp.Proposal.ID
}

// ----------------------------- reviews

func generateReview(panelistID, proposalID uint64) uint64 {
	var resp struct {
		Review struct{ ID uint64 } `json:"review"`
	}
	doJSON("POST", "/reviews/generate", map[string]any{
		"panelist_id": panelistID,
		"proposal_id": proposalID,
	}, &resp, http.StatusCreated)
	if resp.Review.ID == 0 {
		log.Fatal("reviews: empty review id")
	}
	return resp.Review.ID
}

func runPanel(proposalID uint64) {
	var resp struct {
		Count     int `json:"count"`
		Requested int `json:"requested"`
	}
	doJSON("POST", "/reviews/panel", map[string]any{
		"proposal_id": proposalID,
	}, &resp, http.StatusCreated)
	if resp.Count == 0 {
		log.Fatalf("panel: no reviews produced (requested %d)", resp.Requested)
	}
}

func checkSummary(proposalID uint64) {
	var resp struct {
		Summary struct {
			ReviewCount  int     `json:"review_count"`
			AverageScore float64 `json:"average_score"`
		} `json:"summary"`
	}
	doJSON("GET", fmt.Sprintf("/reviews/proposal/%d", proposalID), nil, &resp, http.StatusOK)
	if resp.Summary.ReviewCount < 2 {
		log.Fatalf("summary: want at least 2 reviews, got %d", resp.Summary.ReviewCount)
	}
}

func submitFeedback(reviewID uint64) {
	doJSON("POST", fmt.Sprintf("/reviews/%d/feedback", reviewID), map[string]any{
		"rating":   4.5,
		"feedback": "integration-test feedback " + uuid.NewString(),
	}, nil, http.StatusOK)
}

// ----------------------------- training

func checkTraining() {
	var resp struct {
		Analysis struct {
			TotalReviews int `json:"total_reviews"`
		} `json:"analysis"`
	}
	doJSON("GET", "/training/analysis", nil, &resp, http.StatusOK)
	if resp.Analysis.TotalReviews == 0 {
		log.Fatal("training: no rated reviews in analysis")
	}
}

// ----------------------------- redis

func checkReviewEvents(ctx context.Context, rdb *redis.Client) {
	entries, err := rdb.XRevRangeN(ctx, "peerpanel.reviews", "+", "-", 1).Result()
	if err != nil {
		log.Fatalf("redis xrevrange: %v", err)
	}
	if len(entries) == 0 {
		log.Fatal("redis: no review events on stream")
	}
}

// ----------------------------- helpers

func mustRedis() *redis.Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("redis url: %v", err)
	}
	return redis.NewClient(opt)
}

func doJSON(method, path string, body, out any, want int) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			log.Fatalf("%s %s encode: %v", method, path, err)
		}
	}
	req, _ := http.NewRequest(method, baseURL+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if res.StatusCode != want {
		raw, _ := io.ReadAll(res.Body)
		log.Fatalf("%s %s: want %d got %d: %s", method, path, want, res.StatusCode, raw)
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			log.Fatalf("%s %s decode: %v", method, path, err)
		}
	}
}
