package httpserver

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func BenchmarkHandleSubmitRating(b *testing.B) {
	srv := buildTestServer(b)

	challenge := createTestChallenge(b, srv, time.Now().Add(24*time.Hour))
	sub := createTestSubmission(b, srv, challenge.ID, "bench-owner")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		payload := []byte(`{"stars":4}`)
		req := httptest.NewRequest(http.MethodPost, "/submissions/"+sub.ID+"/ratings", bytes.NewReader(payload))
		req.Header.Set("Authorization", "Bearer "+signToken(b, fmt.Sprintf("bench-rater-%d", i), "Bench"))
		req = attachParam(req, "submissionID", sub.ID)
		rec := httptest.NewRecorder()

		srv.handleSubmitRating(rec, req)
		if rec.Code != http.StatusCreated {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
