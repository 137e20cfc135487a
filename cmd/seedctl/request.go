package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/seedauth/internal/pkg/atomicfile"
)

var errMissingEncryptedSeed = errors.New("response missing encrypted_seed")

type seedRequest struct {
	StudentID     string `json:"student_id"`
	GithubRepoURL string `json:"github_repo_url"`
	PublicKey     string `json:"public_key"`
}

type seedResponse struct {
	Status        string `json:"status"`
	EncryptedSeed string `json:"encrypted_seed"`
}

// requestBackoff is replaced by tests.
var requestBackoff = func() retry.Backoff {
	return retry.WithMaxRetries(3, retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(500*time.Millisecond)))
}

func runRequest(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("request", flag.ContinueOnError)
	studentID := fs.String("student-id", "", "student identifier")
	repoURL := fs.String("repo", "", "GitHub repository URL")
	apiURL := fs.String("api", os.Getenv("SEEDCTL_API_URL"), "seed provisioning API URL")
	pubPath := fs.String("public", "student_public.pem", "public key to register")
	outPath := fs.String("out", "encrypted_seed.txt", "where to save the encrypted seed")
	timeout := fs.Duration("timeout", 30*time.Second, "per attempt HTTP timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *studentID == "" || *repoURL == "" || *apiURL == "" {
		return errors.New("request: -student-id, -repo and -api are required")
	}

	// #nosec G304 -- path comes from a CLI flag.
	pub, err := os.ReadFile(*pubPath)
	if err != nil {
		return fmt.Errorf("read public key: %w", err)
	}

	body, err := json.Marshal(seedRequest{
		StudentID:     *studentID,
		GithubRepoURL: *repoURL,
		PublicKey:     string(pub),
	})
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: *timeout}

	var resp seedResponse
	err = retry.Do(ctx, requestBackoff(), func(ctx context.Context) error {
		var rerr error
		resp, rerr = postSeedRequest(ctx, client, *apiURL, body)
		return rerr
	})
	if err != nil {
		return err
	}

	if err := atomicfile.Write(*outPath, []byte(resp.EncryptedSeed), 0o644); err != nil {
		return fmt.Errorf("write encrypted seed: %w", err)
	}

	fmt.Fprintf(stdout, "saved encrypted seed to %s\n", *outPath)
	return nil
}

func postSeedRequest(ctx context.Context, client *http.Client, url string, body []byte) (seedResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return seedResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return seedResponse{}, retry.RetryableError(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return seedResponse{}, retry.RetryableError(err)
	}

	if res.StatusCode != http.StatusOK {
		err := fmt.Errorf("api error %d: %s", res.StatusCode, strings.TrimSpace(string(raw)))
		if res.StatusCode >= http.StatusInternalServerError || res.StatusCode == http.StatusTooManyRequests {
			return seedResponse{}, retry.RetryableError(err)
		}
		return seedResponse{}, err
	}

	var out seedResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return seedResponse{}, fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(out.EncryptedSeed) == "" {
		return seedResponse{}, errMissingEncryptedSeed
	}

	return out, nil
}
