// cmd/seed populates a running voicelog instance with demo data through the
// public API: a demo user, notes in every category, and a handful of
// Customer Complaints notes exercised through their workflow (work updates
// appended, some closed).
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// ----------------------------------------------------------------------------
// Config ---------------------------------------------------------------------
var (
	baseURL = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	email   = flag.String("email", env("EMAIL", "demo@example.com"), "User e-mail")
	pass    = flag.String("pass", env("PASSWORD", "Password123"), "User password")
	nNotes  = flag.Int("n", envInt("COUNT", 100), "How many notes to create")
)

var categories = []string{
	"Work Update",
	"Improvement Idea",
	"New Learning",
	"Customer Complaints",
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}

// ----------------------------------------------------------------------------
// HTTP helpers ---------------------------------------------------------------
func postJSON(path string, body any, hdr map[string]string) (*http.Response, error) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	return http.DefaultClient.Do(req)
}

func must(body io.ReadCloser) []byte {
	defer body.Close()
	data, _ := io.ReadAll(body)
	return data
}

// ----------------------------------------------------------------------------
// Main -----------------------------------------------------------------------
func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	fmt.Printf("Seeding account %s (notes=%d) on %s\n", *email, *nNotes, *baseURL)

	token, err := ensureUser()
	if err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	if err := createNotes(token, *nNotes); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	fmt.Println("✔ done")
}

// ----------------------------------------------------------------------------
// Step 1 – make sure the user exists -----------------------------------------
func ensureUser() (string, error) {
	payload := map[string]string{"email": *email, "password": *pass}

	// Try sign-up first …
	if resp, err := postJSON("/api/v1/auth/sign-up", payload, nil); err == nil && resp.StatusCode < 300 {
		var r struct {
			Token string `json:"token"`
		}
		_ = json.Unmarshal(must(resp.Body), &r)
		fmt.Println("• signed-up new user")
		return r.Token, nil
	}

	// … otherwise fall back to sign-in.
	resp, err := postJSON("/api/v1/auth/sign-in", payload, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign-in failed (%d): %s", resp.StatusCode, must(resp.Body))
	}
	var r struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(must(resp.Body), &r)
	fmt.Println("• signed-in existing user")
	return r.Token, nil
}

// ----------------------------------------------------------------------------
// Step 2 – create notes and drive complaint workflows -------------------------
func createNotes(token string, total int) error {
	h := map[string]string{"Authorization": "Bearer " + token}

	for i := 1; i <= total; i++ {
		category := categories[gofakeit.Number(0, len(categories)-1)]
		note := map[string]any{
			"text":     gofakeit.Sentence(gofakeit.Number(5, 20)),
			"category": category,
		}
		if category == "Customer Complaints" {
			note["assigned_to"] = gofakeit.Email()
		}

		resp, err := postJSON("/api/v1/notes", note, h)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusCreated {
			return fmt.Errorf("create note %d failed (%d): %s", i, resp.StatusCode, must(resp.Body))
		}

		if category == "Customer Complaints" {
			var r struct {
				Note struct {
					ID string `json:"id"`
				} `json:"note"`
			}
			_ = json.Unmarshal(must(resp.Body), &r)
			if err := driveWorkflow(r.Note.ID, h); err != nil {
				return err
			}
		} else {
			_ = must(resp.Body)
		}

		if i%50 == 0 || i == total {
			fmt.Printf("  … %d/%d\n", i, total)
		}
	}
	return nil
}

// driveWorkflow appends zero or more work updates and sometimes closes the
// complaint, so seeded data covers all three workflow states.
func driveWorkflow(noteID string, h map[string]string) error {
	if noteID == "" {
		return nil
	}

	for range gofakeit.Number(0, 3) {
		update := map[string]any{"text": gofakeit.Sentence(gofakeit.Number(4, 12))}
		resp, err := postJSON("/api/v1/notes/"+noteID+"/work-updates", update, h)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("append work update failed (%d): %s", resp.StatusCode, must(resp.Body))
		}
		_ = must(resp.Body)
	}

	if gofakeit.Bool() {
		resp, err := postJSON("/api/v1/notes/"+noteID+"/close", nil, h)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("close complaint failed (%d): %s", resp.StatusCode, must(resp.Body))
		}
		_ = must(resp.Body)
	}
	return nil
}
