package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server
type MockGitHubServerConfig struct {
	mu sync.Mutex

	// PRs holds the pull requests known to the server, by number
	PRs map[int]*github.PullRequest
	// CreatedPRs stores PRs that were created (for testing)
	CreatedPRs []*github.PullRequest
	// MergedPRs lists merged pull request numbers with the merge method used
	MergedPRs map[int]string
	// RetargetedPRs maps pull request numbers to their new base
	RetargetedPRs map[int]string
	// DeletedRefs lists deleted refs, e.g. "heads/feat1"
	DeletedRefs []string
	// MissingRefs makes deleting the named ref answer "Reference does not exist"
	MissingRefs map[string]bool
	// MergeStatus overrides the merge endpoint's HTTP status when set
	MergeStatus int
	// PageSize splits the pull request list into pages when positive
	PageSize int

	Owner string
	Repo  string
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		PRs:           make(map[int]*github.PullRequest),
		MergedPRs:     make(map[int]string),
		RetargetedPRs: make(map[int]string),
		MissingRefs:   make(map[string]bool),
		Owner:         "owner",
		Repo:          "repo",
	}
}

// AddPR registers an open pull request built from data
func (c *MockGitHubServerConfig) AddPR(data SamplePRData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PRs[data.Number] = NewSamplePullRequest(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewMockGitHubServer creates an httptest server that mocks the GitHub pull request and ref endpoints
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	repoPath := "/repos/" + config.Owner + "/" + config.Repo
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+repoPath+"/pulls", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()

		base := r.URL.Query().Get("base")
		numbers := make([]int, 0, len(config.PRs))
		for n := range config.PRs {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)

		var open []*github.PullRequest
		for _, n := range numbers {
			pr := config.PRs[n]
			if pr.GetState() != "open" {
				continue
			}
			if base != "" && pr.GetBase().GetRef() != base {
				continue
			}
			open = append(open, pr)
		}

		if config.PageSize > 0 {
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			if page < 1 {
				page = 1
			}
			start := (page - 1) * config.PageSize
			end := start + config.PageSize
			if start > len(open) {
				start = len(open)
			}
			if end < len(open) {
				next := *r.URL
				q := next.Query()
				q.Set("page", strconv.Itoa(page+1))
				next.RawQuery = q.Encode()
				w.Header().Set("Link", fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, next.RequestURI()))
			} else {
				end = len(open)
			}
			open = open[start:end]
		}

		writeJSON(w, http.StatusOK, open)
	})

	mux.HandleFunc("POST "+repoPath+"/pulls", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()

		var newPR github.NewPullRequest
		if err := json.NewDecoder(r.Body).Decode(&newPR); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		number := len(config.PRs) + 1
		for config.PRs[number] != nil {
			number++
		}
		pr := NewSamplePullRequest(SamplePRData{
			Number: number,
			Title:  newPR.GetTitle(),
			Body:   newPR.GetBody(),
			Head:   newPR.GetHead(),
			Base:   newPR.GetBase(),
		})
		pr.Draft = newPR.Draft

		config.PRs[number] = pr
		config.CreatedPRs = append(config.CreatedPRs, pr)
		writeJSON(w, http.StatusCreated, pr)
	})

	mux.HandleFunc("PATCH "+repoPath+"/pulls/{number}", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()

		number, _ := strconv.Atoi(r.PathValue("number"))
		pr := config.PRs[number]
		if pr == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}

		// The API sends {"base": "branch-name"}, not a branch object.
		var update struct {
			Title *string `json:"title,omitempty"`
			Base  *string `json:"base,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if update.Title != nil {
			pr.Title = update.Title
		}
		if update.Base != nil {
			pr.Base = &github.PullRequestBranch{Ref: update.Base}
			config.RetargetedPRs[number] = *update.Base
		}
		writeJSON(w, http.StatusOK, pr)
	})

	mux.HandleFunc("PUT "+repoPath+"/pulls/{number}/merge", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()

		if config.MergeStatus != 0 {
			writeJSON(w, config.MergeStatus, map[string]string{"message": "Pull Request is not mergeable"})
			return
		}

		number, _ := strconv.Atoi(r.PathValue("number"))
		pr := config.PRs[number]
		if pr == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}

		var opts struct {
			MergeMethod string `json:"merge_method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&opts)

		pr.State = github.String("closed")
		pr.Merged = github.Bool(true)
		config.MergedPRs[number] = opts.MergeMethod
		writeJSON(w, http.StatusOK, &github.PullRequestMergeResult{
			SHA:     github.String(fmt.Sprintf("squash%d", number)),
			Merged:  github.Bool(true),
			Message: github.String("Pull Request successfully merged"),
		})
	})

	mux.HandleFunc("DELETE "+repoPath+"/git/refs/{ref...}", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()

		ref, err := url.PathUnescape(r.PathValue("ref"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if config.MissingRefs[ref] {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Reference does not exist"})
			return
		}
		config.DeletedRefs = append(config.DeletedRefs, ref)
		w.WriteHeader(http.StatusNoContent)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() { server.Close() })
	return server
}

// NewMockGitHubClient creates a GitHub client configured to use a mock server
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) (*github.Client, string, string) {
	server := NewMockGitHubServer(t, config)
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL

	return client, config.Owner, config.Repo
}
