package users

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pders01/roster/internal/config"
	"github.com/pders01/roster/internal/debuglog"
)

const defaultMaxBodyBytes = 4 << 20

var (
	errNotArray     = errors.New("expected a JSON array of users")
	errBodyTooLarge = errors.New("response body exceeds size limit")
)

type Fetcher struct {
	client       *http.Client
	url          string
	userAgent    string
	maxBodyBytes int64
}

func NewFetcher(cfg *config.Config) *Fetcher {
	maxBody := cfg.Endpoint.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Endpoint.Timeout,
		},
		url:          cfg.Endpoint.URL,
		userAgent:    cfg.Endpoint.UserAgent,
		maxBodyBytes: maxBody,
	}
}

// FetchUsers issues one GET against the endpoint and classifies the result.
// It never mutates shared state.
func (f *Fetcher) FetchUsers(ctx context.Context) Outcome {
	outcome := f.fetch(ctx)

	log := debuglog.WithFields(map[string]interface{}{
		"kind":   outcome.Kind.String(),
		"status": outcome.StatusCode,
		"count":  len(outcome.Records),
		"url":    f.url,
	})
	if outcome.OK() {
		log.Infof("fetched users")
	} else {
		log.Warnf("fetch failed: %v", outcome.Err)
	}

	return outcome
}

func (f *Fetcher) fetch(ctx context.Context) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return NetworkFailure(fmt.Errorf("creating request: %w", err))
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return NetworkFailure(fmt.Errorf("fetching users: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HTTPFailure(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return NetworkFailure(fmt.Errorf("reading response: %w", err))
	}
	if int64(len(body)) > f.maxBodyBytes {
		return ParseFailure(errBodyTooLarge)
	}

	records, err := Decode(body)
	if err != nil {
		return ParseFailure(err)
	}

	return Success(records)
}

type wireRecord struct {
	ID       *int         `json:"id"`
	Name     *string      `json:"name"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Address  *wireAddress `json:"address"`
	Phone    string       `json:"phone"`
	Website  string       `json:"website"`
	Company  *wireCompany `json:"company"`
}

type wireAddress struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

type wireCompany struct {
	Name string `json:"name"`
}

// Decode parses a users payload. A malformed record fails the whole payload
// so nothing is partially rendered.
func Decode(body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotArray
	}

	var wire []wireRecord
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	records := make([]Record, 0, len(wire))
	for i, w := range wire {
		switch {
		case w.ID == nil:
			return nil, fmt.Errorf("record %d: missing id", i)
		case w.Name == nil:
			return nil, fmt.Errorf("record %d: missing name", i)
		case w.Address == nil:
			return nil, fmt.Errorf("record %d: missing address", i)
		case w.Company == nil:
			return nil, fmt.Errorf("record %d: missing company", i)
		}

		records = append(records, Record{
			ID:       *w.ID,
			Name:     *w.Name,
			Username: w.Username,
			Email:    w.Email,
			Address: Address{
				Street:  w.Address.Street,
				Suite:   w.Address.Suite,
				City:    w.Address.City,
				Zipcode: w.Address.Zipcode,
			},
			Phone:   w.Phone,
			Website: w.Website,
			Company: Company{Name: w.Company.Name},
		})
	}

	return records, nil
}
