package trefle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Dimwest/iot-garden-backend/apperrors"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://trefle.io"

// PlantRecord is the provider's plant document, kept opaque.
type PlantRecord map[string]interface{}

// Client calls the Trefle botanical API: a search for matching plants,
// then one fetch per search hit for the full record.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

func NewClient(token string, log *logrus.Logger) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// Search returns the raw search hits for a plant name.
func (c *Client) Search(ctx context.Context, name string, pageSize int) ([]PlantRecord, error) {
	q := url.Values{}
	q.Set("token", c.token)
	q.Set("q", name)
	q.Set("page_size", strconv.Itoa(pageSize))

	var body struct {
		Data []PlantRecord `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/v1/plants/search?"+q.Encode(), &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// Plant fetches the full record for one plant id.
func (c *Client) Plant(ctx context.Context, id int64) (PlantRecord, error) {
	q := url.Values{}
	q.Set("token", c.token)

	var body struct {
		Data PlantRecord `json:"data"`
	}
	path := fmt.Sprintf("/api/v1/plants/%d?%s", id, q.Encode())
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// PlantInfo searches for a plant name and resolves every hit into its full
// record, preserving the provider's result order.
func (c *Client) PlantInfo(ctx context.Context, name string, pageSize int) ([]PlantRecord, error) {
	c.log.Infof("Fetching data for plant name: %s", name)

	hits, err := c.Search(ctx, name, pageSize)
	if err != nil {
		return nil, err
	}

	results := make([]PlantRecord, 0, len(hits))
	for _, hit := range hits {
		id, ok := hit["id"].(float64)
		if !ok {
			return nil, apperrors.New(apperrors.KindProvider,
				"trefle search result missing numeric id")
		}
		plant, err := c.Plant(ctx, int64(id))
		if err != nil {
			return nil, err
		}
		results = append(results, plant)
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.KindProvider, err, "could not build trefle request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.KindProvider, err, "trefle request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.New(apperrors.KindProvider,
			"trefle responded with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.KindProvider, err, "could not decode trefle response")
	}
	return nil
}
