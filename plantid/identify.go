package plantid

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Dimwest/iot-garden-backend/apperrors"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.plant.id"

// Detail fields requested from the provider for every identification.
var plantDetails = []string{
	"name_authority",
	"common_names",
	"url",
	"wiki_description",
	"taxonomy",
}

// Identifier submits images to the plant.id v2 identification API.
type Identifier struct {
	apiKey  string
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

func NewIdentifier(apiKey string, log *logrus.Logger) *Identifier {
	return &Identifier{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Identify sends the image to the provider and returns its raw JSON body.
// The API layer passes that body through to the client unmodified.
func (i *Identifier) Identify(ctx context.Context, image []byte) ([]byte, error) {
	payload := map[string]interface{}{
		"images":        []string{base64.StdEncoding.EncodeToString(image)},
		"modifiers":     []string{"similar_images"},
		"plant_details": plantDetails,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindProvider, err, "could not encode identify payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		i.baseURL+"/v2/identify", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindProvider, err, "could not build identify request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", i.apiKey)

	resp, err := i.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindProvider, err, "identify request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindProvider, err, "could not read identify response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.New(apperrors.KindProvider,
			"identification API responded with status %d", resp.StatusCode)
	}
	return raw, nil
}
