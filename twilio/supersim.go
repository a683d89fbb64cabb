package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dimwest/iot-garden-backend/apperrors"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://supersim.twilio.com"

// CommandResult echoes what the Super SIM API reported for a dispatched
// command, plus the command string itself.
type CommandResult struct {
	Status      string `json:"status"`
	DateCreated string `json:"date_created"`
	Command     string `json:"command"`
}

// Dispatcher sends watering commands to the device's SIM over the Twilio
// Super SIM Commands API.
type Dispatcher struct {
	accountSID string
	authToken  string
	simSID     string
	baseURL    string
	http       *http.Client
	log        *logrus.Logger
}

func NewDispatcher(accountSID, authToken, simSID string, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		accountSID: accountSID,
		authToken:  authToken,
		simSID:     simSID,
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Dispatch sends WATER_<quantity> to the SIM. The quantity is formatted as
// a bare integer token, the device firmware parses no units.
func (d *Dispatcher) Dispatch(ctx context.Context, quantityML float64) (*CommandResult, error) {
	command := fmt.Sprintf("WATER_%d", int64(quantityML))
	d.log.Infof("Dispatching command %s to SIM %s", command, d.simSID)

	form := url.Values{}
	form.Set("Sim", d.simSID)
	form.Set("Command", command)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/v1/Commands", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDispatch, err, "could not build command request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(d.accountSID, d.authToken)

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindDispatch, err, "command dispatch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.New(apperrors.KindDispatch,
			"command API responded with status %d", resp.StatusCode)
	}

	var body struct {
		Status      string `json:"status"`
		DateCreated string `json:"date_created"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.Wrap(apperrors.KindDispatch, err, "could not decode command response")
	}

	return &CommandResult{
		Status:      body.Status,
		DateCreated: body.DateCreated,
		Command:     command,
	}, nil
}
