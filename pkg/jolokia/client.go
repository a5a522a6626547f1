// Package jolokia reads MBeans through the Jolokia HTTP-JMX bridge.
package jolokia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/amiskov/jmx-check/pkg/logger"
	"github.com/amiskov/jmx-check/pkg/models"
)

const DefaultTimeout = 5 * time.Second

type Client struct {
	http *resty.Client
}

// New creates a client; the timeout covers connecting and reading the whole response.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	rc := resty.New().
		SetTimeout(timeout).
		SetTransport(logger.NewTransport(http.DefaultTransport)).
		// Jolokia agents are served over plain HTTP, basic auth included.
		SetDisableWarn(true).
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

type envelope struct {
	Value   json.RawMessage            `json:"value"`
	Request map[string]json.RawMessage `json:"request"`
	Error   string                     `json:"error"`
}

// Fetch performs a single `read` request for the MBean. A single MBean gives one
// result named after it; a pattern gives one result per matched MBean in the
// order the agent returned them.
func (c *Client) Fetch(ctx context.Context, mbean models.MBean) ([]models.Result, error) {
	url := mbean.ReadURL()

	req := c.http.R().SetContext(ctx)
	if mbean.Agent.HasCredentials() {
		req.SetBasicAuth(mbean.Agent.User, mbean.Agent.Password)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w `%s`: %v", models.ErrorConnection, url, err)
	}
	body := resp.Body()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w %d from `%s`:\n%s", models.ErrorUnexpectedStatus, resp.StatusCode(), url, body)
	}

	results, err := parse(body)
	if err != nil {
		return nil, err
	}
	logger.Log(ctx).Debugf("Got %d MBean(s) from `%s`.", len(results), url)
	return results, nil
}

func parse(body []byte) ([]models.Result, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v:\n%s", models.ErrorInvalidResponse, err, body)
	}

	if env.Value == nil {
		if env.Error != "" {
			return nil, fmt.Errorf("%w: %s:\n%s", models.ErrorInvalidResponse, env.Error, body)
		}
		return nil, fmt.Errorf("%w: no `value` in response:\n%s", models.ErrorInvalidResponse, body)
	}

	if rawName, ok := env.Request["mbean"]; ok {
		content, err := decode(env.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v:\n%s", models.ErrorInvalidResponse, err, body)
		}
		return []models.Result{{Name: mbeanName(rawName), Content: models.NewValue(content)}}, nil
	}

	results, err := decodeMembers(env.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v:\n%s", models.ErrorInvalidResponse, err, body)
	}
	return results, nil
}

func mbeanName(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return string(raw)
	}
	return name
}

func decode(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeMembers turns an object into results keeping the key order.
func decodeMembers(raw json.RawMessage) ([]models.Result, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("pattern `value` is not an object")
	}

	results := []models.Result{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var content any
		if err := dec.Decode(&content); err != nil {
			return nil, err
		}
		results = append(results, models.Result{Name: name, Content: models.NewValue(content)})
	}
	return results, nil
}
