// Package client talks to the application submission API. Its Client satisfies
// form.Submitter.
package client

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/devops863/kaizen-sourcing/internal/common/errors"
	httpclient "github.com/devops863/kaizen-sourcing/internal/common/http"
	"github.com/devops863/kaizen-sourcing/internal/common/validation"
	"github.com/devops863/kaizen-sourcing/internal/form"
	"github.com/devops863/kaizen-sourcing/internal/models"
)

const (
	applicationsPath = "/applications"
	schemaPath       = "/schema/application"
)

type Client struct {
	http *httpclient.Client
}

// New returns a client for the API rooted at baseURL (including any base path).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{http: httpclient.NewClient(baseURL, timeout)}
}

// Submit posts a form payload. It is the form.Submitter implementation.
func (c *Client) Submit(ctx context.Context, payload map[string]interface{}) (*models.Application, error) {
	return c.create(ctx, payload)
}

func (c *Client) CreateApplication(ctx context.Context, in *models.InsertApplication) (*models.Application, error) {
	return c.create(ctx, in)
}

func (c *Client) create(ctx context.Context, body interface{}) (*models.Application, error) {
	resp, err := c.http.DoJSON(ctx, http.MethodPost, applicationsPath, body)
	if err != nil {
		return nil, &form.TransportError{Err: err}
	}
	if !resp.OK() {
		return nil, responseError(resp)
	}

	var app models.Application
	if err := resp.Decode(&app); err != nil {
		return nil, &form.TransportError{StatusCode: resp.StatusCode, Err: err}
	}
	return &app, nil
}

// ListApplications returns every stored application.
func (c *Client) ListApplications(ctx context.Context) ([]models.Application, error) {
	resp, err := c.http.DoJSON(ctx, http.MethodGet, applicationsPath, nil)
	if err != nil {
		return nil, &form.TransportError{Err: err}
	}
	if !resp.OK() {
		return nil, responseError(resp)
	}

	var apps []models.Application
	if err := resp.Decode(&apps); err != nil {
		return nil, &form.TransportError{StatusCode: resp.StatusCode, Err: err}
	}
	return apps, nil
}

// Contract fetches the schema served by the API and compiles it.
func (c *Client) Contract(ctx context.Context) (*validation.Contract, error) {
	resp, err := c.http.DoJSON(ctx, http.MethodGet, schemaPath, nil)
	if err != nil {
		return nil, &form.TransportError{Err: err}
	}
	if !resp.OK() {
		return nil, responseError(resp)
	}
	return validation.Compile(resp.Body)
}

type errorBody struct {
	Code    apperrors.ErrorCode          `json:"code"`
	Message string                       `json:"message"`
	Errors  []validation.ValidationError `json:"errors"`
}

// responseError maps validation rejections to ServerValidationError and
// everything else to TransportError.
func responseError(resp *httpclient.Response) error {
	var body errorBody
	if err := resp.Decode(&body); err != nil {
		return &form.TransportError{StatusCode: resp.StatusCode}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 && apperrors.IsClientError(body.Code) {
		fields := make(map[string]string, len(body.Errors))
		for _, e := range body.Errors {
			if _, seen := fields[e.Field]; !seen {
				fields[e.Field] = e.Message
			}
		}
		return &form.ServerValidationError{Message: body.Message, Fields: fields}
	}

	return &form.TransportError{Message: body.Message, StatusCode: resp.StatusCode}
}
