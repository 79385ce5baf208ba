package nhtsa

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	openapierrors "github.com/go-openapi/errors"
	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"

	"github.com/sm8ta/ridewise/internal/core/domain"
	"github.com/sm8ta/ridewise/internal/core/ports"
)

const (
	DefaultURL     = "https://vpic.nhtsa.dot.gov/api/vehicles"
	requestTimeout = 10 * time.Second
	vehicleType    = "motorcycle"
	minVINLength   = 5
	maxVINLength   = 17
	minModelYear   = 1885
)

type envelope[T any] struct {
	Count          int    `json:"Count"`
	Message        string `json:"Message"`
	SearchCriteria string `json:"SearchCriteria"`
	Results        []T    `json:"Results"`
}

type vinVariable struct {
	Value      *string `json:"Value"`
	Variable   string  `json:"Variable"`
	VariableID int     `json:"VariableId"`
}

type vehicleMake struct {
	MakeID   int    `json:"MakeId"`
	MakeName string `json:"MakeName"`
}

// Client talks to the public vPIC vehicle registry.
type Client struct {
	transport runtime.ClientTransport
	scheme    string
	timeout   time.Duration
	logger    ports.LoggerPort
}

func New(baseURL string, logger ports.LoggerPort) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse registry url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse registry url: missing host in %q", baseURL)
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}

	return &Client{
		transport: httptransport.New(u.Host, u.Path, []string{scheme}),
		scheme:    scheme,
		timeout:   requestTimeout,
		logger:    logger,
	}, nil
}

func (c *Client) DecodeVIN(ctx context.Context, vin string) ([]domain.VINField, error) {
	vin = strings.TrimSpace(vin)
	if verr := checkVIN(vin); verr != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, verr.Error())
	}

	var out envelope[vinVariable]
	err := c.submit(ctx, "DecodeVin", "/DecodeVin/{vin}", func(req runtime.ClientRequest) error {
		return req.SetPathParam("vin", vin)
	}, &out)
	if err != nil {
		return nil, err
	}

	fields := make([]domain.VINField, 0, len(out.Results))
	for _, r := range out.Results {
		value := ""
		if r.Value != nil {
			value = *r.Value
		}
		fields = append(fields, domain.VINField{
			Variable:   r.Variable,
			VariableID: r.VariableID,
			Value:      value,
		})
	}
	return fields, nil
}

func (c *Client) MakesForYear(ctx context.Context, year int) ([]domain.VehicleMake, error) {
	if verr := validate.MinimumInt("year", "query", int64(year), minModelYear, false); verr != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, verr.Error())
	}

	var out envelope[vehicleMake]
	err := c.submit(ctx, "GetMakesForVehicleType", "/GetMakesForVehicleType/{type}", func(req runtime.ClientRequest) error {
		if err := req.SetPathParam("type", vehicleType); err != nil {
			return err
		}
		return req.SetQueryParam("year", strconv.Itoa(year))
	}, &out)
	if err != nil {
		return nil, err
	}

	makes := make([]domain.VehicleMake, 0, len(out.Results))
	for _, r := range out.Results {
		makes = append(makes, domain.VehicleMake{ID: r.MakeID, Name: strings.TrimSpace(r.MakeName)})
	}
	return makes, nil
}

func (c *Client) submit(
	ctx context.Context,
	id, path string,
	params func(req runtime.ClientRequest) error,
	out interface{},
) error {
	op := &runtime.ClientOperation{
		ID:                 id,
		Method:             http.MethodGet,
		PathPattern:        path,
		ProducesMediaTypes: []string{runtime.JSONMime},
		ConsumesMediaTypes: []string{runtime.JSONMime},
		Schemes:            []string{c.scheme},
		Params: runtime.ClientRequestWriterFunc(func(req runtime.ClientRequest, _ strfmt.Registry) error {
			if err := req.SetTimeout(c.timeout); err != nil {
				return err
			}
			if err := params(req); err != nil {
				return err
			}
			return req.SetQueryParam("format", "json")
		}),
		Reader: runtime.ClientResponseReaderFunc(func(resp runtime.ClientResponse, consumer runtime.Consumer) (interface{}, error) {
			if resp.Code() != http.StatusOK {
				return nil, runtime.NewAPIError(id, resp.Message(), resp.Code())
			}
			if err := consumer.Consume(resp.Body(), out); err != nil {
				return nil, fmt.Errorf("decode %s response: %w", id, err)
			}
			return out, nil
		}),
		Context: ctx,
	}

	start := time.Now()
	_, err := c.transport.Submit(op)
	fields := map[string]interface{}{
		"operation": id,
		"duration":  time.Since(start).String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		c.logger.Warn("Vehicle registry request failed", fields)
		return fmt.Errorf("%s: %w: %w", id, domain.ErrRegistryUnavailable, err)
	}
	c.logger.Debug("Vehicle registry request", fields)
	return nil
}

func checkVIN(vin string) *openapierrors.Validation {
	if verr := validate.MinLength("vin", "path", vin, minVINLength); verr != nil {
		return verr
	}
	return validate.MaxLength("vin", "path", vin, maxVINLength)
}
