// Package carriergw talks to the carrier integration service over HTTP.
// The integration service fronts the individual carrier APIs behind one JSON
// surface; this adapter translates its responses and failure modes into the
// ports.CarrierGateway contract.
package carriergw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Gateway error codes returned in the integration service's error body.
const (
	codeAddressInvalid      = "ADDRESS_INVALID"
	codeInsufficientBalance = "INSUFFICIENT_BALANCE"
)

// Client implements ports.CarrierGateway against the carrier integration service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a gateway client. The timeout bounds each HTTP exchange;
// per-call contexts may shorten it further.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	if apiKey == "" {
		return nil, errs.NewValueIsRequiredError("apiKey")
	}
	if timeout <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("timeout",
			errors.New("timeout must be greater than 0"))
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "carrier_gateway"),
	}, nil
}

type addressPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type parcelPayload struct {
	WeightGrams int `json:"weight_grams"`
	LengthCm    int `json:"length_cm"`
	WidthCm     int `json:"width_cm"`
	HeightCm    int `json:"height_cm"`
	ItemCount   int `json:"item_count"`
}

type rateRequestPayload struct {
	Carrier     string         `json:"carrier"`
	Service     string         `json:"service"`
	Origin      addressPayload `json:"origin"`
	Destination addressPayload `json:"destination"`
	Parcel      parcelPayload  `json:"parcel"`
}

type rateResponsePayload struct {
	Carrier       string    `json:"carrier"`
	Service       string    `json:"service"`
	CostCents     int64     `json:"cost_cents"`
	EstimatedDays int       `json:"estimated_days"`
	DeliveryDate  time.Time `json:"delivery_date"`
}

type purchaseRequestPayload struct {
	Carrier     string         `json:"carrier"`
	Service     string         `json:"service"`
	Origin      addressPayload `json:"origin"`
	Destination addressPayload `json:"destination"`
	Parcel      parcelPayload  `json:"parcel"`
	CostCents   int64          `json:"cost_cents"`
	Reference   string         `json:"reference"`
}

type purchaseResponsePayload struct {
	Carrier        string `json:"carrier"`
	Service        string `json:"service"`
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
	LabelURL       string `json:"label_url"`
	CostCents      int64  `json:"cost_cents"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GetRate quotes a single candidate service.
func (c *Client) GetRate(ctx context.Context, req ports.RateRequest) (ports.CarrierRate, error) {
	payload := rateRequestPayload{
		Carrier:     req.Candidate.Carrier,
		Service:     req.Candidate.Service,
		Origin:      toAddressPayload(req.Origin),
		Destination: toAddressPayload(req.Destination),
		Parcel:      toParcelPayload(req.Parcel),
	}

	var response rateResponsePayload
	if err := c.post(ctx, "/v1/rates", payload, &response); err != nil {
		return ports.CarrierRate{}, err
	}

	return ports.CarrierRate{
		Carrier:       response.Carrier,
		Service:       response.Service,
		CostCents:     response.CostCents,
		EstimatedDays: response.EstimatedDays,
		DeliveryDate:  response.DeliveryDate,
	}, nil
}

// PurchaseLabel buys a shipping label for the given rate.
func (c *Client) PurchaseLabel(ctx context.Context, req ports.PurchaseRequest) (ports.PurchasedLabel, error) {
	payload := purchaseRequestPayload{
		Carrier:     req.Rate.Carrier,
		Service:     req.Rate.Service,
		Origin:      toAddressPayload(req.Origin),
		Destination: toAddressPayload(req.Destination),
		Parcel:      toParcelPayload(req.Parcel),
		CostCents:   req.Rate.CostCents,
		Reference:   req.Reference,
	}

	var response purchaseResponsePayload
	if err := c.post(ctx, "/v1/labels", payload, &response); err != nil {
		return ports.PurchasedLabel{}, err
	}

	return ports.PurchasedLabel{
		Carrier:        response.Carrier,
		Service:        response.Service,
		TrackingNumber: response.TrackingNumber,
		TrackingURL:    response.TrackingURL,
		LabelURL:       response.LabelURL,
		CostCents:      response.CostCents,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, response any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(request)
	if err != nil {
		// Network failures and timeouts are worth retrying.
		return ports.NewTransientError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.mapFailure(resp)
	}

	return json.NewDecoder(resp.Body).Decode(response)
}

// mapFailure normalizes gateway failures into the error taxonomy the
// application retries and reports on.
func (c *Client) mapFailure(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var gatewayErr errorPayload
	_ = json.Unmarshal(raw, &gatewayErr)

	c.logger.Warn("Carrier gateway call failed",
		"status", resp.StatusCode, "code", gatewayErr.Code, "message", gatewayErr.Message)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ports.ErrCarrierRateLimited
	case resp.StatusCode == http.StatusPaymentRequired || gatewayErr.Code == codeInsufficientBalance:
		return ports.ErrInsufficientBalance
	case resp.StatusCode == http.StatusUnprocessableEntity && gatewayErr.Code == codeAddressInvalid:
		return ports.ErrAddressInvalid
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: %s", ports.ErrCarrierRejected, gatewayErr.Message)
	default:
		return ports.NewTransientError(fmt.Errorf("gateway returned status %d", resp.StatusCode))
	}
}

func toAddressPayload(address kernel.Address) addressPayload {
	return addressPayload{
		Street:  address.Street(),
		City:    address.City(),
		Zip:     address.Zip(),
		Country: address.Country(),
	}
}

func toParcelPayload(parcel kernel.Parcel) parcelPayload {
	return parcelPayload{
		WeightGrams: parcel.WeightGrams(),
		LengthCm:    parcel.LengthCm(),
		WidthCm:     parcel.WidthCm(),
		HeightCm:    parcel.HeightCm(),
		ItemCount:   parcel.ItemCount(),
	}
}
