package carriergw

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRateRequest(t *testing.T) ports.RateRequest {
	t.Helper()

	origin, err := kernel.NewGeocodedAddress("Wilhelminakade 1", "Rotterdam", "3072AP", "NL", 51.9072, 4.4887)
	require.NoError(t, err)
	destination, err := kernel.NewGeocodedAddress("Markt 87", "Delft", "2611GS", "NL", 52.0116, 4.3571)
	require.NoError(t, err)
	parcel, err := kernel.NewParcel(1200, 30, 20, 10, 1)
	require.NoError(t, err)

	return ports.RateRequest{
		Origin:      origin,
		Destination: destination,
		Parcel:      parcel,
		Candidate:   ports.CandidateService{Carrier: "ups", Service: "standard"},
	}
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(serverURL, "test-key", 5*time.Second, slog.Default())
	require.NoError(t, err)
	return client
}

func TestClient_GetRate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rates", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload rateRequestPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "ups", payload.Carrier)
		assert.Equal(t, "2611GS", payload.Destination.Zip)
		assert.Equal(t, 1200, payload.Parcel.WeightGrams)

		_ = json.NewEncoder(w).Encode(rateResponsePayload{
			Carrier:       "ups",
			Service:       "standard",
			CostCents:     1250,
			EstimatedDays: 2,
		})
	}))
	defer server.Close()

	rate, err := newTestClient(t, server.URL).GetRate(context.Background(), testRateRequest(t))

	require.NoError(t, err)
	assert.Equal(t, "ups", rate.Carrier)
	assert.Equal(t, int64(1250), rate.CostCents)
	assert.Equal(t, 2, rate.EstimatedDays)
}

func TestClient_PurchaseLabel_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/labels", r.URL.Path)

		var payload purchaseRequestPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "order-ref-42", payload.Reference)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(purchaseResponsePayload{
			Carrier:        "ups",
			Service:        "standard",
			TrackingNumber: "1Z999AA10123456784",
			TrackingURL:    "https://track.example/1Z999AA10123456784",
			LabelURL:       "https://labels.example/1Z999AA10123456784.pdf",
			CostCents:      1250,
		})
	}))
	defer server.Close()

	rateReq := testRateRequest(t)
	label, err := newTestClient(t, server.URL).PurchaseLabel(context.Background(), ports.PurchaseRequest{
		Origin:      rateReq.Origin,
		Destination: rateReq.Destination,
		Parcel:      rateReq.Parcel,
		Rate:        ports.CarrierRate{Carrier: "ups", Service: "standard", CostCents: 1250},
		Reference:   "order-ref-42",
	})

	require.NoError(t, err)
	assert.Equal(t, "1Z999AA10123456784", label.TrackingNumber)
	assert.Equal(t, int64(1250), label.CostCents)
}

func TestClient_FailureMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     errorPayload
		expected error
	}{
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			expected: ports.ErrCarrierRateLimited,
		},
		{
			name:     "insufficient balance by status",
			status:   http.StatusPaymentRequired,
			expected: ports.ErrInsufficientBalance,
		},
		{
			name:     "insufficient balance by code",
			status:   http.StatusBadRequest,
			body:     errorPayload{Code: "INSUFFICIENT_BALANCE"},
			expected: ports.ErrInsufficientBalance,
		},
		{
			name:     "address invalid",
			status:   http.StatusUnprocessableEntity,
			body:     errorPayload{Code: "ADDRESS_INVALID", Message: "no such street"},
			expected: ports.ErrAddressInvalid,
		},
		{
			name:     "other client error is a rejection",
			status:   http.StatusBadRequest,
			body:     errorPayload{Code: "LANE_NOT_SERVED"},
			expected: ports.ErrCarrierRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).GetRate(context.Background(), testRateRequest(t))

			require.ErrorIs(t, err, tt.expected)
			assert.False(t, ports.IsTransient(err))
		})
	}
}

func TestClient_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).GetRate(context.Background(), testRateRequest(t))

	require.Error(t, err)
	assert.True(t, ports.IsTransient(err))
}

func TestClient_ConnectionFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // immediately, so the address refuses connections

	_, err := newTestClient(t, server.URL).GetRate(context.Background(), testRateRequest(t))

	require.Error(t, err)
	assert.True(t, ports.IsTransient(err))
}

func TestClient_HonorsContextCancellation(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, server.URL).GetRate(ctx, testRateRequest(t))

	require.Error(t, err)
	assert.True(t, ports.IsTransient(err))
}

func TestHMACWebhookVerifier_Verify(t *testing.T) {
	verifier, err := NewHMACWebhookVerifier(map[string]string{"ups": "topsecret"})
	require.NoError(t, err)

	body := []byte(`{"tracking_number":"1Z999AA10123456784","status":"DL"}`)
	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	t.Run("valid signature passes", func(t *testing.T) {
		assert.NoError(t, verifier.Verify("ups", body, signature))
	})

	t.Run("tampered body fails", func(t *testing.T) {
		tampered := []byte(`{"tracking_number":"1Z999AA10123456784","status":"EX"}`)
		err := verifier.Verify("ups", tampered, signature)
		assert.ErrorIs(t, err, ports.ErrWebhookSignatureInvalid)
	})

	t.Run("unknown carrier fails", func(t *testing.T) {
		err := verifier.Verify("dhl", body, signature)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ports.ErrWebhookSignatureInvalid)
	})
}
