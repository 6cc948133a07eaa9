package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zibalServer(t *testing.T, handler func(path string, body map[string]interface{}) interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(handler(r.URL.Path, body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestZibalInitiate(t *testing.T) {
	t.Run("returns track id and start url", func(t *testing.T) {
		srv := zibalServer(t, func(path string, body map[string]interface{}) interface{} {
			assert.Equal(t, "/v1/request", path)
			assert.Equal(t, "zibal", body["merchant"])
			assert.EqualValues(t, 500000, body["amount"])
			return map[string]interface{}{"result": 100, "trackId": 15966442233311, "message": "success"}
		})
		gw := NewZibalGateway("", srv.URL, time.Second)

		res, err := gw.Initiate(context.Background(), InitiateRequest{Amount: 500000, CallbackURL: "http://app/cb", OrderID: "bf-1"})
		require.NoError(t, err)
		assert.Equal(t, "15966442233311", res.TrackingID)
		assert.Equal(t, srv.URL+"/start/15966442233311", res.RedirectURL)
	})

	t.Run("non-success result is an error", func(t *testing.T) {
		srv := zibalServer(t, func(string, map[string]interface{}) interface{} {
			return map[string]interface{}{"result": 102, "message": "merchant not found"}
		})
		gw := NewZibalGateway("bad", srv.URL, time.Second)

		res, err := gw.Initiate(context.Background(), InitiateRequest{Amount: 1000})
		assert.Nil(t, res)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGateway))
		var gwErr *Error
		require.True(t, errors.As(err, &gwErr))
		assert.Equal(t, 102, gwErr.Code)
		assert.False(t, gwErr.Timeout)
	})

	t.Run("rejects non-positive amount without calling out", func(t *testing.T) {
		gw := NewZibalGateway("", "http://127.0.0.1:1", time.Second)
		_, err := gw.Initiate(context.Background(), InitiateRequest{Amount: 0})
		assert.ErrorIs(t, err, ErrGateway)
	})
}

func TestZibalVerify(t *testing.T) {
	cases := []struct {
		name    string
		result  int
		outcome Outcome
		wantErr bool
	}{
		{"success", 100, OutcomeSuccess, false},
		{"already verified", 201, OutcomeAlreadyVerified, false},
		{"not paid", 202, OutcomeFailed, false},
		{"invalid track id", 203, OutcomeFailed, false},
		{"merchant inactive", 103, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := zibalServer(t, func(path string, body map[string]interface{}) interface{} {
				assert.Equal(t, "/v1/verify", path)
				assert.EqualValues(t, 42, body["trackId"])
				return map[string]interface{}{"result": tc.result, "message": "m", "refNumber": 998877}
			})
			gw := NewZibalGateway("", srv.URL, time.Second)

			res, err := gw.Verify(context.Background(), "42")
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrGateway)
				assert.False(t, IsTimeout(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.outcome, res.Outcome)
			assert.Equal(t, "998877", res.RefNumber)
		})
	}

	t.Run("malformed track id", func(t *testing.T) {
		gw := NewZibalGateway("", "http://127.0.0.1:1", time.Second)
		_, err := gw.Verify(context.Background(), "abc")
		assert.ErrorIs(t, err, ErrGateway)
	})
}

func TestZibalTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"result":100}`))
	}))
	defer srv.Close()
	gw := NewZibalGateway("", srv.URL, 50*time.Millisecond)

	_, err := gw.Verify(context.Background(), "42")
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.ErrorIs(t, err, ErrGateway)
}

func TestZibalInquire(t *testing.T) {
	srv := zibalServer(t, func(path string, body map[string]interface{}) interface{} {
		assert.Equal(t, "/v1/inquiry", path)
		return map[string]interface{}{"result": 100, "status": 1, "amount": 500000}
	})
	gw := NewZibalGateway("", srv.URL, time.Second)

	raw, err := gw.Inquire(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), raw["status"])
}

func TestZibalHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	gw := NewZibalGateway("", srv.URL, time.Second)

	_, err := gw.Initiate(context.Background(), InitiateRequest{Amount: 100})
	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusBadGateway, gwErr.Code)
}
