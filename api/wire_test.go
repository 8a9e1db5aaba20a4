package api

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/apperr"
)

func TestParseCartItemsShapes(t *testing.T) {
	const arr = `[{"sku":7,"name":"Album","quantity":"2","price":1500,"total":"3000"}]`
	once, _ := json.Marshal(arr)
	twice, _ := json.Marshal(string(once))

	for name, raw := range map[string]string{
		"array":  arr,
		"string": string(once),
		"double": string(twice),
	} {
		t.Run(name, func(t *testing.T) {
			lines, err := parseCartItems(json.RawMessage(raw))
			require.NoError(t, err)
			require.Len(t, lines, 1)
			assert.Equal(t, "7", lines[0].SKU)
			assert.Equal(t, 2, lines[0].Quantity)
			assert.True(t, decimal.NewFromInt(3000).Equal(lines[0].Total))
		})
	}

	lines, err := parseCartItems(json.RawMessage(`null`))
	assert.NoError(t, err)
	assert.Empty(t, lines)

	_, err = parseCartItems(json.RawMessage(`{"sku":1}`))
	assert.Error(t, err)
}

func TestDecodeListEnvelope(t *testing.T) {
	var bare, wrapped []struct {
		ID flexString `json:"id"`
	}
	require.NoError(t, decodeList(json.RawMessage(`[{"id":1},{"id":"b"}]`), &bare))
	require.NoError(t, decodeList(json.RawMessage(`{"data":[{"id":1},{"id":"b"}]}`), &wrapped))
	assert.Equal(t, bare, wrapped)
	assert.Equal(t, flexString("1"), bare[0].ID)
}

func TestNumberMarshalsBare(t *testing.T) {
	b, err := json.Marshal(struct {
		Total number `json:"total"`
	}{number(decimal.RequireFromString("1500.50"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":1500.5}`, string(b))
}

func TestRetryOnlyConnectivity(t *testing.T) {
	ctx := context.Background()
	cfg := RetryConfig{MaxAttempts: 3, Delay: -1}

	calls := 0
	_, err := Retry(ctx, cfg, func(context.Context) (int, error) {
		calls++
		return 0, apperr.Connectivity(apperr.MsgNoResponse, apperr.CodeNoResponse, errors.New("refused"))
	})
	assert.True(t, apperr.IsNetworkError(err))
	assert.Equal(t, 3, calls)

	calls = 0
	_, err = Retry(ctx, cfg, func(context.Context) (int, error) {
		calls++
		return 0, apperr.HTTP(500, nil)
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	v, err := Retry(ctx, cfg, func(context.Context) (int, error) {
		calls++
		if calls == 2 {
			return 42, nil
		}
		return 0, apperr.Connectivity(apperr.MsgTimeout, apperr.CodeTimeout, nil)
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	start := time.Now()
	_, err := Retry(ctx, RetryConfig{MaxAttempts: 5, Delay: time.Hour}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, apperr.Connectivity(apperr.MsgOffline, "", nil)
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Minute)
}
