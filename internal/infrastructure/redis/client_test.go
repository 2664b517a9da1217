package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "tradeledger:probe", "1", time.Minute).Err())
	assert.True(t, mr.Exists("tradeledger:probe"))
}

func TestNewClient_Errors(t *testing.T) {
	down := miniredis.RunT(t)
	downURL := "redis://" + down.Addr()
	down.Close()

	tests := []struct {
		name    string
		url     string
		wantMsg string
	}{
		{name: "invalid url", url: "://bad-url", wantMsg: "failed to parse redis URL"},
		{name: "unsupported scheme", url: "http://localhost:6379", wantMsg: "failed to parse redis URL"},
		{name: "server down", url: downURL, wantMsg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(context.Background(), tt.url, Options{DialTimeout: 200 * time.Millisecond})
			require.Error(t, err)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestNewClient_OptionsOverrideURL(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/3", Options{
		DialTimeout:  250 * time.Millisecond,
		ReadTimeout:  100 * time.Millisecond,
		WriteTimeout: 150 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	opts := client.Options()
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 250*time.Millisecond, opts.DialTimeout)
	assert.Equal(t, 100*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 150*time.Millisecond, opts.WriteTimeout)
}

func TestNewClient_ZeroOptionsKeepDefaults(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+mr.Addr()+"?dial_timeout=2s", Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, 2*time.Second, client.Options().DialTimeout)
}
