package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stockanalyzer/internal/provider"
	"stockanalyzer/internal/provider/mock"
	"stockanalyzer/internal/symbols"
)

func TestFetchAll_GroupsByProviderInSymbolOrder(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	yahoo := mock.NewMockProvider(ctrl)
	yahoo.EXPECT().Name().Return("Yahoo Finance").AnyTimes()
	yahoo.EXPECT().Fetch(gomock.Any(), "RELIANCE").Return(provider.Quote{Symbol: "RELIANCE", Price: provider.Float(2500)}, nil)
	yahoo.EXPECT().Fetch(gomock.Any(), "XYZ").Return(provider.Quote{}, provider.ErrNotFound)

	google := mock.NewMockProvider(ctrl)
	google.EXPECT().Name().Return("Google Finance").AnyTimes()
	google.EXPECT().Fetch(gomock.Any(), "RELIANCE").Return(provider.Quote{Symbol: "RELIANCE", Price: provider.Float(0)}, nil)
	google.EXPECT().Fetch(gomock.Any(), "XYZ").Return(provider.Quote{}, provider.ErrNoData)

	got, err := fetchAll(t.Context(), []provider.Provider{yahoo, google},
		[]symbols.Symbol{{Ticker: "RELIANCE"}, {Ticker: "XYZ"}}, zerolog.Nop())
	require.NoError(t, err, "per-symbol failures are reported, not returned")

	require.Len(t, got, 4)
	assert.Equal(t, "Yahoo Finance", got[0].Provider)
	assert.True(t, got[0].Usable)
	assert.Equal(t, "XYZ", got[1].Symbol)
	assert.Contains(t, got[1].Error, "not found")
	assert.Equal(t, "Google Finance", got[2].Provider)
	assert.False(t, got[2].Usable, "zero price is not usable")
	assert.Nil(t, got[3].Quote)

	var buf bytes.Buffer
	require.NoError(t, writeAnswers(&buf, got))
	var decoded struct {
		Answers []answer `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Answers, 4)
}

func TestFetchAll_StopsOnceContextIsDone(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	yahoo := mock.NewMockProvider(ctrl)
	yahoo.EXPECT().Name().Return("Yahoo Finance").AnyTimes()
	google := mock.NewMockProvider(ctrl)
	google.EXPECT().Name().Return("Google Finance").AnyTimes()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	got, err := fetchAll(ctx, []provider.Provider{yahoo, google},
		[]symbols.Symbol{{Ticker: "RELIANCE"}, {Ticker: "TCS"}}, zerolog.Nop())
	require.ErrorIs(t, err, context.Canceled)

	require.Len(t, got, 4)
	assert.Equal(t, "Google Finance", got[3].Provider)
	assert.Equal(t, "TCS", got[3].Symbol)
	for _, p := range got {
		assert.Nil(t, p.Quote)
		assert.Contains(t, p.Error, "context canceled")
	}
}
